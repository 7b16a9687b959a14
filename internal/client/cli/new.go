package cli

import (
	"context"
	"fmt"
	"strings"
)

func (c *Cli) runNew(ctx context.Context, args []string) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	var title string
	if len(args) > 0 {
		title = strings.Join(args, " ")
	} else {
		var err error
		title, err = c.io.ReadInput("Title: ")
		if err != nil {
			return fmt.Errorf("failed to read title: %w", err)
		}
	}

	doc, err := c.apiClient.CreateDocument(ctx, title)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	c.io.Printf("Created %q\n", doc.Title)
	c.io.Printf("ID: %s\n", doc.ID)
	c.io.Println()
	c.io.Printf("Run 'draftkeeper edit %s' to start writing.\n", doc.ID)

	return nil
}
