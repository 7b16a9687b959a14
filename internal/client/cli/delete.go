package cli

import (
	"context"
	"fmt"
	"strings"
)

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing document id, usage: draftkeeper delete <id>")
	}
	documentID := args[0]

	if err := c.requireSession(ctx); err != nil {
		return err
	}

	doc, err := c.apiClient.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	answer, err := c.io.ReadInput(fmt.Sprintf("Delete %q and all its checkpoints? [y/N]: ", doc.Title))
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(answer), "y") {
		c.io.Println("Aborted.")
		return nil
	}

	if err := c.apiClient.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	c.io.Printf("Deleted %q\n", doc.Title)

	return nil
}
