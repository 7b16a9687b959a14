package cli

import (
	"context"
	"fmt"
	"strings"
)

// runCheckpoint создает именованный снапшот текущего черновика документа
func (c *Cli) runCheckpoint(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing document id, usage: draftkeeper checkpoint <id> [name]")
	}
	documentID := args[0]

	var name string
	if len(args) > 1 {
		name = strings.Join(args[1:], " ")
	} else {
		var err error
		name, err = c.io.ReadInput("Checkpoint name: ")
		if err != nil {
			return fmt.Errorf("failed to read checkpoint name: %w", err)
		}
	}

	if err := c.requireSession(ctx); err != nil {
		return err
	}

	checkpoint, err := c.apiClient.CreateCheckpoint(ctx, documentID, name)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}

	c.io.Printf("Checkpoint %q created at %s\n", checkpoint.Name, checkpoint.CreatedAt.Format("2006-01-02 15:04:05"))

	return nil
}

// runCheckpoints печатает список снапшотов документа
func (c *Cli) runCheckpoints(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing document id, usage: draftkeeper checkpoints <id>")
	}
	documentID := args[0]

	if err := c.requireSession(ctx); err != nil {
		return err
	}

	resp, err := c.apiClient.ListCheckpoints(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to list checkpoints: %w", err)
	}

	return renderTemplate(c.io, checkpointListTemplate, resp.Checkpoints)
}
