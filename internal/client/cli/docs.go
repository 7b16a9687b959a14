package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runDocs(ctx context.Context) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	resp, err := c.apiClient.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	return renderTemplate(c.io, documentListTemplate, resp.Documents)
}
