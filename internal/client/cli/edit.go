package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/draftkeeper/internal/client/api"
	"github.com/iudanet/draftkeeper/internal/client/session"
)

var _ session.DraftAPI = (*api.Client)(nil)

func (c *Cli) runEdit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing document id, usage: draftkeeper edit <id>")
	}
	documentID := args[0]

	if err := c.requireSession(ctx); err != nil {
		return err
	}

	sess := session.New(session.Config{
		IO:     c.io,
		API:    c.apiClient,
		Store:  c.boltStorage,
		Logger: c.logger,
	})

	return sess.Run(ctx, documentID)
}
