package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/draftkeeper/internal/autosave"
	"github.com/iudanet/draftkeeper/internal/client/storage"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Session Status ===")
	c.io.Println()

	authData, err := c.boltStorage.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			c.io.Println("Status: not authenticated")
			c.io.Println()
			c.io.Println("Run 'draftkeeper login' to authenticate.")
			return nil
		}
		return fmt.Errorf("failed to get auth data: %w", err)
	}

	expiresAt := time.Unix(authData.ExpiresAt, 0)
	remaining := time.Until(expiresAt)

	c.io.Println("Status: authenticated")
	c.io.Printf("Username: %s\n", authData.Username)
	c.io.Printf("Token expires: %s\n", expiresAt.Format(time.RFC3339))

	if remaining > 0 {
		c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))
	} else {
		c.io.Println("Token has expired; it will be refreshed on the next command.")
	}

	// Свежий локальный бэкап означает прерванный сеанс редактирования
	backup := autosave.NewLocalBackupManager(c.boltStorage, nil, c.logger)
	if data := backup.Peek(ctx); data != nil {
		c.io.Println()
		c.io.Printf("Unsaved draft backup found for %q (%s).\n", data.Title, data.DocumentID)
		c.io.Printf("Run 'draftkeeper edit %s' to restore it.\n", data.DocumentID)
	}

	return nil
}
