package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	auth, err := c.authService.Login(ctx, username, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("Login successful!")
	c.io.Printf("Username: %s\n", auth.Username)
	c.io.Printf("Session valid until: %s\n", time.Unix(auth.ExpiresAt, 0).Format(time.RFC3339))
	c.io.Println()
	c.io.Println("Use 'draftkeeper docs' to list your documents.")

	return nil
}
