// Package cli реализует команды консольного клиента draftkeeper
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/draftkeeper/internal/client/api"
	"github.com/iudanet/draftkeeper/internal/client/auth"
	"github.com/iudanet/draftkeeper/internal/client/iocli"
	"github.com/iudanet/draftkeeper/internal/client/storage/boltdb"
)

// Cli связывает команды клиента с API, локальным хранилищем и терминалом
type Cli struct {
	io          iocli.IO
	apiClient   *api.Client
	authService *auth.Service
	boltStorage *boltdb.Storage
	logger      *slog.Logger
}

func New(io iocli.IO, apiClient *api.Client, boltStorage *boltdb.Storage, logger *slog.Logger) *Cli {
	return &Cli{
		io:          io,
		apiClient:   apiClient,
		authService: auth.NewService(apiClient, boltStorage),
		boltStorage: boltStorage,
		logger:      logger,
	}
}

// Run выполняет команду клиента
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "docs":
		return c.runDocs(ctx)
	case "new":
		return c.runNew(ctx, args)
	case "edit":
		return c.runEdit(ctx, args)
	case "delete":
		return c.runDelete(ctx, args)
	case "checkpoint":
		return c.runCheckpoint(ctx, args)
	case "checkpoints":
		return c.runCheckpoints(ctx, args)
	case "help":
		c.PrintUsage()
		return nil
	default:
		c.PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// PrintUsage печатает справку по командам клиента
func (c *Cli) PrintUsage() {
	c.io.Printf("%s", usageText)
}

// requireSession восстанавливает сохраненную сессию и настраивает API клиент.
// Истекший access token прозрачно обновляется внутри RestoreSession
func (c *Cli) requireSession(ctx context.Context) error {
	if _, err := c.authService.RestoreSession(ctx); err != nil {
		return fmt.Errorf("not authenticated, run 'draftkeeper login' first: %w", err)
	}
	return nil
}
