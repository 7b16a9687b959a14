// Package session собирает сеанс редактирования: построчный буфер,
// движок автосохранения, фоновые задачи навигации, уведомления и API клиент
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/iudanet/draftkeeper/internal/autosave"
	"github.com/iudanet/draftkeeper/internal/client/iocli"
	"github.com/iudanet/draftkeeper/internal/client/navigation"
	"github.com/iudanet/draftkeeper/internal/client/notify"
	pkgapi "github.com/iudanet/draftkeeper/pkg/api"
)

// DraftAPI операции сервера, которые использует сеанс редактирования
type DraftAPI interface {
	GetDocument(ctx context.Context, documentID string) (*pkgapi.DocumentResponse, error)
	SaveDraft(ctx context.Context, documentID, content, versionToken string) (*pkgapi.SaveDraftResponse, error)
	Ping(ctx context.Context) error
}

// Config зависимости сеанса. Clock nil означает системные часы
type Config struct {
	IO     iocli.IO
	API    DraftAPI
	Store  autosave.BlobStore
	Logger *slog.Logger
	Clock  autosave.Clock

	// NavigationConfig переопределяет интервалы фоновых задач (для тестов)
	NavigationConfig navigation.Config
}

// Session интерактивный сеанс редактирования одного документа
type Session struct {
	io       iocli.IO
	apiC     DraftAPI
	store    autosave.BlobStore
	logger   *slog.Logger
	clock    autosave.Clock
	navCfg   navigation.Config
	notifier *notify.Notifier

	manager *autosave.Manager
	nav     *navigation.Manager
	buffer  *Buffer
	doc     *pkgapi.DocumentResponse
}

// New создает сеанс редактирования
func New(cfg Config) *Session {
	clock := cfg.Clock
	if clock == nil {
		clock = autosave.SystemClock()
	}
	navCfg := cfg.NavigationConfig
	if navCfg.Clock == nil {
		navCfg.Clock = clock
	}

	return &Session{
		io:       cfg.IO,
		apiC:     cfg.API,
		store:    cfg.Store,
		logger:   cfg.Logger,
		clock:    clock,
		navCfg:   navCfg,
		notifier: notify.New(cfg.IO),
	}
}

// waitForServer ждет доступности сервера с fibonacci-backoff.
// Редактирование не начинается, пока сервер не ответит хотя бы раз
func (s *Session) waitForServer(ctx context.Context) error {
	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.apiC.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// draftSaver адаптирует DraftAPI к autosave.Saver для конкретного документа
type draftSaver struct {
	api        DraftAPI
	documentID string
}

func (d *draftSaver) Save(ctx context.Context, content, versionToken string) (*autosave.SaveResult, error) {
	resp, err := d.api.SaveDraft(ctx, d.documentID, content, versionToken)
	if err != nil {
		return nil, err
	}
	return &autosave.SaveResult{VersionToken: resp.VersionToken}, nil
}

// Run выполняет сеанс редактирования документа до команды :q или EOF
func (s *Session) Run(ctx context.Context, documentID string) error {
	if err := s.waitForServer(ctx); err != nil {
		return fmt.Errorf("server is not reachable: %w", err)
	}

	doc, err := s.apiC.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	s.doc = doc
	s.buffer = NewBuffer(doc.Content)

	backup := autosave.NewLocalBackupManager(s.store, s.clock, s.logger)
	saver := &draftSaver{api: s.apiC, documentID: doc.ID}

	hooks := autosave.Hooks{
		OnConflict:  s.showConflict,
		OnAuthError: s.showAuthError,
	}

	s.manager = autosave.NewManager(autosave.Config{Clock: s.clock}, saver, s.notifier, backup, hooks, s.logger)
	s.manager.Initialize(s.buffer, doc.Content, doc.ID, doc.VersionToken)
	s.manager.SetDraftMeta(doc.VersionToken, doc.Title)

	s.nav = navigation.NewManager(s.navCfg, navigation.Callbacks{
		HasUnsavedChanges: func() bool { return s.manager.State().HasUnsavedChanges },
		Backup:            s.manager.CreateBackup,
		Save:              s.manager.ManualSave,
		NetworkChange:     s.manager.SetOnlineStatus,
	}, s.apiC.Ping, s.logger)
	s.nav.Setup()

	defer s.shutdown()

	s.io.Printf("Editing %q (:w save, :status status, :q quit)\n", doc.Title)

	return s.inputLoop(ctx)
}

// inputLoop принимает строки текста и команды, начинающиеся с ':'
func (s *Session) inputLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line, err := s.io.ReadInput("> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input failed: %w", err)
		}

		if strings.HasPrefix(line, ":") {
			if quit := s.handleCommand(line); quit {
				return nil
			}
			continue
		}

		s.buffer.AppendLine(line)
		s.manager.OnContentChange()
	}
}

// handleCommand выполняет команду сеанса; true означает выход
func (s *Session) handleCommand(cmd string) bool {
	switch cmd {
	case ":q":
		return true
	case ":w":
		s.nav.RequestSave()
	case ":status":
		s.showStatus()
	case ":apply":
		if !s.notifier.InvokeAction() {
			s.io.Println("nothing to apply")
		}
	default:
		s.io.Printf("unknown command %q\n", cmd)
	}
	return false
}

// showStatus печатает строку состояния автосохранения
func (s *Session) showStatus() {
	st := s.manager.State()
	display := autosave.DisplayFor(st.Status, st.HasUnsavedChanges, st.LastSavedTime, s.clock.Now(), st.IsOnline)
	s.io.Printf("%s\n", display.Text)
}

// showConflict выводит серверную сторону расхождения версий
func (s *Session) showConflict(data any) {
	s.io.Println("Version conflict: the document was modified elsewhere.")
	if conflict, ok := data.(pkgapi.ConflictResponse); ok {
		s.io.Printf("Server version from %s:\n---\n%s\n---\n",
			conflict.UpdatedAt.Format(time.RFC3339), conflict.ServerContent)
		s.io.Println("Your local text is kept in the buffer; copy what you need before quitting.")
	}
}

func (s *Session) showAuthError() {
	s.io.Println("Session expired - please log in again.")
}

// shutdown останавливает фоновые задачи и движок автосохранения
func (s *Session) shutdown() {
	s.nav.Cleanup()
	s.manager.Cleanup()
}
