package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/FileFlex/client/internal/domain/operations"
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

// Editor is an in-memory buffer of a remote text file.
type Editor struct {
	Entry types.Entry
	// Lossy is set when the backend replaced undecodable bytes while
	// reading the file; saving writes the replacement characters back.
	Lossy bool

	api     API
	timeout time.Duration
	logger  *zap.Logger
	onSaved func(context.Context)

	mu       sync.Mutex
	original string
	content  string
}

// OpenEditor fetches the content of a text entry.
func (s *Session) OpenEditor(ctx context.Context, entry types.Entry) (*Editor, error) {
	if !operations.IsTextFile(entry) {
		return nil, &types.ValidationError{Field: "path", Message: entry.Name + " is not a text file"}
	}
	content, err := s.api.GetFileContent(ctx, entry.Path)
	if err != nil {
		s.logger.Warn("failed to load file content", zap.String("path", entry.Path), zap.Error(err))
		return nil, err
	}
	return &Editor{
		Entry:    entry,
		Lossy:    strings.ContainsRune(content, utf8.RuneError),
		api:      s.api,
		timeout:  s.saveTimeout,
		logger:   s.logger,
		onSaved:  func(ctx context.Context) { s.refreshAfter(ctx, "save") },
		original: content,
		content:  content,
	}, nil
}

// Content returns the current buffer.
func (e *Editor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

// SetContent replaces the buffer.
func (e *Editor) SetContent(content string) {
	e.mu.Lock()
	e.content = content
	e.mu.Unlock()
}

// Dirty reports whether the buffer differs from the last saved content.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content != e.original
}

// Save writes the buffer back within the save deadline.
func (e *Editor) Save(ctx context.Context) error {
	content := e.Content()

	sctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := e.api.SaveFileContent(sctx, e.Entry.Path, content); err != nil {
		if errors.Is(sctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = &types.TimeoutError{Op: "save", Message: MsgSaveTimeout}
		}
		e.logger.Warn("save failed", zap.String("path", e.Entry.Path), zap.Error(err))
		return err
	}

	e.mu.Lock()
	e.original = content
	e.mu.Unlock()
	e.logger.Info("saved file", zap.String("path", e.Entry.Path), zap.Int("bytes", len(content)))
	if e.onSaved != nil {
		e.onSaved(ctx)
	}
	return nil
}
