package mediacmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"

	"github.com/flohusson/attitude-emoi/internal/commands"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

const (
	storeUploadMessageType = "attitude.media.upload"

	// PublicPrefix is the URL path uploads are served under.
	PublicPrefix = "/uploads/"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

var _ command.Commander[StoreUploadCommand] = (*StoreUploadHandler)(nil)

// UploadResult describes a stored upload.
type UploadResult struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int    `json:"size"`
}

// ResultCallback receives the stored upload.
type ResultCallback func(UploadResult)

// StoreUploadCommand stores an image or video picked in the editor.
type StoreUploadCommand struct {
	FileName       string         `json:"fileName"`
	Data           []byte         `json:"-"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (StoreUploadCommand) Type() string { return storeUploadMessageType }

// Validate rejects empty uploads.
func (m StoreUploadCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.FileName) == "" {
		errs["fileName"] = validation.NewError("attitude.media.upload.name_required", "file name is required")
	}
	if len(m.Data) == 0 {
		errs["data"] = validation.NewError("attitude.media.upload.empty", "file is empty")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UploadName returns the stored name for an upload received at now: the
// unix time in milliseconds, a hyphen, then the original base name without
// characters outside [a-zA-Z0-9.-].
func UploadName(fileName string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(fileName, `\`, "/"))
	return fmt.Sprintf("%d-%s", now.UnixMilli(), unsafeNameChars.ReplaceAllString(base, ""))
}

// StoreUploadHandler writes uploads into a directory served as /uploads.
type StoreUploadHandler struct {
	inner *commands.Handler[StoreUploadCommand]
}

// NewStoreUploadHandler creates a handler writing into dir, which is created
// on first use.
func NewStoreUploadHandler(dir string, logger interfaces.Logger, now func() time.Time, opts ...commands.HandlerOption[StoreUploadCommand]) *StoreUploadHandler {
	baseLogger := commands.EnsureLogger(logger)
	if now == nil {
		now = time.Now
	}

	exec := func(ctx context.Context, msg StoreUploadCommand) error {
		if strings.TrimSpace(dir) == "" {
			return errors.New("media upload: uploads directory is not configured")
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("media upload: %w", err)
		}
		name := UploadName(msg.FileName, now())
		if err := writeUpload(filepath.Join(dir, name), msg.Data); err != nil {
			return err
		}
		result := UploadResult{Name: name, URL: PublicPrefix + name, Size: len(msg.Data)}
		logging.WithFields(baseLogger, map[string]any{
			"name": name,
			"size": result.Size,
		}).Info("media.command.upload.stored")
		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[StoreUploadCommand]{
		commands.WithLogger[StoreUploadCommand](baseLogger),
		commands.WithOperation[StoreUploadCommand]("media.upload"),
		commands.WithMessageFields(func(msg StoreUploadCommand) map[string]any {
			return map[string]any{"file_name": msg.FileName, "size": len(msg.Data)}
		}),
	}
	return &StoreUploadHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[StoreUploadCommand].
func (h *StoreUploadHandler) Execute(ctx context.Context, msg StoreUploadCommand) error {
	return h.inner.Execute(ctx, msg)
}

func writeUpload(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("media upload: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("media upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("media upload: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("media upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("media upload: %w", err)
	}
	return nil
}
