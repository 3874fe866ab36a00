package resourcecmd

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/commands"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

const (
	saveResourceMessageType   = "attitude.resources.save"
	deleteResourceMessageType = "attitude.resources.delete"
)

var (
	_ command.Commander[SaveResourceCommand]   = (*SaveResourceHandler)(nil)
	_ command.Commander[DeleteResourceCommand] = (*DeleteResourceHandler)(nil)
)

// SaveResourceCommand creates or replaces a recommended resource. A missing
// slug is derived from the title.
type SaveResourceCommand struct {
	Resource content.Resource `json:"resource"`
	Body     string           `json:"body,omitempty"`
}

func (SaveResourceCommand) Type() string { return saveResourceMessageType }

func (m SaveResourceCommand) Validate() error {
	return validation.ValidateStruct(&m.Resource,
		validation.Field(&m.Resource.Title, validation.Required.ErrorObject(
			validation.NewError("attitude.resources.save.title_required", "title is required"))),
	)
}

// DeleteResourceCommand removes a resource. Missing slugs are not an error.
type DeleteResourceCommand struct {
	Slug string `json:"slug"`
}

func (DeleteResourceCommand) Type() string { return deleteResourceMessageType }

func (m DeleteResourceCommand) Validate() error {
	if err := content.ValidateSlug(m.Slug); err != nil {
		return validation.Errors{"slug": validation.NewError("attitude.resources.delete.slug_invalid", err.Error())}
	}
	return nil
}

// SaveResourceHandler writes resources.
type SaveResourceHandler struct {
	inner *commands.Handler[SaveResourceCommand]
}

func NewSaveResourceHandler(repo interfaces.ResourceRepository, logger interfaces.Logger, opts ...commands.HandlerOption[SaveResourceCommand]) *SaveResourceHandler {
	exec := func(ctx context.Context, msg SaveResourceCommand) error {
		_, err := repo.Save(ctx, msg.Resource, msg.Body)
		return err
	}
	handlerOpts := []commands.HandlerOption[SaveResourceCommand]{
		commands.WithLogger[SaveResourceCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[SaveResourceCommand]("resources.save"),
		commands.WithMessageFields(func(msg SaveResourceCommand) map[string]any {
			return map[string]any{"slug": msg.Resource.Slug, "title": msg.Resource.Title}
		}),
	}
	return &SaveResourceHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *SaveResourceHandler) Execute(ctx context.Context, msg SaveResourceCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeleteResourceHandler removes resources.
type DeleteResourceHandler struct {
	inner *commands.Handler[DeleteResourceCommand]
}

func NewDeleteResourceHandler(repo interfaces.ResourceRepository, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteResourceCommand]) *DeleteResourceHandler {
	exec := func(ctx context.Context, msg DeleteResourceCommand) error {
		return repo.Delete(ctx, msg.Slug)
	}
	handlerOpts := []commands.HandlerOption[DeleteResourceCommand]{
		commands.WithLogger[DeleteResourceCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[DeleteResourceCommand]("resources.delete"),
		commands.WithMessageFields(func(msg DeleteResourceCommand) map[string]any {
			return map[string]any{"slug": msg.Slug}
		}),
	}
	return &DeleteResourceHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *DeleteResourceHandler) Execute(ctx context.Context, msg DeleteResourceCommand) error {
	return h.inner.Execute(ctx, msg)
}

// HandlerSet groups the resource command handlers.
type HandlerSet struct {
	Save   *SaveResourceHandler
	Delete *DeleteResourceHandler
}

// RegisterResourceCommands builds the resource handlers and registers them
// with reg when it is not nil.
func RegisterResourceCommands(reg commands.CommandRegistry, repo interfaces.ResourceRepository, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if repo == nil {
		return nil, errors.New("resource command registration: repository is nil")
	}
	logger := commands.CommandLogger(provider, "resources")
	set := &HandlerSet{
		Save:   NewSaveResourceHandler(repo, logger),
		Delete: NewDeleteResourceHandler(repo, logger),
	}
	if err := commands.Register(reg, set.Save, set.Delete); err != nil {
		return nil, err
	}
	return set, nil
}
