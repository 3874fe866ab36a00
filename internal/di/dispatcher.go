package di

import (
	"fmt"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	articlecmd "github.com/flohusson/attitude-emoi/internal/commands/articles"
	draftcmd "github.com/flohusson/attitude-emoi/internal/commands/drafts"
	episodecmd "github.com/flohusson/attitude-emoi/internal/commands/episodes"
	mediacmd "github.com/flohusson/attitude-emoi/internal/commands/media"
	resourcecmd "github.com/flohusson/attitude-emoi/internal/commands/resources"
)

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// DispatcherRegistry subscribes the site handlers to the go-command
// dispatcher so callers can use dispatcher.Dispatch with a message value.
type DispatcherRegistry struct {
	opts          []runner.Option
	subscriptions []CommandSubscription
}

// NewDispatcherRegistry returns a registry applying opts to every
// subscription, e.g. runner.WithMaxRetries.
func NewDispatcherRegistry(opts ...runner.Option) *DispatcherRegistry {
	return &DispatcherRegistry{opts: opts}
}

// RegisterCommand satisfies commands.CommandRegistry.
func (r *DispatcherRegistry) RegisterCommand(handler any) error {
	var sub CommandSubscription
	switch h := handler.(type) {
	case *articlecmd.SaveArticleHandler:
		sub = dispatcher.SubscribeCommand(h, r.opts...)
	case *articlecmd.SoftDeleteArticleHandler:
		sub = dispatcher.SubscribeCommand(h, r.opts...)
	case *articlecmd.RestoreArticleHandler:
		sub = dispatcher.SubscribeCommand(h, r.opts...)
	case *articlecmd.PermanentDeleteArticleHandler:
		sub = dispatcher.SubscribeCommand(h, r.opts...)
	case *episodecmd.SaveEpisodeHandler:
		sub = dispatcher.SubscribeCommand(h, r.opts...)
	case *episodecmd.DeleteEpisodeHandler:
		sub = dispatcher.SubscribeCommand(h, r.opts...)
	case *episodecmd.UpdateEpisodeTypeHandler:
		sub = dispatcher.SubscribeCommand(h, r.opts...)
	case *episodecmd.ImportEpisodesHandler:
		sub = dispatcher.SubscribeCommand(h, r.opts...)
	case *resourcecmd.SaveResourceHandler:
		sub = dispatcher.SubscribeCommand(h, r.opts...)
	case *resourcecmd.DeleteResourceHandler:
		sub = dispatcher.SubscribeCommand(h, r.opts...)
	case *draftcmd.GenerateDraftsHandler:
		sub = dispatcher.SubscribeCommand(h, r.opts...)
	case *mediacmd.StoreUploadHandler:
		sub = dispatcher.SubscribeCommand(h, r.opts...)
	default:
		return fmt.Errorf("dispatcher registry: unsupported handler %T", handler)
	}
	r.subscriptions = append(r.subscriptions, sub)
	return nil
}

// Len reports the number of live subscriptions.
func (r *DispatcherRegistry) Len() int { return len(r.subscriptions) }

// Close removes every subscription.
func (r *DispatcherRegistry) Close() {
	for _, sub := range r.subscriptions {
		sub.Unsubscribe()
	}
	r.subscriptions = nil
}
