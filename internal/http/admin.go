package http

import (
	"fmt"
	"net/http"

	articlecmd "github.com/flohusson/attitude-emoi/internal/commands/articles"
	draftcmd "github.com/flohusson/attitude-emoi/internal/commands/drafts"
	episodecmd "github.com/flohusson/attitude-emoi/internal/commands/episodes"
	mediacmd "github.com/flohusson/attitude-emoi/internal/commands/media"
	resourcecmd "github.com/flohusson/attitude-emoi/internal/commands/resources"
	"github.com/flohusson/attitude-emoi/internal/shortcode"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// AdminAPI exposes the editing endpoints used by the admin interface.
type AdminAPI struct {
	basePath string

	repos interfaces.Repositories

	articleCommands  *articlecmd.HandlerSet
	episodeCommands  *episodecmd.HandlerSet
	resourceCommands *resourcecmd.HandlerSet
	drafts           *draftcmd.GenerateDraftsHandler
	uploads          *mediacmd.StoreUploadHandler

	metrics *shortcode.CounterMetrics
}

// AdminOption configures the admin API.
type AdminOption func(*AdminAPI)

// NewAdminAPI builds an admin API with optional dependencies.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath: "/admin/api",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the admin base path.
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if api != nil && path != "" {
			api.basePath = path
		}
	}
}

// WithRepositories sets the read side used by list and get endpoints.
func WithRepositories(repos interfaces.Repositories) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.repos = repos
		}
	}
}

func WithArticleCommands(set *articlecmd.HandlerSet) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.articleCommands = set
		}
	}
}

func WithEpisodeCommands(set *episodecmd.HandlerSet) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.episodeCommands = set
		}
	}
}

func WithResourceCommands(set *resourcecmd.HandlerSet) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.resourceCommands = set
		}
	}
}

// WithDraftGenerator enables POST /drafts.
func WithDraftGenerator(handler *draftcmd.GenerateDraftsHandler) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.drafts = handler
		}
	}
}

// WithUploads enables POST /uploads.
func WithUploads(handler *mediacmd.StoreUploadHandler) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.uploads = handler
		}
	}
}

// WithShortcodeMetrics exposes the renderer counters on /status.
func WithShortcodeMetrics(metrics *shortcode.CounterMetrics) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.metrics = metrics
		}
	}
}

// Register attaches the admin endpoints to the provided mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}

	base := joinPath(api.basePath, "")

	api.registerArticleRoutes(mux, base)
	api.registerEpisodeRoutes(mux, base)
	api.registerResourceRoutes(mux, base)
	api.registerMediaRoutes(mux, base)

	return nil
}

type statusResponse struct {
	Shortcode map[string]shortcode.RuleStats `json:"shortcode"`
}

func (api *AdminAPI) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Shortcode: map[string]shortcode.RuleStats{}}
	if api.metrics != nil {
		resp.Shortcode = api.metrics.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}
