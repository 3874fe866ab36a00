package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/flohusson/attitude-emoi/content"
	mediacmd "github.com/flohusson/attitude-emoi/internal/commands/media"
	"github.com/flohusson/attitude-emoi/internal/render"
	"github.com/flohusson/attitude-emoi/internal/site"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// PublicAPI serves published content, rendered articles and the crawler
// files.
type PublicAPI struct {
	repos      interfaces.Repositories
	renderer   *render.Renderer
	baseURL    string
	uploadsDir string
	now        func() time.Time
}

// PublicOption configures the public routes.
type PublicOption func(*PublicAPI)

// NewPublicAPI builds the public routes around repos.
func NewPublicAPI(repos interfaces.Repositories, opts ...PublicOption) *PublicAPI {
	api := &PublicAPI{
		repos:    repos,
		renderer: render.New(),
		baseURL:  site.DefaultBaseURL,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

func WithRenderer(renderer *render.Renderer) PublicOption {
	return func(api *PublicAPI) {
		if api != nil && renderer != nil {
			api.renderer = renderer
		}
	}
}

// WithBaseURL sets the absolute origin used in the sitemap and robots.txt.
func WithBaseURL(baseURL string) PublicOption {
	return func(api *PublicAPI) {
		if api != nil && strings.TrimSpace(baseURL) != "" {
			api.baseURL = strings.TrimSpace(baseURL)
		}
	}
}

// WithUploadsDir serves dir under /uploads/.
func WithUploadsDir(dir string) PublicOption {
	return func(api *PublicAPI) {
		if api != nil {
			api.uploadsDir = dir
		}
	}
}

// WithPublicClock sets the clock used for sitemap lastmod values.
func WithPublicClock(now func() time.Time) PublicOption {
	return func(api *PublicAPI) {
		if api != nil && now != nil {
			api.now = now
		}
	}
}

// Register attaches the public routes to mux.
func (api *PublicAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: public api is nil")
	}

	mux.HandleFunc("GET /api/articles", api.handleArticleList)
	mux.HandleFunc("GET /api/articles/{slug}", api.handleArticleGet)
	mux.HandleFunc("GET /articles/{slug}", api.handleArticleFragment)
	mux.HandleFunc("GET /api/episodes", api.handleEpisodeList)
	mux.HandleFunc("GET /api/episodes/{slug}", api.handleEpisodeGet)
	mux.HandleFunc("GET /api/resources", api.handleResourceList)
	mux.HandleFunc("GET /sitemap.xml", api.handleSitemap)
	mux.HandleFunc("GET /robots.txt", api.handleRobots)

	if strings.TrimSpace(api.uploadsDir) != "" {
		files := http.StripPrefix(mediacmd.PublicPrefix, http.FileServer(http.Dir(api.uploadsDir)))
		mux.Handle("GET "+mediacmd.PublicPrefix, files)
	}
	return nil
}

func (api *PublicAPI) handleArticleList(w http.ResponseWriter, r *http.Request) {
	if api.repos.Articles == nil {
		unavailable(w)
		return
	}
	list, err := api.repos.Articles.List(r.Context(), content.ListOptions{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// publishedArticle renders a published article. Drafts read as missing.
func (api *PublicAPI) publishedArticle(r *http.Request) (render.Article, error) {
	slug := r.PathValue("slug")
	entry, err := api.repos.Articles.Get(r.Context(), slug)
	if err != nil {
		return render.Article{}, err
	}
	if entry.Meta.Status == content.StatusDraft {
		return render.Article{}, &content.NotFoundError{Collection: string(content.KindArticles), Slug: slug}
	}
	return api.renderer.RenderArticle(r.Context(), entry)
}

func (api *PublicAPI) handleArticleGet(w http.ResponseWriter, r *http.Request) {
	if api.repos.Articles == nil {
		unavailable(w)
		return
	}
	article, err := api.publishedArticle(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (api *PublicAPI) handleArticleFragment(w http.ResponseWriter, r *http.Request) {
	if api.repos.Articles == nil {
		unavailable(w)
		return
	}
	article, err := api.publishedArticle(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeText(w, "text/html; charset=utf-8", article.HTML)
}

func (api *PublicAPI) handleEpisodeList(w http.ResponseWriter, r *http.Request) {
	if api.repos.Episodes == nil {
		unavailable(w)
		return
	}
	list, err := api.repos.Episodes.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *PublicAPI) handleEpisodeGet(w http.ResponseWriter, r *http.Request) {
	if api.repos.Episodes == nil {
		unavailable(w)
		return
	}
	entry, err := api.repos.Episodes.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (api *PublicAPI) handleResourceList(w http.ResponseWriter, r *http.Request) {
	if api.repos.Resources == nil {
		unavailable(w)
		return
	}
	list, err := api.repos.Resources.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *PublicAPI) handleSitemap(w http.ResponseWriter, r *http.Request) {
	var (
		articles []content.Article
		episodes []content.Episode
	)
	if api.repos.Articles != nil {
		list, err := api.repos.Articles.List(r.Context(), content.ListOptions{})
		if err != nil {
			writeError(w, err)
			return
		}
		for _, entry := range list {
			articles = append(articles, entry.Meta)
		}
	}
	if api.repos.Episodes != nil {
		list, err := api.repos.Episodes.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		for _, entry := range list {
			episodes = append(episodes, entry.Meta)
		}
	}
	writeText(w, "application/xml; charset=utf-8", site.Sitemap(api.baseURL, articles, episodes, api.now()))
}

func (api *PublicAPI) handleRobots(w http.ResponseWriter, r *http.Request) {
	writeText(w, "text/plain; charset=utf-8", site.Robots(api.baseURL))
}
