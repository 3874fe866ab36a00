package http

import (
	"net/http"

	"github.com/flohusson/attitude-emoi/content"
	articlecmd "github.com/flohusson/attitude-emoi/internal/commands/articles"
)

func (api *AdminAPI) registerArticleRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "articles")
	mux.HandleFunc("GET "+root, api.handleArticleList)
	mux.HandleFunc("POST "+root, api.handleArticleCreate)
	mux.HandleFunc("GET "+root+"/{slug}", api.handleArticleGet)
	mux.HandleFunc("PUT "+root+"/{slug}", api.handleArticleUpdate)
	mux.HandleFunc("DELETE "+root+"/{slug}", api.handleArticleDelete)

	trash := joinPath(base, "trash")
	mux.HandleFunc("GET "+trash, api.handleTrashList)
	mux.HandleFunc("GET "+trash+"/{slug}", api.handleTrashGet)
	mux.HandleFunc("POST "+trash+"/{slug}/restore", api.handleTrashRestore)
	mux.HandleFunc("DELETE "+trash+"/{slug}", api.handleTrashPurge)

	mux.HandleFunc("GET "+joinPath(base, "status"), api.handleStatus)
}

func (api *AdminAPI) articlesReady(w http.ResponseWriter) bool {
	if api == nil || api.repos.Articles == nil || api.articleCommands == nil {
		unavailable(w)
		return false
	}
	return true
}

func (api *AdminAPI) handleArticleList(w http.ResponseWriter, r *http.Request) {
	if !api.articlesReady(w) {
		return
	}
	opts := content.ListOptions{IncludeDrafts: parseBoolQuery(r.URL.Query().Get("drafts"), true)}
	list, err := api.repos.Articles.List(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *AdminAPI) handleArticleGet(w http.ResponseWriter, r *http.Request) {
	if !api.articlesReady(w) {
		return
	}
	entry, err := api.repos.Articles.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (api *AdminAPI) handleArticleCreate(w http.ResponseWriter, r *http.Request) {
	if !api.articlesReady(w) {
		return
	}
	var msg articlecmd.SaveArticleCommand
	if err := decodeJSON(r, &msg); err != nil {
		badRequest(w, err.Error())
		return
	}
	api.saveArticle(w, r, msg, http.StatusCreated)
}

// handleArticleUpdate saves the payload; a slug in the payload that differs
// from the path renames the article and trashes the old file.
func (api *AdminAPI) handleArticleUpdate(w http.ResponseWriter, r *http.Request) {
	if !api.articlesReady(w) {
		return
	}
	var msg articlecmd.SaveArticleCommand
	if err := decodeJSON(r, &msg); err != nil {
		badRequest(w, err.Error())
		return
	}
	pathSlug := r.PathValue("slug")
	if msg.Article.Slug == "" {
		msg.Article.Slug = pathSlug
	}
	if msg.OriginalSlug == "" {
		msg.OriginalSlug = pathSlug
	}
	api.saveArticle(w, r, msg, http.StatusOK)
}

func (api *AdminAPI) saveArticle(w http.ResponseWriter, r *http.Request, msg articlecmd.SaveArticleCommand, status int) {
	if err := api.articleCommands.Save.Execute(r.Context(), msg); err != nil {
		writeError(w, err)
		return
	}
	saved, err := api.repos.Articles.Get(r.Context(), msg.Article.Slug)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, saved)
}

func (api *AdminAPI) handleArticleDelete(w http.ResponseWriter, r *http.Request) {
	if !api.articlesReady(w) {
		return
	}
	msg := articlecmd.SoftDeleteArticleCommand{Slug: r.PathValue("slug")}
	if err := api.articleCommands.SoftDelete.Execute(r.Context(), msg); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *AdminAPI) handleTrashList(w http.ResponseWriter, r *http.Request) {
	if !api.articlesReady(w) {
		return
	}
	list, err := api.repos.Articles.ListTrash(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *AdminAPI) handleTrashGet(w http.ResponseWriter, r *http.Request) {
	if !api.articlesReady(w) {
		return
	}
	entry, err := api.repos.Articles.GetTrashed(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (api *AdminAPI) handleTrashRestore(w http.ResponseWriter, r *http.Request) {
	if !api.articlesReady(w) {
		return
	}
	msg := articlecmd.RestoreArticleCommand{Slug: r.PathValue("slug")}
	if err := api.articleCommands.Restore.Execute(r.Context(), msg); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *AdminAPI) handleTrashPurge(w http.ResponseWriter, r *http.Request) {
	if !api.articlesReady(w) {
		return
	}
	msg := articlecmd.PermanentDeleteArticleCommand{Slug: r.PathValue("slug")}
	if err := api.articleCommands.PermanentDelete.Execute(r.Context(), msg); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
