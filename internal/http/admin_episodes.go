package http

import (
	"net/http"

	"github.com/flohusson/attitude-emoi/content"
	episodecmd "github.com/flohusson/attitude-emoi/internal/commands/episodes"
	"github.com/flohusson/attitude-emoi/internal/importer"
)

type episodeTypePayload struct {
	Type content.EpisodeType `json:"type"`
}

type importPayload struct {
	XML string `json:"xml,omitempty"`
	URL string `json:"url,omitempty"`
}

func (api *AdminAPI) registerEpisodeRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "episodes")
	mux.HandleFunc("GET "+root, api.handleEpisodeList)
	mux.HandleFunc("POST "+root, api.handleEpisodeCreate)
	mux.HandleFunc("POST "+root+"/import", api.handleEpisodeImport)
	mux.HandleFunc("GET "+root+"/{slug}", api.handleEpisodeGet)
	mux.HandleFunc("PUT "+root+"/{slug}", api.handleEpisodeUpdate)
	mux.HandleFunc("DELETE "+root+"/{slug}", api.handleEpisodeDelete)
	mux.HandleFunc("PATCH "+root+"/{slug}/type", api.handleEpisodeType)
}

func (api *AdminAPI) episodesReady(w http.ResponseWriter) bool {
	if api == nil || api.repos.Episodes == nil || api.episodeCommands == nil {
		unavailable(w)
		return false
	}
	return true
}

func (api *AdminAPI) handleEpisodeList(w http.ResponseWriter, r *http.Request) {
	if !api.episodesReady(w) {
		return
	}
	list, err := api.repos.Episodes.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *AdminAPI) handleEpisodeGet(w http.ResponseWriter, r *http.Request) {
	if !api.episodesReady(w) {
		return
	}
	entry, err := api.repos.Episodes.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (api *AdminAPI) handleEpisodeCreate(w http.ResponseWriter, r *http.Request) {
	if !api.episodesReady(w) {
		return
	}
	var msg episodecmd.SaveEpisodeCommand
	if err := decodeJSON(r, &msg); err != nil {
		badRequest(w, err.Error())
		return
	}
	api.saveEpisode(w, r, msg, http.StatusCreated)
}

func (api *AdminAPI) handleEpisodeUpdate(w http.ResponseWriter, r *http.Request) {
	if !api.episodesReady(w) {
		return
	}
	var msg episodecmd.SaveEpisodeCommand
	if err := decodeJSON(r, &msg); err != nil {
		badRequest(w, err.Error())
		return
	}
	if msg.Episode.Slug == "" {
		msg.Episode.Slug = r.PathValue("slug")
	}
	api.saveEpisode(w, r, msg, http.StatusOK)
}

func (api *AdminAPI) saveEpisode(w http.ResponseWriter, r *http.Request, msg episodecmd.SaveEpisodeCommand, status int) {
	if err := api.episodeCommands.Save.Execute(r.Context(), msg); err != nil {
		writeError(w, err)
		return
	}
	saved, err := api.repos.Episodes.Get(r.Context(), msg.Episode.Slug)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, saved)
}

func (api *AdminAPI) handleEpisodeDelete(w http.ResponseWriter, r *http.Request) {
	if !api.episodesReady(w) {
		return
	}
	msg := episodecmd.DeleteEpisodeCommand{Slug: r.PathValue("slug")}
	if err := api.episodeCommands.Delete.Execute(r.Context(), msg); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *AdminAPI) handleEpisodeType(w http.ResponseWriter, r *http.Request) {
	if !api.episodesReady(w) {
		return
	}
	var payload episodeTypePayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, err.Error())
		return
	}
	msg := episodecmd.UpdateEpisodeTypeCommand{Slug: r.PathValue("slug"), EpisodeType: payload.Type}
	if err := api.episodeCommands.UpdateType.Execute(r.Context(), msg); err != nil {
		writeError(w, err)
		return
	}
	updated, err := api.repos.Episodes.Get(r.Context(), msg.Slug)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleEpisodeImport accepts either pasted feed XML or a feed URL.
func (api *AdminAPI) handleEpisodeImport(w http.ResponseWriter, r *http.Request) {
	if !api.episodesReady(w) {
		return
	}
	var payload importPayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, err.Error())
		return
	}
	var result importer.Result
	msg := episodecmd.ImportEpisodesCommand{
		XML:            payload.XML,
		URL:            payload.URL,
		ResultCallback: func(res importer.Result) { result = res },
	}
	if err := api.episodeCommands.Import.Execute(r.Context(), msg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
