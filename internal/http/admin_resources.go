package http

import (
	"net/http"

	resourcecmd "github.com/flohusson/attitude-emoi/internal/commands/resources"
)

func (api *AdminAPI) registerResourceRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "resources")
	mux.HandleFunc("GET "+root, api.handleResourceList)
	mux.HandleFunc("POST "+root, api.handleResourceCreate)
	mux.HandleFunc("GET "+root+"/{slug}", api.handleResourceGet)
	mux.HandleFunc("PUT "+root+"/{slug}", api.handleResourceUpdate)
	mux.HandleFunc("DELETE "+root+"/{slug}", api.handleResourceDelete)
}

func (api *AdminAPI) resourcesReady(w http.ResponseWriter) bool {
	if api == nil || api.repos.Resources == nil || api.resourceCommands == nil {
		unavailable(w)
		return false
	}
	return true
}

func (api *AdminAPI) handleResourceList(w http.ResponseWriter, r *http.Request) {
	if !api.resourcesReady(w) {
		return
	}
	list, err := api.repos.Resources.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *AdminAPI) handleResourceGet(w http.ResponseWriter, r *http.Request) {
	if !api.resourcesReady(w) {
		return
	}
	entry, err := api.repos.Resources.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (api *AdminAPI) handleResourceCreate(w http.ResponseWriter, r *http.Request) {
	if !api.resourcesReady(w) {
		return
	}
	var msg resourcecmd.SaveResourceCommand
	if err := decodeJSON(r, &msg); err != nil {
		badRequest(w, err.Error())
		return
	}
	api.saveResource(w, r, msg, http.StatusCreated)
}

func (api *AdminAPI) handleResourceUpdate(w http.ResponseWriter, r *http.Request) {
	if !api.resourcesReady(w) {
		return
	}
	var msg resourcecmd.SaveResourceCommand
	if err := decodeJSON(r, &msg); err != nil {
		badRequest(w, err.Error())
		return
	}
	if msg.Resource.Slug == "" {
		msg.Resource.Slug = r.PathValue("slug")
	}
	api.saveResource(w, r, msg, http.StatusOK)
}

func (api *AdminAPI) saveResource(w http.ResponseWriter, r *http.Request, msg resourcecmd.SaveResourceCommand, status int) {
	if err := api.resourceCommands.Save.Execute(r.Context(), msg); err != nil {
		writeError(w, err)
		return
	}
	// the slug may have been derived from the title
	meta := msg.Resource
	meta.ApplyDefaults()
	saved, err := api.repos.Resources.Get(r.Context(), meta.Slug)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, saved)
}

func (api *AdminAPI) handleResourceDelete(w http.ResponseWriter, r *http.Request) {
	if !api.resourcesReady(w) {
		return
	}
	msg := resourcecmd.DeleteResourceCommand{Slug: r.PathValue("slug")}
	if err := api.resourceCommands.Delete.Execute(r.Context(), msg); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
