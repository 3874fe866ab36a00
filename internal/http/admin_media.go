package http

import (
	"net/http"

	draftcmd "github.com/flohusson/attitude-emoi/internal/commands/drafts"
	mediacmd "github.com/flohusson/attitude-emoi/internal/commands/media"
)

func (api *AdminAPI) registerMediaRoutes(mux *http.ServeMux, base string) {
	mux.HandleFunc("POST "+joinPath(base, "drafts"), api.handleGenerateDrafts)
	mux.HandleFunc("POST "+joinPath(base, "uploads"), api.handleUpload)
}

// handleGenerateDrafts turns an uploaded transcript into draft articles and
// answers with the saved slugs.
func (api *AdminAPI) handleGenerateDrafts(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.drafts == nil {
		unavailable(w)
		return
	}
	name, mimeType, data, err := readUpload(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var result draftcmd.Result
	msg := draftcmd.GenerateDraftsCommand{
		FileName:       name,
		MimeType:       mimeType,
		Data:           data,
		ResultCallback: func(res draftcmd.Result) { result = res },
	}
	if err := api.drafts.Execute(r.Context(), msg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (api *AdminAPI) handleUpload(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.uploads == nil {
		unavailable(w)
		return
	}
	name, _, data, err := readUpload(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var result mediacmd.UploadResult
	msg := mediacmd.StoreUploadCommand{
		FileName:       name,
		Data:           data,
		ResultCallback: func(res mediacmd.UploadResult) { result = res },
	}
	if err := api.uploads.Execute(r.Context(), msg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
