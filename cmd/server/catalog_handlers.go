package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/Simplici0/o.frames/internal/catalog"
)

type catalogResponse struct {
	Frames []catalog.Frame `json:"frames"`
	Sheets []catalog.Sheet `json:"sheets"`
}

func (s *server) handleCatalogList(w http.ResponseWriter, r *http.Request) {
	frames, err := s.store.ListFrames(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	sheets, err := s.store.ListSheets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, catalogResponse{Frames: frames, Sheets: sheets})
}

func (s *server) handleFrameUpsert(w http.ResponseWriter, r *http.Request) {
	var f catalog.Frame
	if err := s.decodeJSON(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	f.Key = chi.URLParam(r, "key")

	if err := s.store.UpsertFrame(r.Context(), f); err != nil {
		writeError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().Str("frame", f.Key).Int("options", len(f.Options)).Msg("frame saved")
	writeJSON(w, http.StatusOK, f)
}

func (s *server) handleSheetUpsert(w http.ResponseWriter, r *http.Request) {
	var sh catalog.Sheet
	if err := s.decodeJSON(r, &sh); err != nil {
		writeError(w, r, err)
		return
	}
	sh.Key = chi.URLParam(r, "key")

	if err := s.store.UpsertSheet(r.Context(), sh); err != nil {
		writeError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().Str("sheet", sh.Key).Str("material", string(sh.Material)).Msg("sheet saved")
	writeJSON(w, http.StatusOK, sh)
}
