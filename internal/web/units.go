package web

import (
	"errors"
	"net/http"

	"unitview/internal/library"
)

func (s *Server) handleUnitImages(w http.ResponseWriter, r *http.Request) {
	lib := s.library()
	if lib == nil {
		s.writeError(w, r, errNoLibrary)
		return
	}
	images, err := lib.Images(r.PathValue("id"))
	if errors.Is(err, library.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, imagesResponse{Exists: false, Images: []string{}})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imagesResponse{Exists: true, Images: images})
}

func (s *Server) handleUnitImage(w http.ResponseWriter, r *http.Request) {
	lib := s.library()
	if lib == nil {
		http.NotFound(w, r)
		return
	}
	path, err := lib.ImagePath(r.PathValue("id"), r.PathValue("image"))
	if err != nil {
		http.Error(w, "image not found", statusFor(err))
		return
	}
	http.ServeFile(w, r, path)
}
