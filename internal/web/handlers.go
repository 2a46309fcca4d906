package web

import (
	"net/http"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	data := ViewData{
		Title:           "Unit viewer",
		ContentTemplate: "viewer",
		Documents:       []string{},
	}
	if lib := s.library(); lib != nil {
		data.UnitsPath = lib.Root()
		docs, err := lib.Documents()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if docs != nil {
			data.Documents = docs
		}
	}
	if sess, err := s.session(); err == nil {
		data.Unit = s.buildView(sess)
		data.Title = sess.State().Document()
	}
	s.views.RenderPage(w, data)
}
