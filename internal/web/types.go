package web

import (
	"html/template"

	"unitview/internal/session"
)

type ViewData struct {
	Title           string
	ContentTemplate string
	ContentHTML     template.HTML
	UnitsPath       string
	Documents       []string
	Unit            *unitView
}

// unitView is the JSON and template model of the open session.
type unitView struct {
	session.View
	NotesHTML    []template.HTML `json:"notesHtml"`
	Images       []string        `json:"images"`
	ImagesExist  bool            `json:"imagesExist"`
	PersistError string          `json:"persistError,omitempty"`
}

type documentsResponse struct {
	Documents []string `json:"documents"`
	Current   string   `json:"current"`
}

type pathsResponse struct {
	UnitsPath    string   `json:"unitsPath"`
	DisplayPath  string   `json:"displayPath"`
	HasDocuments bool     `json:"hasDocuments"`
	Documents    []string `json:"documents"`
}

type imagesResponse struct {
	Exists bool     `json:"exists"`
	Images []string `json:"images"`
}

type fillResponse struct {
	*unitView
	Added int `json:"added"`
}

type writeRecord struct {
	Version   int64  `json:"version"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	WrittenAt string `json:"writtenAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}
