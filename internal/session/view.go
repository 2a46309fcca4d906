package session

import (
	"fmt"

	"unitview/internal/labels"
)

type CloudTag struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	OnItem  bool   `json:"onItem"`
	Tracked bool   `json:"tracked"`
}

type Note struct {
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
}

// View is what a UI shows for a State.
type View struct {
	Document string     `json:"document"`
	Query    string     `json:"query"`
	ItemID   string     `json:"itemId"`
	Position int        `json:"position"`
	Total    int        `json:"total"`
	Items    int        `json:"items"`
	Label    string     `json:"label"`
	Entries  []string   `json:"entries"`
	Notes    []Note     `json:"notes"`
	Cloud    []CloudTag `json:"cloud"`
	Tracking []string   `json:"tracking"`
	Version  int64      `json:"version"`
}

func (s State) View() View {
	v := View{
		Document: s.doc,
		Query:    s.query.String(),
		ItemID:   s.cursor.ItemID,
		Position: s.cursor.Position,
		Total:    len(s.active),
		Items:    s.store.Len(),
		Entries:  []string{},
		Notes:    []Note{},
		Cloud:    []CloudTag{},
		Tracking: s.Tracking(),
	}
	if v.ItemID == "" {
		v.Label = "No Unit Selected"
	} else {
		v.Label = fmt.Sprintf("%s (%d/%d)", v.ItemID, v.Position+1, v.Total)
		if entries, ok := s.store.Entries(v.ItemID); ok {
			v.Entries = entries
		}
	}
	for i, text := range labels.Notes(v.Entries) {
		v.Notes = append(v.Notes, Note{Ordinal: i + 1, Text: text})
	}
	tracked := make(map[string]bool, len(s.tracking))
	for _, t := range s.tracking {
		tracked[t] = true
	}
	for _, t := range s.index.Summary() {
		v.Cloud = append(v.Cloud, CloudTag{
			Name:    t.Name,
			Count:   t.Count,
			OnItem:  labels.Contains(v.Entries, t.Name),
			Tracked: tracked[t.Name],
		})
	}
	return v
}
