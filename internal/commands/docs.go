package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"unitview/internal/labels"
	"unitview/internal/session"
)

func (r *root) addDocs(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "List the label documents of the units folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := r.openWorkspace(cmd.Context())
			if err != nil {
				return r.oo.HandleError(err)
			}
			defer ws.close()
			docs, err := ws.lib.Documents()
			if err != nil {
				return r.oo.HandleError(err)
			}
			cur := ""
			if last, err := ws.db.LastUsed(cmd.Context()); err == nil && last.UnitsPath == ws.lib.Root() {
				cur = last.Document
			}
			return r.oo.HandleError(r.printer().Documents(docs, cur))
		},
	}
	topLevel.AddCommand(cmd)
}

func (r *root) addNew(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty label document",
		Example: `
unitctl --units ./figures new review
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := r.openWorkspace(cmd.Context())
			if err != nil {
				return r.oo.HandleError(err)
			}
			defer ws.close()
			name, err := ws.lib.Create(cmd.Context(), args[0])
			if err != nil {
				return r.oo.HandleError(err)
			}
			return r.oo.HandleError(r.printer().Message("created " + name))
		},
	}
	topLevel.AddCommand(cmd)
}

func (r *root) addQuery(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "query [expression]",
		Short: "List the units matching a query",
		Example: `
unitctl query 'red ^^ %todo'
unitctl query "'u1'"
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := r.openSession(cmd.Context())
			if err != nil {
				return r.oo.HandleError(err)
			}
			defer ws.close()
			st, err := ws.sess.ApplyQuery(strings.Join(args, " "))
			if err != nil {
				return r.oo.HandleError(err)
			}
			return r.oo.HandleError(r.printer().Items(st.Query().String(), st.Active()))
		},
	}
	topLevel.AddCommand(cmd)
}

func (r *root) addTags(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "tags [expression]",
		Short: "Count the tags of the units matching a query",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := r.openSession(cmd.Context())
			if err != nil {
				return r.oo.HandleError(err)
			}
			defer ws.close()
			st, err := ws.sess.ApplyQuery(strings.Join(args, " "))
			if err != nil {
				return r.oo.HandleError(err)
			}
			return r.oo.HandleError(r.printer().Tags(st.Index().Summary()))
		},
	}
	topLevel.AddCommand(cmd)
}

func (r *root) addShow(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the tags and notes of a unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := r.openSession(cmd.Context())
			if err != nil {
				return r.oo.HandleError(err)
			}
			defer ws.close()
			if _, err := ws.sess.Select(args[0]); err != nil {
				return r.oo.HandleError(err)
			}
			return r.oo.HandleError(r.printer().Unit(ws.sess.View()))
		},
	}
	topLevel.AddCommand(cmd)
}

func (r *root) addFill(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Add every unit folder missing from the document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := r.openSession(cmd.Context())
			if err != nil {
				return r.oo.HandleError(err)
			}
			defer ws.close()
			ids, err := ws.lib.ItemIDs()
			if err != nil {
				return r.oo.HandleError(err)
			}
			_, added, err := ws.sess.Fill(cmd.Context(), ids)
			if err != nil {
				return r.oo.HandleError(err)
			}
			return r.oo.HandleError(r.printer().Filled(ws.sess.State().Document(), added))
		},
	}
	topLevel.AddCommand(cmd)
}

// noteOrdinal accepts "2" as well as "%2".
func noteOrdinal(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if !labels.IsNote(raw) {
		raw = labels.MakeNote(raw)
	}
	return session.ParseNoteOrdinal(raw)
}
