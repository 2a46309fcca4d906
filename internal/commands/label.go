package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var errMissingText = errors.New("requires note text")

func (r *root) addTag(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Add or remove tags",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <id> <tag>",
		Short: "Add a tag to a unit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.mutate(cmd, args[0], func(ws *workspace) error {
				_, err := ws.sess.AddTag(cmd.Context(), args[0], args[1])
				return err
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id> <tag>",
		Aliases: []string{"remove"},
		Short:   "Remove a tag from a unit",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.mutate(cmd, args[0], func(ws *workspace) error {
				_, err := ws.sess.RemoveTag(cmd.Context(), args[0], args[1])
				return err
			})
		},
	})
	topLevel.AddCommand(cmd)
}

func (r *root) addNote(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes"},
		Short:   "Add or remove notes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <id> <text>...",
		Short: "Add a note to a unit",
		Example: `
unitctl note add u1 check the **scale bar**
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			if strings.TrimSpace(text) == "" {
				return r.oo.HandleError(errMissingText)
			}
			return r.mutate(cmd, args[0], func(ws *workspace) error {
				_, err := ws.sess.AddNote(cmd.Context(), args[0], text)
				return err
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id> <ordinal>",
		Aliases: []string{"remove"},
		Short:   "Remove the n-th note of a unit",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := noteOrdinal(args[1])
			if err != nil {
				return r.oo.HandleError(err)
			}
			return r.mutate(cmd, args[0], func(ws *workspace) error {
				_, err := ws.sess.RemoveNoteByOrdinal(cmd.Context(), args[0], n)
				return err
			})
		},
	})
	topLevel.AddCommand(cmd)
}

// mutate runs fn against a fresh session and prints the unit afterwards.
func (r *root) mutate(cmd *cobra.Command, id string, fn func(ws *workspace) error) error {
	ws, err := r.openSession(cmd.Context())
	if err != nil {
		return r.oo.HandleError(err)
	}
	defer ws.close()
	if err := fn(ws); err != nil {
		return r.oo.HandleError(err)
	}
	if _, err := ws.sess.Select(id); err != nil {
		return r.oo.HandleError(err)
	}
	return r.oo.HandleError(r.printer().Unit(ws.sess.View()))
}
