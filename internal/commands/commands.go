// Package commands is the cobra command tree of unitctl.
package commands

import (
	"github.com/spf13/cobra"

	"unitview/internal/commands/options"
)

type root struct {
	lo options.LibraryOptions
	oo options.OutputOptions
}

func New() *cobra.Command {
	r := &root{}
	cmd := &cobra.Command{
		Use:           "unitctl",
		Short:         "Browse and label unit folders from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			r.oo.Out = cmd.OutOrStdout()
			return r.oo.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	options.AddLibraryArgs(cmd, &r.lo)
	options.AddOutputArg(cmd, &r.oo)

	r.addDocs(cmd)
	r.addNew(cmd)
	r.addQuery(cmd)
	r.addTags(cmd)
	r.addShow(cmd)
	r.addTag(cmd)
	r.addNote(cmd)
	r.addFill(cmd)
	return cmd
}
