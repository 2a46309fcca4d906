// Package options defines the flags shared by unitctl commands.
package options

import (
	"github.com/spf13/cobra"
)

// LibraryOptions selects the units folder and label document to work on.
// Empty values fall back to the configuration and then to the last ones
// used.
type LibraryOptions struct {
	Units string
	Doc   string
}

func AddLibraryArgs(cmd *cobra.Command, o *LibraryOptions) {
	cmd.PersistentFlags().StringVar(&o.Units, "units", "",
		"Units folder holding the item folders and label documents.")
	cmd.PersistentFlags().StringVar(&o.Doc, "doc", "",
		"Label document inside the units folder.")
}
