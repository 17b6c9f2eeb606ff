package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCommand(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bootpack version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bootpack %s (%s)\n", app.Config.Version, runtime.Version())
		},
	}
}
