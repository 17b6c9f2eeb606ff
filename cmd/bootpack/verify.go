package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCommand(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the stored payload against its recorded digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Bundler.Verify(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("payload verified: %s (%d applications, digest %s)\n",
				res.Path, len(res.Entries), res.Digest)
			return nil
		},
	}
}
