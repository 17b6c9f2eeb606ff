package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/microkern/bootpack/lib/bundler"
)

func newBuildCommand(app *application) *cobra.Command {
	var manifestPath string
	var ensure bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble the boot payload from a manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := bundler.LoadManifest(manifestPath)
			if err != nil {
				return err
			}

			var res *bundler.Result
			if ensure {
				res, err = app.Bundler.Ensure(cmd.Context(), manifest)
			} else {
				res, err = app.Bundler.Build(cmd.Context(), manifest)
			}
			if err != nil {
				return err
			}

			if !res.Rebuilt {
				fmt.Printf("payload current: %s (%s, %d applications)\n",
					res.Path, humanize.Bytes(uint64(res.Size)), len(res.Entries))
				return nil
			}
			fmt.Printf("payload written: %s (%s, %d applications)\n",
				res.Path, humanize.Bytes(uint64(res.Size)), len(res.Entries))
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "f", app.Config.ManifestPath, "manifest declaring applications in boot order")
	cmd.Flags().BoolVar(&ensure, "ensure", false, "skip writing when the stored payload is already current")

	return cmd
}
