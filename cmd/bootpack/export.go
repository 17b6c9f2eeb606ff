package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/microkern/bootpack/lib/initramfs"
	"github.com/microkern/bootpack/lib/payload"
)

func newExportCommand(app *application) *cobra.Command {
	var (
		output string
		dir    string
		gz     bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored payload as a newc cpio initramfs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closePayload, err := payload.Open(app.Paths.Payload())
			if err != nil {
				return err
			}
			defer closePayload()

			if output == "" {
				output = app.Paths.Initramfs()
				if gz {
					output = app.Paths.InitramfsGz()
				}
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create archive: %w", err)
			}
			if err := initramfs.Export(p, f, initramfs.Options{Dir: dir, Gzip: gz}); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close archive: %w", err)
			}

			fmt.Printf("initramfs written: %s (%d applications)\n", output, p.Count())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path (default: under the data directory)")
	cmd.Flags().StringVar(&dir, "dir", initramfs.DefaultDir, "directory applications unpack into")
	cmd.Flags().BoolVar(&gz, "gzip", false, "gzip the archive")

	return cmd
}
