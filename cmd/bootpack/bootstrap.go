package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/microkern/bootpack/lib/boot"
	"github.com/microkern/bootpack/lib/payload"
	"github.com/microkern/bootpack/lib/registry"
)

// previewLoader prints each process the sequencer would create instead of
// creating it.
type previewLoader struct {
	out io.Writer
}

func (l *previewLoader) CreateProcess(ctx context.Context, req boot.Request) error {
	_, err := fmt.Fprintf(l.out, "[%d] create process %q (%s)\n",
		req.Index, req.Name, humanize.Bytes(uint64(req.Image.Length())))
	return err
}

func newBootstrapCommand(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Preview the boot sequence the stored payload produces",
		Long: `Bootstrap walks the stored payload in registry order and prints each
process the kernel would create at boot, without creating anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closePayload, err := payload.Open(app.Paths.Payload())
			if err != nil {
				return err
			}
			defer closePayload()

			seq := boot.NewSequencer(registry.New(p), &previewLoader{out: os.Stdout})
			if err := seq.Run(cmd.Context()); err != nil {
				return err
			}

			fmt.Printf("%d processes would be created\n", seq.Submitted())
			return nil
		},
	}
}
