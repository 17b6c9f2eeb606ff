package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/microkern/bootpack/lib/bundler"
)

func newInspectCommand(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [payload]",
		Short: "Summarize a payload artifact",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res *bundler.Result
			var err error
			if len(args) == 1 {
				res, err = bundler.InspectFile(cmd.Context(), args[0])
			} else {
				res, err = app.Bundler.Inspect(cmd.Context())
			}
			if err != nil {
				return err
			}

			fmt.Printf("payload: %s\n", res.Path)
			fmt.Printf("size: %s\n", humanize.Bytes(uint64(res.Size)))
			fmt.Printf("digest: %s\n", res.Digest)
			fmt.Printf("applications: %d\n", len(res.Entries))
			if len(res.Entries) == 0 {
				return nil
			}
			fmt.Println()

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Index", "Name", "Size", "Offset", "Digest"})
			for i, e := range res.Entries {
				table.Append([]string{
					strconv.Itoa(i),
					e.Name,
					humanize.Bytes(e.Size),
					fmt.Sprintf("0x%08x", e.Offset),
					e.Digest[:12],
				})
			}
			table.Render()
			return nil
		},
	}

	return cmd
}
