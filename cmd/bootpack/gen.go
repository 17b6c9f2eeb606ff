package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/microkern/bootpack/lib/codegen"
)

func newGenCommand(app *application) *cobra.Command {
	var (
		output string
		opts   codegen.Options
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate the Go source that embeds the payload into a kernel build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			if err := codegen.Generate(&buf, opts); err != nil {
				return err
			}

			if output == "" {
				output = app.Paths.GeneratedSource()
			}
			if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("write generated source: %w", err)
			}

			fmt.Printf("generated: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "generated file path (default: under the data directory)")
	cmd.Flags().StringVar(&opts.Package, "package", "kernel", "package clause of the generated file")
	cmd.Flags().StringVar(&opts.PayloadPath, "payload-path", "payload.bin", "go:embed pattern relative to the generated file")
	cmd.Flags().StringVar(&opts.Var, "var", "", "embedded variable name")
	cmd.Flags().StringVar(&opts.Func, "func", "", "accessor function name")

	return cmd
}
