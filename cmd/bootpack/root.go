package main

import "github.com/spf13/cobra"

func newRootCommand(app *application) *cobra.Command {
	root := &cobra.Command{
		Use:   "bootpack",
		Short: "Bundle standalone applications into a kernel boot payload",
		Long: `Bootpack assembles standalone user-space binaries into a single boot
payload artifact, the table a kernel consults by name when it creates its
first processes. It also exports the payload as an initramfs archive and
generates the Go source a kernel build embeds the artifact with.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newBuildCommand(app),
		newInspectCommand(app),
		newVerifyCommand(app),
		newExportCommand(app),
		newBootstrapCommand(app),
		newGenCommand(app),
		newVersionCommand(app),
	)

	return root
}
