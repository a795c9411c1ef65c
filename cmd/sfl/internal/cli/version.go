package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/example/sfl-lite/cmd/sfl/internal/ui"
)

// version is set with -ldflags "-X .../cli.version=..." at release time.
var version = "dev"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintInfo(fmt.Sprintf("sfl %s", version))
			if info, ok := debug.ReadBuildInfo(); ok {
				ui.PrintInfo(fmt.Sprintf("go: %s", info.GoVersion))
			}
			ui.PrintInfo("Spectrum-based fault localization for Go test suites")
		},
	}
}
