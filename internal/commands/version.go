package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(deps.Stdout)
	},
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "dixit %s (built %s)\n", Version, BuildTime)
}
