package cmd

import (
	"fmt"
	"runtime"

	"github.com/fbz-tec/pgxdump/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pgxdump version %s\n", version.AppVersion)
		fmt.Printf("  build time: %s\n", version.BuildTime)
		fmt.Printf("  git commit: %s\n", version.GitCommit)
		fmt.Printf("  go version: %s\n", runtime.Version())
		fmt.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}
