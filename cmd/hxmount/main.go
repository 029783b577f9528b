// Command hxmount mounts component islands into HTML pages from a
// component manifest, either once from the command line or as a server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	rootCmd := &cobra.Command{
		Use:   "hxmount",
		Short: "Mount server-rendered component islands into HTML pages",
		Long: `hxmount replaces data-rr placeholders in HTML pages with rendered
components declared in a manifest (HCL or YAML).

Examples:
  hxmount list -m components.hcl
  hxmount mount page.html -m components.hcl > out.html
  hxmount mount page.html -m components.yaml --roundtrip
  hxmount serve ./public -m components.hcl --addr :8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.manifest, "manifest", "m", "hxmount.hcl", "Component manifest (.hcl, .yaml)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&g.s3Region, "s3-region", os.Getenv("AWS_REGION"), "Region for s3:// templates")
	rootCmd.PersistentFlags().StringVar(&g.s3Endpoint, "s3-endpoint", "", "Custom S3 endpoint (MinIO, localstack)")

	rootCmd.AddCommand(
		mountCmd(&g),
		listCmd(&g),
		serveCmd(&g),
		versionCmd(),
	)

	return rootCmd
}
