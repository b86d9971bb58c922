package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gostruct",
		Short: "Typed struct schemas with dirty tracking",
		Long: `gostruct loads struct and enum declarations from a YAML schema file and
checks, normalizes and diffs JSON documents against them.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("schema", "", "YAML schema file (default schema.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("lang", "", "message language (BCP 47 tag)")
	pf.Bool("pretty", false, "indent JSON output")
	pf.Bool("strict", false, "fail on rejected property redefinitions")
	pf.String("config-dir", ".", "directory searched for gostruct.yaml")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newDirtyCmd())
	return rootCmd
}
