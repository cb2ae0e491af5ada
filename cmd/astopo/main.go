// astopo: AS-level topology synthesis for network emulation
//
// astopo reads observed AS paths and an AS-to-prefix map, builds an
// AS-level graph with one router per AS, carves each AS's address space
// into router-link and end-host pools, and exports the result for an
// emulation layer.
//
// Usage:
//
//	astopo build -i <dir>             Build and verify the topology
//	astopo show [asn]                 Show ASes, or one AS in detail
//	astopo add-host <asn> [address]   Attach end hosts and list them
//	astopo export -o <dir>            Write containerlab/topology/config_db files
//	astopo publish                    Write the topology into Redis
//	astopo settings show|set|clear    Manage persistent settings
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/astopo/pkg/cli"
	"github.com/newtron-network/astopo/pkg/settings"
	"github.com/newtron-network/astopo/pkg/util"
	"github.com/newtron-network/astopo/pkg/version"
)

var (
	inputDir  string
	verbose   bool
	jsonLog   bool
	hostFlags []string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "astopo",
	Short:             "AS-level topology synthesis for network emulation",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `astopo turns observed AS paths into an emulatable topology.

It reads as_path_list.json, as_to_prefix.json and an optional astopo.yaml
from the input directory, links every pair of neighboring ASes with one
point-to-point link, and assigns end-host addresses from each AS's own
prefixes.

  astopo build -i <dir>`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		if jsonLog {
			util.SetJSONFormat()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&inputDir, "input", "i", "", "input directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "log as JSON")
	rootCmd.PersistentFlags().StringArrayVar(&hostFlags, "host", nil,
		"attach end hosts after build: <asn>[:<variant>][@<address>][*<count>] (repeatable)")

	rootCmd.AddCommand(
		newBuildCmd(),
		newShowCmd(),
		newAddHostCmd(),
		newExportCmd(),
		newPublishCmd(),
		newSettingsCmd(),
		newVersionCmd(),
	)
}

// requireInputDir resolves the input directory from: -i flag > ASTOPO_INPUT env > settings > error.
func requireInputDir() (string, error) {
	if inputDir != "" {
		return inputDir, nil
	}
	if v := os.Getenv("ASTOPO_INPUT"); v != "" {
		return v, nil
	}
	if s, err := settings.Load(); err == nil && s.InputDir != "" {
		return s.InputDir, nil
	}
	return "", fmt.Errorf("input directory required: use -i <dir>, set ASTOPO_INPUT, or run 'astopo settings set input_dir <dir>'")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version.Version == "dev" {
				fmt.Println("astopo dev build (use 'make build' for version info)")
			} else {
				fmt.Printf("astopo %s\n", version.Info())
			}
		},
	}
}

// Color helpers delegating to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
