package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/astopo/pkg/labgen"
	"github.com/newtron-network/astopo/pkg/settings"
)

var (
	exportOutput string
	exportName   string
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write lab artifacts for the emulation layer",
		Long: `Build the topology and write:

  <name>.clab.yml   containerlab topology
  topology.json     per-AS address plans, router links, hosts
  config_db.json    AS, DEVICE and INTERFACE tables

The output directory defaults to the output_dir setting.

  astopo export -i ./topology-data -o ./lab --host 13335*2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, topo, err := buildTopology()
			if err != nil {
				return err
			}
			dir := exportOutput
			if dir == "" {
				s, err := settings.Load()
				if err != nil {
					return fmt.Errorf("loading settings: %w", err)
				}
				dir = s.GetOutputDir()
			}
			name := exportName
			if name == "" {
				name = in.Config.Name
			}
			if err := labgen.GenerateAll(topo, name, dir); err != nil {
				return err
			}
			s := summarize(topo)
			fmt.Printf("%s %s: %d nodes, %d router links written to %s\n",
				green("✓"), name, s.Routers+s.Switches+s.Hosts, s.RouterLinks, dir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output directory")
	cmd.Flags().StringVar(&exportName, "name", "", "lab name (default: config name or input directory name)")
	return cmd
}
