package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/astopo/pkg/cli"
)

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build and verify the topology",
		Long: `Build the topology from the input directory and verify its
allocation invariants. Nothing is written.

  astopo build -i ./topology-data
  astopo build -i ./topology-data --host 13335*4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, topo, err := buildTopology()
			if err != nil {
				return err
			}
			s := summarize(topo)

			fmt.Printf("%s %s (%s, %d paths)\n", green("✓"), cli.Bold(in.Config.Name), topo.Mode(), len(in.Paths))
			fmt.Println(cli.DotPad("autonomous systems", 24), s.ASes)
			fmt.Println(cli.DotPad("routers", 24), s.Routers)
			fmt.Println(cli.DotPad("router links", 24), s.RouterLinks)
			fmt.Println(cli.DotPad("switches", 24), s.Switches)
			fmt.Println(cli.DotPad("end hosts", 24), s.Hosts)
			return nil
		},
	}
}
