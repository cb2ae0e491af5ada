package main

import (
	"fmt"
	"net/netip"

	"github.com/spf13/cobra"

	"github.com/newtron-network/astopo/pkg/labgen"
	"github.com/newtron-network/astopo/pkg/topology"
	"github.com/newtron-network/astopo/pkg/util"
)

var (
	addHostVariant string
	addHostCount   int
	addHostOutput  string
)

func newAddHostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-host <asn> [address]",
		Short: "Attach end hosts to an AS",
		Long: `Build the topology, then attach end hosts to one AS.

Without an address, hosts take the next free addresses of the AS's
end-host pool. A supplied address must lie in the pool and must not be
issued already. With -o, the resulting lab is exported.

  astopo add-host 13335
  astopo add-host 13335 --count 5 --variant tm-agent
  astopo add-host 13335 104.16.0.10 -o ./lab`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			asn, err := util.ParseASN(args[0])
			if err != nil {
				return err
			}
			variant, err := topology.ParseHostVariant(addHostVariant)
			if err != nil {
				return err
			}
			var ip netip.Addr
			if len(args) == 2 {
				if ip, err = netip.ParseAddr(args[1]); err != nil {
					return fmt.Errorf("%w: %v", util.ErrInvalidInput, err)
				}
				if addHostCount != 1 {
					return fmt.Errorf("--count cannot be combined with an address")
				}
			}
			if addHostCount < 1 {
				return fmt.Errorf("--count must be at least 1")
			}

			in, topo, err := buildTopology()
			if err != nil {
				return err
			}

			var added []topology.NodeID
			for i := 0; i < addHostCount; i++ {
				h, err := topo.AddEndHost(asn, ip, variant)
				if err != nil {
					return err
				}
				added = append(added, h.ID)
			}
			if err := topo.Verify(); err != nil {
				return err
			}
			printHosts(topo, added)

			if addHostOutput != "" {
				if err := labgen.GenerateAll(topo, in.Config.Name, addHostOutput); err != nil {
					return err
				}
				fmt.Printf("\n%s lab written to %s\n", green("✓"), addHostOutput)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addHostVariant, "variant", "host", "host variant: host, tm-agent, tm-dispatcher")
	cmd.Flags().IntVar(&addHostCount, "count", 1, "number of hosts to attach")
	cmd.Flags().StringVarP(&addHostOutput, "output", "o", "", "export the lab to this directory")
	return cmd
}
