package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newtron-network/astopo/pkg/addr"
	"github.com/newtron-network/astopo/pkg/cli"
	"github.com/newtron-network/astopo/pkg/labgen"
	"github.com/newtron-network/astopo/pkg/topology"
	"github.com/newtron-network/astopo/pkg/util"
)

var showJSON bool

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [asn]",
		Short: "Show ASes, or one AS in detail",
		Long: `Show the generated topology.

Without arguments, lists every AS with its address plan.
With an ASN, shows that AS's router links, gateway segments and hosts.

  astopo show
  astopo show 13335
  astopo show --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, topo, err := buildTopology()
			if err != nil {
				return err
			}
			if showJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(labgen.BuildTopologySpec(topo, in.Config.Name))
			}
			if len(args) == 0 {
				showAll(topo)
				return nil
			}
			asn, err := util.ParseASN(args[0])
			if err != nil {
				return err
			}
			as, ok := topo.AS(asn)
			if !ok {
				return fmt.Errorf("%w: AS%d is not part of the topology", util.ErrNotFound, asn)
			}
			showAS(topo, as)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showJSON, "json", false, "JSON output (topology.json format)")
	return cmd
}

func showAll(topo *topology.Topology) {
	t := cli.NewTable("ASN", "PREFIXES", "ROUTER POOL", "NEIGHBORS", "HOSTS")
	for _, as := range topo.ASes() {
		t.Row(
			strconv.FormatUint(uint64(as.ASN), 10),
			addr.Join(as.AdvertisedPrefixes(), ","),
			addr.Join(as.RouterPool(), ","),
			strconv.Itoa(len(as.Neighbors())),
			strconv.Itoa(len(as.Hosts())),
		)
	}
	t.Flush()
}

func showAS(topo *topology.Topology, as *topology.AS) {
	fmt.Printf("%s\n\n", cli.Bold(fmt.Sprintf("AS%d", as.ASN)))
	fmt.Println(cli.DotPad("prefixes", 18), addr.Join(as.AdvertisedPrefixes(), ","))
	fmt.Println(cli.DotPad("router pool", 18), addr.Join(as.RouterPool(), ","))
	fmt.Println(cli.DotPad("end-host pool", 18), addr.Join(as.EndHostPool(), ","))
	fmt.Println(cli.DotPad("issued", 18), as.IssuedCount())

	for _, id := range as.Routers() {
		r := topo.Node(id)
		fmt.Printf("\n%s %s\n", cli.Bold(r.Name), cli.Dim(r.Profile.Image))

		links := cli.NewTable("INTERFACE", "ADDRESS", "PEER", "PEER ADDRESS", "PEER AS").WithPrefix("  ")
		for _, rl := range topo.RouterLinks(id) {
			links.Row(rl.Interface, rl.Local.String(), rl.PeerNode, rl.Peer.String(),
				strconv.FormatUint(uint64(rl.PeerASN), 10))
		}
		links.Flush()

		segs := cli.NewTable("INTERFACE", "GATEWAY", "SWITCH").WithPrefix("  ")
		for _, sl := range topo.SwitchLinks(id) {
			segs.Row(sl.Interface, sl.Gateway.String(), sl.Switch)
		}
		segs.Flush()
	}

	if len(as.Hosts()) == 0 {
		return
	}
	fmt.Println()
	printHosts(topo, as.Hosts())
}

func printHosts(topo *topology.Topology, ids []topology.NodeID) {
	t := cli.NewTable("HOST", "VARIANT", "ADDRESS", "GATEWAY", "SWITCH")
	for _, id := range ids {
		h := topo.Node(id)
		hl, _ := topo.HostLink(id)
		gw := ""
		if hl.Gateway.IsValid() {
			gw = hl.Gateway.Addr().String()
		}
		t.Row(h.Name, string(h.Variant), hl.Address.String(), gw, hl.Switch)
	}
	t.Flush()
}
