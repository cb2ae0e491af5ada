package labgen

import (
	"path/filepath"
	"strconv"

	"github.com/newtron-network/astopo/pkg/addr"
	"github.com/newtron-network/astopo/pkg/topology"
)

// BuildTopologySpec describes the generated graph per AS, per router and per
// host: address plans, router links with their peers, gateway segments and
// the prefixes each router originates.
func BuildTopologySpec(t *topology.Topology, name string) *TopologyFile {
	tf := &TopologyFile{
		Name:    name,
		Mode:    string(t.Mode()),
		ASes:    make(map[string]*ASEntry),
		Routers: make(map[string]*RouterEntry),
		Hosts:   make(map[string]*HostEntry),
	}

	for _, as := range t.ASes() {
		advertised := addr.Strings(as.AdvertisedPrefixes())
		entry := &ASEntry{
			Prefixes:    advertised,
			RouterPool:  addr.Strings(as.RouterPool()),
			EndHostPool: addr.Strings(as.EndHostPool()),
			Neighbors:   as.Neighbors(),
			Routers:     nodeNames(t, as.Routers()),
			Switches:    nodeNames(t, as.Switches()),
			Hosts:       nodeNames(t, as.Hosts()),
		}
		tf.ASes[strconv.FormatUint(uint64(as.ASN), 10)] = entry

		for _, id := range as.Routers() {
			r := t.Node(id)
			re := &RouterEntry{
				ASN:         r.ASN,
				Image:       r.Profile.Image,
				RouterLinks: []RouterLinkDef{},
				Prefixes:    advertised,
			}
			for _, rl := range t.RouterLinks(id) {
				re.RouterLinks = append(re.RouterLinks, RouterLinkDef{
					Interface:     rl.Interface,
					ClabInterface: rl.Port,
					IP:            rl.Local.String(),
					PeerIP:        rl.Peer.Addr().String(),
					PeerNode:      rl.PeerNode,
					PeerASN:       rl.PeerASN,
				})
			}
			for _, sl := range t.SwitchLinks(id) {
				re.SwitchLinks = append(re.SwitchLinks, SwitchLinkDef{
					Interface:     sl.Interface,
					ClabInterface: sl.Port,
					Gateway:       sl.Gateway.Addr().String(),
					PrefixLen:     sl.Gateway.Bits(),
					Switch:        sl.Switch,
				})
			}
			tf.Routers[r.Name] = re
		}

		for _, id := range as.Hosts() {
			h := t.Node(id)
			he := &HostEntry{ASN: h.ASN, Variant: string(h.Variant)}
			if hl, ok := t.HostLink(id); ok {
				he.Interface = hl.Interface
				he.ClabInterface = hl.Port
				he.IP = hl.Address.String()
				he.Switch = hl.Switch
				if hl.Gateway.IsValid() {
					he.Gateway = hl.Gateway.Addr().String()
				}
			}
			tf.Hosts[h.Name] = he
		}
	}

	return tf
}

// GenerateTopologySpec writes topology.json into outputDir.
func GenerateTopologySpec(t *topology.Topology, name, outputDir string) error {
	return writeJSON(filepath.Join(outputDir, "topology.json"), BuildTopologySpec(t, name))
}

func nodeNames(t *topology.Topology, ids []topology.NodeID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = t.Node(id).Name
	}
	return out
}
