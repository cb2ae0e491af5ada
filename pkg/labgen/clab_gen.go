package labgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/astopo/pkg/topology"
)

// BuildClabTopology converts a generated topology into a containerlab
// definition. Every paired interface becomes one link, its endpoints named
// by interface port.
func BuildClabTopology(t *topology.Topology, name string) *ClabTopology {
	clab := &ClabTopology{
		Name: name,
		Topology: ClabTopoSpec{
			Nodes: make(map[string]*ClabNode),
		},
	}

	for _, n := range t.Nodes() {
		node := &ClabNode{
			Kind:  n.Profile.Kind,
			Image: n.Profile.Image,
			Labels: map[string]string{
				"astopo.asn":  strconv.FormatUint(uint64(n.ASN), 10),
				"astopo.role": n.Kind.String(),
			},
		}
		if len(n.Profile.Caps) > 0 {
			node.CapAdd = append([]string(nil), n.Profile.Caps...)
		}

		// Switches are bridges; only containers get addresses.
		if n.Kind != topology.KindSwitch {
			for _, id := range n.Interfaces {
				ifc := t.Interface(id)
				if !ifc.Address.IsValid() {
					continue
				}
				node.Exec = append(node.Exec,
					fmt.Sprintf("ip addr add %s dev %s", ifc.Address, ifc.Port))
			}
			if n.Kind == topology.KindHost {
				node.Labels["astopo.variant"] = string(n.Variant)
				node.Cmd = "sleep infinity"
				if hl, ok := t.HostLink(n.ID); ok && hl.Gateway.IsValid() {
					node.Exec = append(node.Exec,
						fmt.Sprintf("ip route replace default via %s", hl.Gateway.Addr()))
				}
			}
		}

		clab.Topology.Nodes[n.Name] = node
	}

	for _, l := range t.Links() {
		a, z := t.Interface(l.A), t.Interface(l.Z)
		clab.Topology.Links = append(clab.Topology.Links, ClabLink{
			Endpoints: []string{
				t.Node(a.Owner).Name + ":" + a.Port,
				t.Node(z.Owner).Name + ":" + z.Port,
			},
		})
	}

	return clab
}

// GenerateClabTopology writes <name>.clab.yml into outputDir.
func GenerateClabTopology(t *topology.Topology, name, outputDir string) error {
	clab := BuildClabTopology(t, name)

	data, err := yaml.Marshal(clab)
	if err != nil {
		return fmt.Errorf("marshalling containerlab YAML: %w", err)
	}

	path := filepath.Join(outputDir, name+".clab.yml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing containerlab YAML: %w", err)
	}

	return nil
}
