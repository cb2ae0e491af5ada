// Package topology synthesizes an emulatable AS-level internet topology from
// observed AS paths. It builds the AS graph, carves each AS's address space
// into router-link and end-host pools, links neighboring ASes with exactly
// one addressed point-to-point link per pair, and attaches end hosts on
// demand.
//
// Generation is single-threaded and deterministic: the same inputs always
// yield the same node names and addresses.
package topology

import (
	"fmt"
	"net/netip"
	"sort"

	"github.com/newtron-network/astopo/pkg/util"
)

// Config controls a generation run.
type Config struct {
	Mode Mode
	// Profiles overrides DefaultProfiles entry by entry.
	Profiles Profiles
}

// Topology is the generated graph: autonomous systems plus the arena of
// routers, switches, hosts and interfaces they own.
type Topology struct {
	arena

	mode     Mode
	profiles Profiles
	ases     map[uint32]*AS
	order    []uint32

	// failed is set once a fatal error leaves the graph partially mutated.
	failed error
}

// Build runs the full generation pipeline over paths and the AS-to-prefix
// mapping: skeleton, pool allocation, neighbor linking and end-host pool
// assignment. On error nothing is returned; the run must start over.
func Build(paths [][]uint32, prefixes map[uint32][]string, cfg Config) (*Topology, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = ModeOneRouter
	}
	if err := mode.check(); err != nil {
		return nil, err
	}

	t := &Topology{
		mode:     mode,
		profiles: DefaultProfiles().Merge(cfg.Profiles),
		ases:     make(map[uint32]*AS),
	}

	if err := t.buildSkeleton(paths, prefixes); err != nil {
		return nil, fmt.Errorf("building AS graph: %w", err)
	}

	log := util.WithPass("allocate")
	for _, asn := range t.order {
		if err := t.ases[asn].AllocatePrefixPools(); err != nil {
			return nil, fmt.Errorf("allocating pools: %w", err)
		}
	}
	log.Infof("allocated address pools for %d ASes", len(t.order))

	log = util.WithPass("link")
	for _, asn := range t.order {
		if err := t.ases[asn].LinkNeighbors(); err != nil {
			return nil, fmt.Errorf("linking AS%d: %w", asn, err)
		}
	}
	log.Infof("created %d router links", t.routerLinkCount())

	log = util.WithPass("assign")
	for _, asn := range t.order {
		if err := t.ases[asn].AssignEndHostPool(); err != nil {
			return nil, fmt.Errorf("assigning end-host pool of AS%d: %w", asn, err)
		}
	}
	log.Info("assigned end-host pools")

	return t, nil
}

// buildSkeleton creates one AS per ASN seen in paths and records every
// consecutive pair as mutual neighbors. No addresses are allocated.
func (t *Topology) buildSkeleton(paths [][]uint32, prefixes map[uint32][]string) error {
	for i, raw := range paths {
		if len(raw) < 2 {
			return fmt.Errorf("%w: path %d has %d hops, need at least 2", util.ErrInvalidInput, i, len(raw))
		}
		path, err := collapsePath(raw)
		if err != nil {
			return fmt.Errorf("path %d: %w", i, err)
		}
		for _, asn := range path {
			if _, ok := t.ases[asn]; ok {
				continue
			}
			as, err := newAS(asn, prefixes[asn], t.mode, &t.arena, t.profiles)
			if err != nil {
				return err
			}
			t.ases[asn] = as
			t.order = append(t.order, asn)
		}
		for j := 0; j+1 < len(path); j++ {
			x, y := t.ases[path[j]], t.ases[path[j+1]]
			x.addNeighbor(y)
			y.addNeighbor(x)
		}
	}
	util.WithPass("skeleton").Infof("built AS graph: %d ASes from %d paths", len(t.order), len(paths))
	return nil
}

// collapsePath removes AS-path prepending (consecutive repeats) and rejects
// paths that revisit an AS, which the peering protocol assumes never occur.
func collapsePath(raw []uint32) ([]uint32, error) {
	out := make([]uint32, 0, len(raw))
	seen := make(map[uint32]bool, len(raw))
	for _, asn := range raw {
		if len(out) > 0 && out[len(out)-1] == asn {
			continue
		}
		if seen[asn] {
			return nil, fmt.Errorf("%w: AS%d appears twice (loop)", util.ErrInvalidInput, asn)
		}
		seen[asn] = true
		out = append(out, asn)
	}
	return out, nil
}

// AddEndHost attaches an end host to the AS asn. A zero ip requests the
// next free address. It may be called any number of times after Build.
// After a fatal error (pool exhaustion or a violated invariant) every later
// call returns that error.
func (t *Topology) AddEndHost(asn uint32, ip netip.Addr, variant HostVariant) (*Node, error) {
	if t.failed != nil {
		return nil, fmt.Errorf("topology unusable after earlier failure: %w", t.failed)
	}
	as, ok := t.ases[asn]
	if !ok {
		return nil, fmt.Errorf("%w: AS%d is not part of the topology", util.ErrNotFound, asn)
	}
	if variant == "" {
		variant = HostPlain
	}
	h, err := as.AddEndHost(ip, variant)
	if err != nil {
		if util.IsFatal(err) {
			t.failed = err
		}
		return nil, fmt.Errorf("adding end host to AS%d: %w", asn, err)
	}
	return h, nil
}

// Mode returns the generation mode.
func (t *Topology) Mode() Mode { return t.mode }

// AS returns the autonomous system asn.
func (t *Topology) AS(asn uint32) (*AS, bool) {
	as, ok := t.ases[asn]
	return as, ok
}

// ASes returns all autonomous systems sorted by ASN.
func (t *Topology) ASes() []*AS {
	out := make([]*AS, 0, len(t.ases))
	for _, as := range t.ases {
		out = append(out, as)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ASN < out[j].ASN })
	return out
}

// Node returns the node with the given handle, or nil.
func (t *Topology) Node(id NodeID) *Node { return t.node(id) }

// Interface returns the interface with the given handle, or nil.
func (t *Topology) Interface(id IfaceID) *Interface { return t.iface(id) }

// Nodes returns every node in creation order.
func (t *Topology) Nodes() []*Node { return append([]*Node(nil), t.nodes...) }

// NodeByName looks a node up by its identifier, e.g. "a100r0".
func (t *Topology) NodeByName(name string) (*Node, bool) {
	for _, n := range t.nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

func (t *Topology) routerLinkCount() int {
	n := 0
	for _, node := range t.nodes {
		n += len(node.PeerInterfaces)
	}
	return n / 2
}
