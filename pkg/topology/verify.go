package topology

import (
	"net/netip"

	"go4.org/netipx"

	"github.com/newtron-network/astopo/pkg/addr"
	"github.com/newtron-network/astopo/pkg/util"
)

// Verify checks the allocation invariants of the whole graph:
//
//   - each AS's router and end-host pools are disjoint and together cover
//     exactly its declared prefixes
//   - no two interfaces carry the same address
//   - every router link is a /31 whose ends are each other's neighbor
//   - at most one router link exists per AS pair, and only between neighbors
func (t *Topology) Verify() error {
	var vb util.ValidationBuilder

	for _, as := range t.ASes() {
		if !as.allocated {
			vb.AddErrorf("AS%d: pools not allocated", as.ASN)
			continue
		}
		declared, err := blockSet(as.Prefixes)
		if err != nil {
			vb.AddErrorf("AS%d: %v", as.ASN, err)
			continue
		}
		routerSet, err := blockSet(as.routerPool)
		if err != nil {
			vb.AddErrorf("AS%d: %v", as.ASN, err)
			continue
		}
		hostSet, err := blockSet(as.hostPool)
		if err != nil {
			vb.AddErrorf("AS%d: %v", as.ASN, err)
			continue
		}
		if routerSet.Overlaps(hostSet) {
			vb.AddErrorf("AS%d: router pool overlaps end-host pool", as.ASN)
		}
		var union netipx.IPSetBuilder
		union.AddSet(routerSet)
		union.AddSet(hostSet)
		all, err := union.IPSet()
		if err != nil {
			vb.AddErrorf("AS%d: %v", as.ASN, err)
		} else if !all.Equal(declared) {
			vb.AddErrorf("AS%d: pools do not partition the declared prefixes", as.ASN)
		}
	}

	seen := make(map[netip.Addr]string)
	for _, ifc := range t.ifaces {
		if !ifc.Address.IsValid() {
			continue
		}
		if other, dup := seen[ifc.Address.Addr()]; dup {
			vb.AddErrorf("address %s on both %s and %s", ifc.Address.Addr(), other, ifc.Name)
			continue
		}
		seen[ifc.Address.Addr()] = ifc.Name
	}

	type pair struct{ lo, hi uint32 }
	links := make(map[pair]int)
	for _, n := range t.nodes {
		if n.Kind != KindRouter {
			continue
		}
		for _, rl := range t.RouterLinks(n.ID) {
			if !pointToPoint(rl.Local, rl.Peer) {
				vb.AddErrorf("%s: %s and %s are not a point-to-point pair", rl.Interface, rl.Local, rl.Peer)
			}
			if as, ok := t.ases[n.ASN]; !ok || !as.HasNeighbor(rl.PeerASN) {
				vb.AddErrorf("%s: AS%d linked to non-neighbor AS%d", rl.Interface, n.ASN, rl.PeerASN)
			}
			p := pair{n.ASN, rl.PeerASN}
			if p.lo > p.hi {
				p.lo, p.hi = p.hi, p.lo
			}
			links[p]++
		}
	}
	for p, count := range links {
		// Each link is counted once from each end.
		if count != 2 {
			vb.AddErrorf("AS%d-AS%d: %d router links, want 1", p.lo, p.hi, count/2)
		}
	}

	return vb.Build()
}

// pointToPoint reports whether local and peer are the two ends of one /31.
func pointToPoint(local, peer addr.Interface) bool {
	if !local.IsValid() || !peer.IsValid() || local.Addr() == peer.Addr() {
		return false
	}
	n := local.Network()
	return n.Bits() == 31 && peer.Bits() == 31 && n.Contains(peer.Addr())
}

func blockSet(blocks []addr.Block) (*netipx.IPSet, error) {
	var b netipx.IPSetBuilder
	for _, blk := range blocks {
		b.AddPrefix(blk.Prefix())
	}
	return b.IPSet()
}
