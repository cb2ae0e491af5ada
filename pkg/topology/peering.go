package topology

import (
	"github.com/newtron-network/astopo/pkg/addr"
	"github.com/newtron-network/astopo/pkg/util"
)

// LinkNeighbors issues a peering request to every neighbor. Pairs already
// linked from either side are skipped, so calling it again is a no-op.
func (a *AS) LinkNeighbors() error {
	for _, asn := range a.neighborOrder {
		if err := a.PeerWith(a.neighbors[asn]); err != nil {
			return err
		}
	}
	return nil
}

// RequestRouterFor is the responder side of the peering protocol: it returns
// the router the requester should link to and records the requester in the
// neighbor map. linked is true when the pair was already recorded, in which
// case the caller must not build another link.
func (a *AS) RequestRouterFor(requester *AS) (router NodeID, linked bool, err error) {
	if r, ok := a.neighborRouter[requester.ASN]; ok {
		return r, true, nil
	}
	r, err := a.ensureRouter()
	if err != nil {
		return 0, false, err
	}
	a.neighborRouter[requester.ASN] = r.ID
	return r.ID, false, nil
}

// PeerWith is the initiator side of the peering protocol. It builds one
// point-to-point link between a's router and the router target hands back,
// addressed from a's router pool. Exactly one link exists per AS pair no
// matter which side initiates or how often.
func (a *AS) PeerWith(target *AS) error {
	if _, ok := a.neighborRouter[target.ASN]; ok {
		return nil
	}
	if err := a.Mode.check(); err != nil {
		return err
	}
	if target == a {
		return util.NewInvariantError("peer", "AS%d cannot peer with itself", a.ASN)
	}

	remoteID, linked, err := target.RequestRouterFor(a)
	if err != nil {
		return err
	}
	if linked {
		// target only records us when we asked, or when it asked us, and
		// either way we would have recorded it too.
		return util.NewInvariantError("peer", "AS%d already linked to AS%d but AS%d has no record",
			target.ASN, a.ASN, a.ASN)
	}

	localIP, remoteIP, err := a.NextRouterLinkPair()
	if err != nil {
		return err
	}
	local, err := a.ensureRouter()
	if err != nil {
		return err
	}
	remote := a.g.node(remoteID)
	a.neighborRouter[target.ASN] = remoteID

	li, ri := a.g.connect(local, remote)
	if err := a.g.assign(li, localIP); err != nil {
		return util.NewInvariantError("peer", "%v", err)
	}
	if err := a.g.assign(ri, remoteIP); err != nil {
		return util.NewInvariantError("peer", "%v", err)
	}
	local.PeerInterfaces = append(local.PeerInterfaces, li.ID)
	remote.PeerInterfaces = append(remote.PeerInterfaces, ri.ID)

	util.WithAS(a.ASN).WithFields(map[string]interface{}{
		"peer_as": target.ASN,
		"local":   localIP.String(),
		"remote":  remoteIP.String(),
	}).Debug("router link created")
	return nil
}

// NextRouterLinkPair returns the next two consecutive router-pool addresses
// as /31 interfaces. The pool is walked cumulatively; the first block that
// covers cursor+2 addresses supplies the pair.
func (a *AS) NextRouterLinkPair() (addr.Interface, addr.Interface, error) {
	var covered uint64
	for _, b := range a.routerPool {
		start := covered
		covered += b.Size()
		if a.routerCursor+2 > covered {
			continue
		}
		off := a.routerCursor - start
		x, err := b.Nth(off)
		if err != nil {
			return addr.Interface{}, addr.Interface{}, util.NewInvariantError("router link pair", "AS%d: %v", a.ASN, err)
		}
		y, err := b.Nth(off + 1)
		if err != nil {
			return addr.Interface{}, addr.Interface{}, util.NewInvariantError("router link pair", "AS%d: %v", a.ASN, err)
		}
		a.routerCursor += 2
		return addr.NewInterface(x, 31), addr.NewInterface(y, 31), nil
	}
	return addr.Interface{}, addr.Interface{}, util.NewExhaustionError(a.ASN, "router-link",
		"cursor past router pool capacity")
}
