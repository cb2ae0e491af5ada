package topology

import (
	"github.com/newtron-network/astopo/pkg/addr"
)

// RouterLink describes one router-to-router interface as seen from its
// owning router.
type RouterLink struct {
	Interface string         `json:"interface"`
	Port      string         `json:"port"`
	Local     addr.Interface `json:"local"`
	Peer      addr.Interface `json:"peer"`
	PeerNode  string         `json:"peer_node"`
	PeerASN   uint32         `json:"peer_asn"`
}

// SwitchLink describes a router's end-host-facing interface.
type SwitchLink struct {
	Interface string         `json:"interface"`
	Port      string         `json:"port"`
	Gateway   addr.Interface `json:"gateway"`
	Switch    string         `json:"switch"`
}

// Link is a pair of connected interfaces, reported once per pair.
type Link struct {
	A, Z IfaceID
}

// RouterLinks returns the router-to-router interfaces of router id in
// creation order.
func (t *Topology) RouterLinks(id NodeID) []RouterLink {
	n := t.node(id)
	if n == nil {
		return nil
	}
	out := make([]RouterLink, 0, len(n.PeerInterfaces))
	for _, ifID := range n.PeerInterfaces {
		local := t.iface(ifID)
		peer := t.iface(local.Peer)
		rl := RouterLink{Interface: local.Name, Port: local.Port, Local: local.Address}
		if peer != nil {
			owner := t.node(peer.Owner)
			rl.Peer = peer.Address
			rl.PeerNode = owner.Name
			rl.PeerASN = owner.ASN
		}
		out = append(out, rl)
	}
	return out
}

// SwitchLinks returns the switch-facing interfaces of router id.
func (t *Topology) SwitchLinks(id NodeID) []SwitchLink {
	n := t.node(id)
	if n == nil {
		return nil
	}
	out := make([]SwitchLink, 0, len(n.SwitchInterfaces))
	for _, ifID := range n.SwitchInterfaces {
		local := t.iface(ifID)
		sl := SwitchLink{Interface: local.Name, Port: local.Port, Gateway: local.Address}
		if sw := t.peerOwner(local); sw != nil {
			sl.Switch = sw.Name
		}
		out = append(out, sl)
	}
	return out
}

// Links returns every connected interface pair once, ordered by the lower
// interface handle.
func (t *Topology) Links() []Link {
	var out []Link
	for _, ifc := range t.ifaces {
		if ifc.Peer != NoIface && ifc.ID < ifc.Peer {
			out = append(out, Link{A: ifc.ID, Z: ifc.Peer})
		}
	}
	return out
}

// AdvertisedPrefixes returns the prefixes an AS announces, in input order.
func (a *AS) AdvertisedPrefixes() []addr.Block {
	return append([]addr.Block(nil), a.Prefixes...)
}

// HostLink describes an end host's attachment.
type HostLink struct {
	Interface string         `json:"interface"`
	Port      string         `json:"port"`
	Address   addr.Interface `json:"address"`
	Gateway   addr.Interface `json:"gateway"`
	Switch    string         `json:"switch"`
}

// HostLink returns the attachment of host id. The gateway is the router
// interface on the host's switch segment.
func (t *Topology) HostLink(id NodeID) (HostLink, bool) {
	n := t.node(id)
	if n == nil || n.Kind != KindHost || len(n.Interfaces) == 0 {
		return HostLink{}, false
	}
	ifc := t.iface(n.Interfaces[0])
	hl := HostLink{Interface: ifc.Name, Port: ifc.Port, Address: ifc.Address}
	sw := t.peerOwner(ifc)
	if sw == nil {
		return hl, true
	}
	hl.Switch = sw.Name
	for _, swIf := range sw.Interfaces {
		if r := t.peerOwner(t.iface(swIf)); r != nil && r.Kind == KindRouter {
			hl.Gateway = t.iface(t.iface(swIf).Peer).Address
			break
		}
	}
	return hl, true
}
