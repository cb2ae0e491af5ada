package topology

import (
	"fmt"
	"net/netip"

	"github.com/newtron-network/astopo/pkg/addr"
	"github.com/newtron-network/astopo/pkg/util"
)

// AssignEndHostPool binds every end-host block to the router that will
// serve it. In one-router mode that is the AS's only router.
func (a *AS) AssignEndHostPool() error {
	r, err := a.ensureRouter()
	if err != nil {
		return err
	}
	for _, b := range a.hostPool {
		a.hostPrefixRouter[b] = r.ID
	}
	return nil
}

// AddEndHost attaches a new end host of the given variant to the AS. With
// an invalid (zero) ip the next rotation address is used; otherwise ip must
// be an unissued host address of the end-host pool. The host hangs off a
// switch that bridges the router's segment for the host's block, created on
// first use.
func (a *AS) AddEndHost(ip netip.Addr, variant HostVariant) (*Node, error) {
	if !a.allocated {
		return nil, util.NewInvariantError("add end host", "AS%d pools not allocated", a.ASN)
	}
	profile, ok := a.profiles[string(variant)]
	if !ok {
		return nil, fmt.Errorf("%w: no profile for host variant %q", util.ErrInvalidInput, variant)
	}

	var (
		hostIP addr.Interface
		err    error
	)
	if ip.IsValid() {
		hostIP, err = a.claimAddress(ip)
	} else {
		hostIP, err = a.NextAddress()
	}
	if err != nil {
		return nil, err
	}

	router, err := a.routerFor(hostIP)
	if err != nil {
		return nil, err
	}
	sw, err := a.switchFor(router, hostIP)
	if err != nil {
		return nil, err
	}

	host := a.g.newNode(KindHost, a.ASN, fmt.Sprintf("a%dh%d", a.ASN, len(a.hosts)), profile)
	host.Variant = variant
	_, hi := a.g.connect(sw, host)
	if err := a.g.assign(hi, hostIP); err != nil {
		return nil, util.NewInvariantError("add end host", "%v", err)
	}
	a.hosts = append(a.hosts, host.ID)

	util.WithNode(host.Name).WithFields(map[string]interface{}{
		"asn":     a.ASN,
		"address": hostIP.String(),
		"switch":  sw.Name,
	}).Debug("end host attached")
	return host, nil
}

// routerFor finds the router whose end-host block contains ip.
func (a *AS) routerFor(ip addr.Interface) (*Node, error) {
	for _, b := range a.hostPool {
		if !b.Contains(ip.Addr()) {
			continue
		}
		id, ok := a.hostPrefixRouter[b]
		if !ok {
			return nil, util.NewInvariantError("add end host", "AS%d: block %s not assigned to a router", a.ASN, b)
		}
		return a.g.node(id), nil
	}
	return nil, util.NewInvariantError("add end host", "AS%d: %s outside end-host pool", a.ASN, ip)
}

// switchFor returns the switch bridging router's segment for ip, creating
// the switch and the router's gateway interface when none exists yet.
func (a *AS) switchFor(router *Node, ip addr.Interface) (*Node, error) {
	for _, id := range router.SwitchInterfaces {
		ifc := a.g.iface(id)
		if !ifc.Address.Network().Contains(ip.Addr()) {
			continue
		}
		sw := a.g.peerOwner(ifc)
		if sw == nil || sw.Kind != KindSwitch {
			return nil, util.NewInvariantError("add end host", "peer of %s is not a switch", ifc.Name)
		}
		return sw, nil
	}

	block := ip.Network()
	gw, err := addr.InterfaceIn(block, gatewayIndex)
	if err != nil {
		return nil, util.NewInvariantError("add end host", "gateway of %s: %v", block, err)
	}

	sw := a.g.newNode(KindSwitch, a.ASN, fmt.Sprintf("a%ds%d", a.ASN, len(a.switches)), a.profiles[ProfileSwitch])
	a.switches = append(a.switches, sw.ID)
	ri, _ := a.g.connect(router, sw)
	if err := a.g.assign(ri, gw); err != nil {
		return nil, util.NewInvariantError("add end host", "%v", err)
	}
	router.SwitchInterfaces = append(router.SwitchInterfaces, ri.ID)

	util.WithNode(sw.Name).WithField("gateway", gw.String()).Debug("switch created")
	return sw, nil
}
