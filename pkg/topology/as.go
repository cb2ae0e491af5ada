package topology

import (
	"fmt"
	"net/netip"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/newtron-network/astopo/pkg/addr"
	"github.com/newtron-network/astopo/pkg/util"
)

const (
	// firstHostIndex skips a block's base address and its first usable
	// address, which is reserved for the router's gateway interface.
	firstHostIndex = 2
	gatewayIndex   = 1
	// Blocks this small never become the active end-host block.
	minHostBlockSize = 8
	// The router-link cursor starts past the pool's base pair.
	firstRouterLinkIndex = 2
)

// AS is an autonomous system: the allocator of its own address space and a
// node of the AS-level graph. It owns the routers, switches and end hosts
// generated for it.
type AS struct {
	ASN      uint32
	Prefixes []addr.Block
	Mode     Mode

	g        *arena
	profiles Profiles

	neighbors     map[uint32]*AS
	neighborOrder []uint32
	// neighborRouter records every neighbor a link exists (or is being
	// built) with, at most one router per neighbor.
	neighborRouter map[uint32]NodeID

	routers  []NodeID
	switches []NodeID
	hosts    []NodeID

	routerPool   []addr.Block
	routerCursor uint64

	hostPool         []addr.Block
	usedBlocks       mapset.Set[addr.Block]
	issued           mapset.Set[netip.Addr]
	curBlock         addr.Block
	curIndex         uint64
	hostPrefixRouter map[addr.Block]NodeID

	allocated bool
}

func newAS(asn uint32, prefixes []string, mode Mode, g *arena, profiles Profiles) (*AS, error) {
	if len(prefixes) == 0 {
		return nil, fmt.Errorf("%w: AS%d has no prefixes", util.ErrNotFound, asn)
	}
	blocks := make([]addr.Block, 0, len(prefixes))
	for _, p := range prefixes {
		b, err := addr.ParseBlock(p)
		if err != nil {
			return nil, fmt.Errorf("%w: AS%d: %v", util.ErrInvalidInput, asn, err)
		}
		blocks = append(blocks, b)
	}
	return &AS{
		ASN:              asn,
		Prefixes:         blocks,
		Mode:             mode,
		g:                g,
		profiles:         profiles,
		neighbors:        make(map[uint32]*AS),
		neighborRouter:   make(map[uint32]NodeID),
		usedBlocks:       mapset.NewThreadUnsafeSet[addr.Block](),
		issued:           mapset.NewThreadUnsafeSet[netip.Addr](),
		hostPrefixRouter: make(map[addr.Block]NodeID),
		curIndex:         firstHostIndex,
		routerCursor:     firstRouterLinkIndex,
	}, nil
}

// addNeighbor records o as a neighbor of a. Re-adding is a no-op.
func (a *AS) addNeighbor(o *AS) {
	if _, ok := a.neighbors[o.ASN]; ok {
		return
	}
	a.neighbors[o.ASN] = o
	a.neighborOrder = append(a.neighborOrder, o.ASN)
}

// Neighbors returns neighbor ASNs in discovery order.
func (a *AS) Neighbors() []uint32 {
	return append([]uint32(nil), a.neighborOrder...)
}

// HasNeighbor reports whether asn is a neighbor of a.
func (a *AS) HasNeighbor(asn uint32) bool {
	_, ok := a.neighbors[asn]
	return ok
}

// Routers returns the routers owned by the AS.
func (a *AS) Routers() []NodeID { return append([]NodeID(nil), a.routers...) }

// Switches returns the switches owned by the AS.
func (a *AS) Switches() []NodeID { return append([]NodeID(nil), a.switches...) }

// Hosts returns the end hosts owned by the AS.
func (a *AS) Hosts() []NodeID { return append([]NodeID(nil), a.hosts...) }

// RouterPool returns the blocks reserved for router-to-router links.
func (a *AS) RouterPool() []addr.Block { return append([]addr.Block(nil), a.routerPool...) }

// EndHostPool returns the blocks reserved for end hosts, in rotation order.
func (a *AS) EndHostPool() []addr.Block { return append([]addr.Block(nil), a.hostPool...) }

// IssuedCount returns how many end-host addresses have been handed out.
func (a *AS) IssuedCount() int { return a.issued.Cardinality() }

// AllocatePrefixPools splits the AS's prefixes into a router-link pool and
// an end-host pool. It must run exactly once, after every neighbor edge is
// known and before any link or host is created.
func (a *AS) AllocatePrefixPools() error {
	if a.allocated {
		return util.NewInvariantError("allocate prefix pools", "AS%d pools already allocated", a.ASN)
	}
	log := util.WithAS(a.ASN)

	// Upper bound on router links. Counts existing router-peer interfaces
	// and neighbors both, so it may over-allocate.
	var capacity uint64
	for _, id := range a.routers {
		capacity += uint64(len(a.g.node(id).PeerInterfaces))
	}
	capacity += uint64(len(a.neighbors))

	var (
		toSplit addr.Block
		found   bool
	)
	for _, p := range a.Prefixes {
		if p.Size()/2 > capacity {
			toSplit, found = p, true
			break
		}
	}
	if !found {
		return util.NewExhaustionError(a.ASN, "prefix",
			fmt.Sprintf("no prefix holds more than %d router-link pairs", capacity))
	}

	for _, p := range a.Prefixes {
		if p != toSplit {
			a.hostPool = append(a.hostPool, p)
		}
	}

	for toSplit.Size()/4 > capacity {
		lower, upper, err := toSplit.Split()
		if err != nil {
			return util.NewInvariantError("allocate prefix pools", "AS%d: %v", a.ASN, err)
		}
		a.hostPool = append(a.hostPool, lower)
		toSplit = upper
	}
	a.routerPool = append(a.routerPool, toSplit)
	a.allocated = true

	log.WithFields(map[string]interface{}{
		"capacity":    capacity,
		"router_pool": toSplit.String(),
		"host_blocks": len(a.hostPool),
	}).Debug("allocated prefix pools")

	// Prime the rotation. An AS without a usable end-host block can still
	// carry router links; exhaustion surfaces on the first host request.
	if err := a.advanceBlock(); err != nil {
		log.Debugf("no usable end-host block: %v", err)
	}
	return nil
}

// advanceBlock claims the next unused end-host block with more than
// minHostBlockSize addresses. Smaller blocks are retired as they are passed.
func (a *AS) advanceBlock() error {
	for _, b := range a.hostPool {
		if a.usedBlocks.Contains(b) {
			continue
		}
		if b.Size() <= minHostBlockSize {
			a.usedBlocks.Add(b)
			continue
		}
		a.usedBlocks.Add(b)
		a.curBlock = b
		a.curIndex = firstHostIndex
		util.WithAS(a.ASN).Debugf("end-host rotation now on %s", b)
		return nil
	}
	a.curBlock = addr.Block{}
	return util.NewExhaustionError(a.ASN, "end-host", "no unused block larger than 8 addresses")
}

// NextAddress hands out the next unused end-host address. Addresses are
// never reused, and a block is never revisited once the rotation leaves it.
func (a *AS) NextAddress() (addr.Interface, error) {
	if !a.allocated {
		return addr.Interface{}, util.NewInvariantError("next address", "AS%d pools not allocated", a.ASN)
	}
	for {
		if !a.curBlock.IsValid() || a.curIndex+1 >= a.curBlock.Size() {
			if err := a.advanceBlock(); err != nil {
				return addr.Interface{}, err
			}
		}
		ip, err := addr.InterfaceIn(a.curBlock, a.curIndex)
		if err != nil {
			return addr.Interface{}, util.NewInvariantError("next address", "AS%d: %v", a.ASN, err)
		}
		a.curIndex++
		// Caller-supplied addresses may already sit ahead of the cursor.
		if a.issued.Contains(ip.Addr()) {
			continue
		}
		a.issued.Add(ip.Addr())
		return ip, nil
	}
}

// claimAddress validates and records a caller-supplied end-host address.
// Nothing is mutated unless the address is accepted.
func (a *AS) claimAddress(ip netip.Addr) (addr.Interface, error) {
	if a.issued.Contains(ip) {
		return addr.Interface{}, &util.AddressInUseError{ASN: a.ASN, Address: ip.String()}
	}
	for _, b := range a.hostPool {
		off, ok := b.Offset(ip)
		if !ok {
			continue
		}
		if b.Size() <= minHostBlockSize {
			return addr.Interface{}, fmt.Errorf("%w: AS%d: %s lies in %s, too small for end hosts",
				util.ErrInvalidInput, a.ASN, ip, b)
		}
		if off < firstHostIndex || off+1 >= b.Size() {
			return addr.Interface{}, fmt.Errorf("%w: AS%d: %s is reserved in %s",
				util.ErrInvalidInput, a.ASN, ip, b)
		}
		a.issued.Add(ip)
		return addr.NewInterface(ip, b.Bits()), nil
	}
	return addr.Interface{}, fmt.Errorf("%w: AS%d: %s is outside the end-host pool",
		util.ErrInvalidInput, a.ASN, ip)
}

// ensureRouter returns the AS's router, creating it on first use.
func (a *AS) ensureRouter() (*Node, error) {
	if err := a.Mode.check(); err != nil {
		return nil, err
	}
	if len(a.routers) > 0 {
		return a.g.node(a.routers[0]), nil
	}
	r := a.g.newNode(KindRouter, a.ASN, fmt.Sprintf("a%dr%d", a.ASN, len(a.routers)), a.profiles[ProfileRouter])
	a.routers = append(a.routers, r.ID)
	util.WithNode(r.Name).Debug("router created")
	return r, nil
}
