package topology

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/newtron-network/astopo/pkg/addr"
	"github.com/newtron-network/astopo/pkg/util"
)

// newTestAS returns a standalone one-router AS backed by a private arena.
func newTestAS(t *testing.T, asn uint32, prefixes ...string) *AS {
	t.Helper()
	as, err := newAS(asn, prefixes, ModeOneRouter, &arena{}, DefaultProfiles())
	if err != nil {
		t.Fatalf("newAS: %v", err)
	}
	return as
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// =============================================================================
// Pool allocation
// =============================================================================

func TestAllocatePrefixPools_ThreeNeighbors(t *testing.T) {
	as := newTestAS(t, 100, "10.0.0.0/24")
	for i := uint32(1); i <= 3; i++ {
		as.addNeighbor(newTestAS(t, i, "10.1.0.0/24"))
	}

	if err := as.AllocatePrefixPools(); err != nil {
		t.Fatalf("AllocatePrefixPools: %v", err)
	}

	wantRouter := []string{"10.0.0.248/29"}
	if got := addr.Strings(as.RouterPool()); !equalStrings(got, wantRouter) {
		t.Errorf("router pool = %v, want %v", got, wantRouter)
	}
	wantHost := []string{
		"10.0.0.0/25",
		"10.0.0.128/26",
		"10.0.0.192/27",
		"10.0.0.224/28",
		"10.0.0.240/29",
	}
	if got := addr.Strings(as.EndHostPool()); !equalStrings(got, wantHost) {
		t.Errorf("end-host pool = %v, want %v", got, wantHost)
	}
	if as.curBlock.String() != "10.0.0.0/25" {
		t.Errorf("rotation primed on %s, want 10.0.0.0/25", as.curBlock)
	}
}

func TestAllocatePrefixPools_FirstLargeEnoughPrefix(t *testing.T) {
	as := newTestAS(t, 7, "192.0.2.0/30", "198.51.100.0/24", "203.0.113.0/24")
	as.addNeighbor(newTestAS(t, 8, "10.0.0.0/24"))
	as.addNeighbor(newTestAS(t, 9, "10.0.1.0/24"))

	if err := as.AllocatePrefixPools(); err != nil {
		t.Fatalf("AllocatePrefixPools: %v", err)
	}

	// The /30 cannot hold two pairs with room to spare; the first /24 is
	// split, and every other prefix lands in the end-host pool first.
	pool := as.EndHostPool()
	if pool[0].String() != "192.0.2.0/30" || pool[1].String() != "203.0.113.0/24" {
		t.Errorf("unsplit prefixes not first in end-host pool: %v", addr.Strings(pool))
	}
	rp := as.RouterPool()
	if len(rp) != 1 || !addr.MustParseBlock("198.51.100.0/24").Prefix().Overlaps(rp[0].Prefix()) {
		t.Errorf("router pool %v not carved from 198.51.100.0/24", addr.Strings(rp))
	}
}

func TestAllocatePrefixPools_NoLargeEnoughPrefix(t *testing.T) {
	as := newTestAS(t, 5, "10.0.0.0/30")
	as.addNeighbor(newTestAS(t, 6, "10.1.0.0/24"))
	as.addNeighbor(newTestAS(t, 7, "10.2.0.0/24"))

	err := as.AllocatePrefixPools()
	if !errors.Is(err, util.ErrPoolExhausted) {
		t.Fatalf("AllocatePrefixPools error = %v, want ErrPoolExhausted", err)
	}
}

func TestAllocatePrefixPools_Twice(t *testing.T) {
	as := newTestAS(t, 5, "10.0.0.0/24")
	if err := as.AllocatePrefixPools(); err != nil {
		t.Fatalf("AllocatePrefixPools: %v", err)
	}
	if err := as.AllocatePrefixPools(); !errors.Is(err, util.ErrInvariant) {
		t.Fatalf("second AllocatePrefixPools error = %v, want ErrInvariant", err)
	}
}

// =============================================================================
// End-host rotation
// =============================================================================

func TestNextAddress_SkipsBaseAndGateway(t *testing.T) {
	as := newTestAS(t, 1, "10.0.0.0/24")
	as.addNeighbor(newTestAS(t, 2, "10.1.0.0/24"))
	if err := as.AllocatePrefixPools(); err != nil {
		t.Fatal(err)
	}

	want := []string{"10.0.0.2/25", "10.0.0.3/25", "10.0.0.4/25"}
	for i, w := range want {
		got, err := as.NextAddress()
		if err != nil {
			t.Fatalf("NextAddress #%d: %v", i, err)
		}
		if got.String() != w {
			t.Errorf("NextAddress #%d = %s, want %s", i, got, w)
		}
	}
	if as.IssuedCount() != 3 {
		t.Errorf("IssuedCount = %d, want 3", as.IssuedCount())
	}
}

func TestNextAddress_RotatesAndExhausts(t *testing.T) {
	// /27 with one neighbor: end-host pool is .0/28, .16/29, .24/30. Only
	// the /28 is large enough, yielding .2 through .14.
	as := newTestAS(t, 1, "10.0.0.0/27")
	as.addNeighbor(newTestAS(t, 2, "10.1.0.0/24"))
	if err := as.AllocatePrefixPools(); err != nil {
		t.Fatal(err)
	}

	for i := 2; i <= 14; i++ {
		got, err := as.NextAddress()
		if err != nil {
			t.Fatalf("NextAddress for .%d: %v", i, err)
		}
		want := netip.AddrFrom4([4]byte{10, 0, 0, byte(i)})
		if got.Addr() != want {
			t.Fatalf("NextAddress = %s, want %s", got.Addr(), want)
		}
		blk := got.Network()
		off, _ := blk.Offset(got.Addr())
		if off < 2 || off+1 >= blk.Size() {
			t.Fatalf("NextAddress returned reserved offset %d of %s", off, blk)
		}
	}

	if _, err := as.NextAddress(); !errors.Is(err, util.ErrPoolExhausted) {
		t.Fatalf("NextAddress error = %v, want ErrPoolExhausted", err)
	}
	// Exhausted and skipped blocks are all retired.
	for _, b := range as.EndHostPool() {
		if !as.usedBlocks.Contains(b) {
			t.Errorf("block %s not retired", b)
		}
	}
}

func TestNextAddress_NeverRevisitsBlock(t *testing.T) {
	as := newTestAS(t, 1, "10.0.0.0/24", "10.9.0.0/28")
	as.addNeighbor(newTestAS(t, 2, "10.1.0.0/24"))
	if err := as.AllocatePrefixPools(); err != nil {
		t.Fatal(err)
	}

	seen := make(map[netip.Addr]bool)
	var blocks []addr.Block
	for i := 0; i < 40; i++ {
		got, err := as.NextAddress()
		if err != nil {
			t.Fatalf("NextAddress #%d: %v", i, err)
		}
		if seen[got.Addr()] {
			t.Fatalf("address %s issued twice", got.Addr())
		}
		seen[got.Addr()] = true
		if n := len(blocks); n == 0 || blocks[n-1] != got.Network() {
			for _, b := range blocks {
				if b == got.Network() {
					t.Fatalf("rotation returned to %s", b)
				}
			}
			blocks = append(blocks, got.Network())
		}
	}
	want := []string{"10.9.0.0/28", "10.0.0.0/25"}
	if got := addr.Strings(blocks); !equalStrings(got, want) {
		t.Errorf("rotation order = %v, want %v", got, want)
	}
}

func TestClaimAddress(t *testing.T) {
	as := newTestAS(t, 1, "10.0.0.0/24")
	as.addNeighbor(newTestAS(t, 2, "10.1.0.0/24"))
	if err := as.AllocatePrefixPools(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		ip      string
		wantErr error
	}{
		{"10.0.0.5", nil},
		{"10.0.0.5", util.ErrAddressInUse},
		{"10.0.0.1", util.ErrInvalidInput},   // gateway
		{"10.0.0.0", util.ErrInvalidInput},   // base
		{"10.0.0.127", util.ErrInvalidInput}, // last of /25
		{"10.0.0.250", util.ErrInvalidInput}, // router pool
		{"192.0.2.1", util.ErrInvalidInput},  // not ours
	}
	for _, tt := range tests {
		_, err := as.claimAddress(netip.MustParseAddr(tt.ip))
		if tt.wantErr == nil && err != nil {
			t.Errorf("claimAddress(%s): %v", tt.ip, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("claimAddress(%s) error = %v, want %v", tt.ip, err, tt.wantErr)
		}
	}

	// The rotation steps over the claimed address.
	var got []string
	for i := 0; i < 4; i++ {
		ip, err := as.NextAddress()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, ip.Addr().String())
	}
	want := []string{"10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.6"}
	if !equalStrings(got, want) {
		t.Errorf("rotation = %v, want %v", got, want)
	}
}

// =============================================================================
// Peering protocol
// =============================================================================

func TestPeerWith_BothSidesInitiate(t *testing.T) {
	g := &arena{}
	a, _ := newAS(1, []string{"10.1.0.0/24"}, ModeOneRouter, g, DefaultProfiles())
	b, _ := newAS(2, []string{"10.2.0.0/24"}, ModeOneRouter, g, DefaultProfiles())
	a.addNeighbor(b)
	b.addNeighbor(a)
	for _, as := range []*AS{a, b} {
		if err := as.AllocatePrefixPools(); err != nil {
			t.Fatal(err)
		}
	}

	if err := b.PeerWith(a); err != nil {
		t.Fatalf("b.PeerWith(a): %v", err)
	}
	if err := a.PeerWith(b); err != nil {
		t.Fatalf("a.PeerWith(b): %v", err)
	}

	if len(a.routers) != 1 || len(b.routers) != 1 {
		t.Fatalf("routers: a=%d b=%d, want 1 each", len(a.routers), len(b.routers))
	}
	ra, rb := g.node(a.routers[0]), g.node(b.routers[0])
	if len(ra.PeerInterfaces) != 1 || len(rb.PeerInterfaces) != 1 {
		t.Fatalf("peer interfaces: a=%d b=%d, want 1 each", len(ra.PeerInterfaces), len(rb.PeerInterfaces))
	}

	// b initiated, so the link is addressed from b's router pool.
	ia := g.iface(ra.PeerInterfaces[0])
	ib := g.iface(rb.PeerInterfaces[0])
	if ia.Peer != ib.ID || ib.Peer != ia.ID {
		t.Error("interfaces not paired symmetrically")
	}
	if !b.routerPool[0].Contains(ia.Address.Addr()) || !b.routerPool[0].Contains(ib.Address.Addr()) {
		t.Errorf("link %s-%s not from b's router pool %s", ib.Address, ia.Address, b.routerPool[0])
	}
	if a.routerCursor != firstRouterLinkIndex {
		t.Errorf("a consumed router addresses: cursor %d", a.routerCursor)
	}
}

func TestRequestRouterFor_Idempotent(t *testing.T) {
	a := newTestAS(t, 1, "10.1.0.0/24")
	b := newTestAS(t, 2, "10.2.0.0/24")

	r1, linked, err := a.RequestRouterFor(b)
	if err != nil || linked {
		t.Fatalf("first request = %v, linked=%v", err, linked)
	}
	r2, linked, err := a.RequestRouterFor(b)
	if err != nil || !linked {
		t.Fatalf("second request = %v, linked=%v", err, linked)
	}
	if r1 != r2 || len(a.routers) != 1 {
		t.Errorf("request created extra routers: %v %v (%d)", r1, r2, len(a.routers))
	}
}

func TestNextRouterLinkPair_Exhaustion(t *testing.T) {
	// No neighbors: the router pool shrinks to a /31 with no room past the
	// reserved base pair.
	as := newTestAS(t, 1, "10.0.0.0/30")
	if err := as.AllocatePrefixPools(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := as.NextRouterLinkPair(); !errors.Is(err, util.ErrPoolExhausted) {
		t.Fatalf("NextRouterLinkPair error = %v, want ErrPoolExhausted", err)
	}
}

func TestNextRouterLinkPair_WalksPool(t *testing.T) {
	as := newTestAS(t, 1, "10.0.0.0/24")
	as.routerPool = []addr.Block{
		addr.MustParseBlock("10.0.0.0/30"),
		addr.MustParseBlock("10.0.1.0/30"),
	}

	want := [][2]string{
		{"10.0.0.2/31", "10.0.0.3/31"},
		{"10.0.1.0/31", "10.0.1.1/31"},
		{"10.0.1.2/31", "10.0.1.3/31"},
	}
	for i, w := range want {
		x, y, err := as.NextRouterLinkPair()
		if err != nil {
			t.Fatalf("pair #%d: %v", i, err)
		}
		if x.String() != w[0] || y.String() != w[1] {
			t.Errorf("pair #%d = %s %s, want %s %s", i, x, y, w[0], w[1])
		}
	}
	if _, _, err := as.NextRouterLinkPair(); !errors.Is(err, util.ErrPoolExhausted) {
		t.Errorf("expected exhaustion after pool consumed, got %v", err)
	}
}

func TestUnsupportedModeRejectsRouterCreation(t *testing.T) {
	as, err := newAS(1, []string{"10.0.0.0/24"}, ModeCustom, &arena{}, DefaultProfiles())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := as.RequestRouterFor(newTestAS(t, 2, "10.1.0.0/24")); !errors.Is(err, util.ErrUnsupportedMode) {
		t.Fatalf("RequestRouterFor error = %v, want ErrUnsupportedMode", err)
	}
}
