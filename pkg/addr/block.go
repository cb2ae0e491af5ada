// Package addr is the address space model used by the topology generator:
// immutable IPv4 blocks that can be split, indexed and tested for
// membership, and interface addresses that bind one host inside a block.
//
// All values are comparable and safe for concurrent use.
package addr

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/apparentlymart/go-cidr/cidr"
	"go4.org/netipx"
)

const width = 32

// Block is a contiguous IPv4 range identified by a masked base address and a
// prefix length.
type Block struct {
	p netip.Prefix
}

// ParseBlock parses an IPv4 CIDR string. Host bits must be zero.
func ParseBlock(s string) (Block, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return Block{}, fmt.Errorf("invalid prefix %q: %w", s, err)
	}
	if !p.Addr().Is4() {
		return Block{}, fmt.Errorf("invalid prefix %q: only IPv4 is supported", s)
	}
	if p.Masked() != p {
		return Block{}, fmt.Errorf("invalid prefix %q: host bits set (did you mean %s?)", s, p.Masked())
	}
	return Block{p: p}, nil
}

// MustParseBlock is like ParseBlock but panics on error. Intended for tests
// and constants.
func MustParseBlock(s string) Block {
	b, err := ParseBlock(s)
	if err != nil {
		panic(err)
	}
	return b
}

// BlockOf returns the block of p with host bits cleared.
func BlockOf(p netip.Prefix) Block {
	return Block{p: p.Masked()}
}

// IsValid reports whether b was initialized.
func (b Block) IsValid() bool { return b.p.IsValid() }

// Prefix returns the underlying prefix.
func (b Block) Prefix() netip.Prefix { return b.p }

// Bits returns the prefix length.
func (b Block) Bits() int { return b.p.Bits() }

// Base returns the first address of the block.
func (b Block) Base() netip.Addr { return b.p.Addr() }

// Last returns the final address of the block.
func (b Block) Last() netip.Addr { return netipx.PrefixLastIP(b.p) }

// IPNet returns the block as a *net.IPNet.
func (b Block) IPNet() *net.IPNet { return netipx.PrefixIPNet(b.p) }

// Size returns the number of addresses in the block, 2^(32-bits).
func (b Block) Size() uint64 {
	if !b.IsValid() {
		return 0
	}
	return cidr.AddressCount(b.IPNet())
}

// Split halves the block by extending its prefix length by one bit. The two
// halves are disjoint and together cover b exactly. Blocks with a single
// address cannot be split.
func (b Block) Split() (lower, upper Block, err error) {
	if !b.IsValid() || b.Bits() >= width {
		return Block{}, Block{}, fmt.Errorf("cannot split %s", b)
	}
	lo, err := cidr.Subnet(b.IPNet(), 1, 0)
	if err != nil {
		return Block{}, Block{}, fmt.Errorf("split %s: %w", b, err)
	}
	hi, err := cidr.Subnet(b.IPNet(), 1, 1)
	if err != nil {
		return Block{}, Block{}, fmt.Errorf("split %s: %w", b, err)
	}
	return fromIPNet(lo), fromIPNet(hi), nil
}

// Contains reports whether a lies within the block.
func (b Block) Contains(a netip.Addr) bool { return b.p.Contains(a) }

// Nth returns the i-th address of the block, counting the base as 0.
func (b Block) Nth(i uint64) (netip.Addr, error) {
	if i >= b.Size() {
		return netip.Addr{}, fmt.Errorf("index %d out of range for %s (%d addresses)", i, b, b.Size())
	}
	ip, err := cidr.Host(b.IPNet(), int(i))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("address %d of %s: %w", i, b, err)
	}
	a, ok := netipx.FromStdIP(ip)
	if !ok {
		return netip.Addr{}, fmt.Errorf("address %d of %s: unrepresentable %v", i, b, ip)
	}
	return a, nil
}

// Offset returns the index of a within the block, the inverse of Nth.
func (b Block) Offset(a netip.Addr) (uint64, bool) {
	if !b.Contains(a) {
		return 0, false
	}
	base := b.Base().As4()
	x := a.As4()
	return uint64(be32(x) - be32(base)), true
}

// String returns the canonical CIDR form, e.g. "10.0.0.0/25".
func (b Block) String() string {
	if !b.IsValid() {
		return "invalid"
	}
	return b.p.String()
}

// MarshalText implements encoding.TextMarshaler.
func (b Block) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Block) UnmarshalText(text []byte) error {
	v, err := ParseBlock(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Strings renders each block in canonical CIDR form, preserving order.
func Strings(blocks []Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.String()
	}
	return out
}

// Join renders blocks as a sep-separated CIDR list.
func Join(blocks []Block, sep string) string {
	return strings.Join(Strings(blocks), sep)
}

func fromIPNet(n *net.IPNet) Block {
	p, _ := netipx.FromStdIPNet(n)
	return Block{p: p.Masked()}
}

func be32(b [4]byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
