package addr

import "net/netip"

// Interface is an address bound inside a block: a host address plus the
// prefix length of the network it belongs to, e.g. 10.0.0.2/25.
type Interface struct {
	p netip.Prefix
}

// InterfaceIn returns the i-th address of b as an interface address carrying
// b's prefix length.
func InterfaceIn(b Block, i uint64) (Interface, error) {
	a, err := b.Nth(i)
	if err != nil {
		return Interface{}, err
	}
	return Interface{p: netip.PrefixFrom(a, b.Bits())}, nil
}

// NewInterface binds a to a network of the given prefix length.
func NewInterface(a netip.Addr, bits int) Interface {
	return Interface{p: netip.PrefixFrom(a, bits)}
}

// IsValid reports whether an address has been assigned.
func (i Interface) IsValid() bool { return i.p.IsValid() }

// Addr returns the host address.
func (i Interface) Addr() netip.Addr { return i.p.Addr() }

// Bits returns the prefix length.
func (i Interface) Bits() int { return i.p.Bits() }

// Network returns the block this address belongs to.
func (i Interface) Network() Block { return BlockOf(i.p) }

// String returns the address in "a.b.c.d/n" form, or "" when unassigned.
func (i Interface) String() string {
	if !i.IsValid() {
		return ""
	}
	return i.p.String()
}

// MarshalText implements encoding.TextMarshaler.
func (i Interface) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}
