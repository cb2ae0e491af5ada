package addr

import (
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseBlock(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"10.0.0.0/24", "10.0.0.0/24", false},
		{"192.0.2.128/25", "192.0.2.128/25", false},
		{"10.0.0.1/24", "", true},
		{"2001:db8::/32", "", true},
		{"10.0.0.0", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		b, err := ParseBlock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBlock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && b.String() != tt.want {
			t.Errorf("ParseBlock(%q) = %s, want %s", tt.in, b, tt.want)
		}
	}
}

func TestBlockSize(t *testing.T) {
	tests := []struct {
		cidr string
		want uint64
	}{
		{"10.0.0.0/24", 256},
		{"10.0.0.0/25", 128},
		{"10.0.0.0/31", 2},
		{"10.0.0.0/32", 1},
		{"0.0.0.0/0", 1 << 32},
	}
	for _, tt := range tests {
		if got := MustParseBlock(tt.cidr).Size(); got != tt.want {
			t.Errorf("Size(%s) = %d, want %d", tt.cidr, got, tt.want)
		}
	}
	if (Block{}).Size() != 0 {
		t.Error("zero block should have size 0")
	}
}

func TestBlockSplit(t *testing.T) {
	parent := MustParseBlock("10.0.0.0/24")
	lo, hi, err := parent.Split()
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if lo.String() != "10.0.0.0/25" || hi.String() != "10.0.0.128/25" {
		t.Fatalf("Split = %s, %s", lo, hi)
	}
	if lo.Prefix().Overlaps(hi.Prefix()) {
		t.Error("halves overlap")
	}
	if lo.Size()+hi.Size() != parent.Size() {
		t.Error("halves do not cover parent")
	}
	if lo.Base() != parent.Base() || hi.Last() != parent.Last() {
		t.Error("halves do not span parent bounds")
	}

	if _, _, err := MustParseBlock("10.0.0.7/32").Split(); err == nil {
		t.Error("expected error splitting a /32")
	}
}

func TestBlockContains(t *testing.T) {
	b := MustParseBlock("10.0.0.128/25")
	if !b.Contains(netip.MustParseAddr("10.0.0.200")) {
		t.Error("expected 10.0.0.200 in block")
	}
	if b.Contains(netip.MustParseAddr("10.0.0.127")) {
		t.Error("10.0.0.127 should be outside block")
	}
}

func TestBlockNth(t *testing.T) {
	b := MustParseBlock("10.0.0.248/29")
	tests := []struct {
		i       uint64
		want    string
		wantErr bool
	}{
		{0, "10.0.0.248", false},
		{2, "10.0.0.250", false},
		{7, "10.0.0.255", false},
		{8, "", true},
	}
	for _, tt := range tests {
		got, err := b.Nth(tt.i)
		if (err != nil) != tt.wantErr {
			t.Errorf("Nth(%d) error = %v, wantErr %v", tt.i, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got.String() != tt.want {
			t.Errorf("Nth(%d) = %s, want %s", tt.i, got, tt.want)
		}
		if !tt.wantErr {
			off, ok := b.Offset(got)
			if !ok || off != tt.i {
				t.Errorf("Offset(%s) = %d, %v; want %d", got, off, ok, tt.i)
			}
		}
	}
}

func TestBlockTextRoundTrip(t *testing.T) {
	var b Block
	if err := b.UnmarshalText([]byte("172.16.0.0/12")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	text, _ := b.MarshalText()
	if string(text) != "172.16.0.0/12" {
		t.Errorf("MarshalText = %s", text)
	}
}

func TestInterfaceIn(t *testing.T) {
	b := MustParseBlock("10.0.0.0/25")
	ifc, err := InterfaceIn(b, 1)
	if err != nil {
		t.Fatalf("InterfaceIn: %v", err)
	}
	if ifc.String() != "10.0.0.1/25" {
		t.Errorf("InterfaceIn = %s, want 10.0.0.1/25", ifc)
	}
	if ifc.Network() != b {
		t.Errorf("Network() = %s, want %s", ifc.Network(), b)
	}

	if (Interface{}).String() != "" {
		t.Error("unassigned interface should render empty")
	}
}

func TestStringsAndJoin(t *testing.T) {
	blocks := []Block{MustParseBlock("10.0.0.0/25"), MustParseBlock("10.0.0.248/29")}
	if diff := cmp.Diff([]string{"10.0.0.0/25", "10.0.0.248/29"}, Strings(blocks)); diff != "" {
		t.Errorf("Strings (-want +got):\n%s", diff)
	}
	if got := Join(blocks, ","); got != "10.0.0.0/25,10.0.0.248/29" {
		t.Errorf("Join = %q", got)
	}
	if got := Join(nil, ","); got != "" {
		t.Errorf("Join(nil) = %q, want empty", got)
	}
}
