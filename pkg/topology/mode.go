package topology

import (
	"fmt"
	"strings"

	"github.com/newtron-network/astopo/pkg/util"
)

// Mode selects how the router-level topology inside each AS is generated.
type Mode string

const (
	// ModeOneRouter gives every AS exactly one router that terminates all of
	// its external links and all of its end-host segments.
	ModeOneRouter Mode = "one-router"
	// ModePartialInfo and ModeCustom are accepted by the parser but not
	// implemented.
	ModePartialInfo Mode = "partial-info"
	ModeCustom      Mode = "custom"
)

// ParseMode parses a mode name. An empty string selects ModeOneRouter.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeOneRouter, nil
	case ModeOneRouter, ModePartialInfo, ModeCustom:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown topology mode %q", util.ErrInvalidInput, s)
	}
}

func (m Mode) check() error {
	if m != ModeOneRouter {
		return fmt.Errorf("%w: %s (only %s is available)", util.ErrUnsupportedMode, m, ModeOneRouter)
	}
	return nil
}

// HostVariant names the flavor of an end host. Variants differ only in the
// container profile the emulation layer instantiates for them.
type HostVariant string

const (
	HostPlain        HostVariant = "host"
	HostTMAgent      HostVariant = "tm-agent"
	HostTMDispatcher HostVariant = "tm-dispatcher"
)

// ParseHostVariant parses a host variant name. Empty selects HostPlain.
func ParseHostVariant(s string) (HostVariant, error) {
	switch v := HostVariant(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return HostPlain, nil
	case HostPlain, HostTMAgent, HostTMDispatcher:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown host variant %q", util.ErrInvalidInput, s)
	}
}

// Profile describes how the emulation layer should instantiate a node.
type Profile struct {
	Kind  string   `json:"kind" yaml:"kind"`
	Image string   `json:"image,omitempty" yaml:"image,omitempty"`
	Caps  []string `json:"caps,omitempty" yaml:"caps,omitempty"`
}

// Profile keys used in Profiles besides the host variants.
const (
	ProfileRouter = "router"
	ProfileSwitch = "switch"
)

// Profiles maps "router", "switch" and each HostVariant to a profile.
type Profiles map[string]Profile

// DefaultProfiles returns the stock container profiles.
func DefaultProfiles() Profiles {
	return Profiles{
		ProfileRouter:            {Kind: "linux", Image: "ddos-sandbox:quagga-ubuntu", Caps: []string{"ALL"}},
		ProfileSwitch:            {Kind: "ovs-bridge"},
		string(HostPlain):        {Kind: "linux", Image: "ddos-sandbox:endhost-ubuntu", Caps: []string{"NET_ADMIN"}},
		string(HostTMAgent):      {Kind: "linux", Image: "ddos-sandbox:endhost-tmagent-ubuntu", Caps: []string{"NET_ADMIN"}},
		string(HostTMDispatcher): {Kind: "linux", Image: "ddos-sandbox:dispatcher", Caps: []string{"NET_ADMIN"}},
	}
}

// Merge returns a copy of p with every profile in o overriding its entry.
// Empty fields in an override keep the base value.
func (p Profiles) Merge(o Profiles) Profiles {
	out := make(Profiles, len(p)+len(o))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range o {
		base := out[k]
		if v.Kind != "" {
			base.Kind = v.Kind
		}
		if v.Image != "" {
			base.Image = v.Image
		}
		if len(v.Caps) > 0 {
			base.Caps = v.Caps
		}
		out[k] = base
	}
	return out
}
