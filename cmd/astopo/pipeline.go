package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/newtron-network/astopo/pkg/spec"
	"github.com/newtron-network/astopo/pkg/topology"
	"github.com/newtron-network/astopo/pkg/util"
)

// parseHostFlag parses "<asn>[:<variant>][@<address>][*<count>]".
func parseHostFlag(s string) (spec.HostSpec, error) {
	var h spec.HostSpec
	rest := strings.TrimSpace(s)

	if i := strings.LastIndex(rest, "*"); i >= 0 {
		n, err := strconv.Atoi(rest[i+1:])
		if err != nil || n < 1 {
			return h, fmt.Errorf("--host %q: count must be a positive integer", s)
		}
		h.Count = n
		rest = rest[:i]
	}
	if i := strings.Index(rest, "@"); i >= 0 {
		h.Address = rest[i+1:]
		rest = rest[:i]
		if h.Address == "" {
			return h, fmt.Errorf("--host %q: empty address", s)
		}
		if h.Count > 1 {
			return h, fmt.Errorf("--host %q: count cannot be combined with an address", s)
		}
	}
	if i := strings.Index(rest, ":"); i >= 0 {
		h.Variant = rest[i+1:]
		rest = rest[:i]
		if _, err := topology.ParseHostVariant(h.Variant); err != nil {
			return h, fmt.Errorf("--host %q: %w", s, err)
		}
	}

	asn, err := util.ParseASN(rest)
	if err != nil {
		return h, fmt.Errorf("--host %q: %w", s, err)
	}
	h.ASN = asn
	return h, nil
}

// loadInput loads and validates the input directory, folding --host flags
// into the configured initial hosts.
func loadInput() (*spec.Input, error) {
	dir, err := requireInputDir()
	if err != nil {
		return nil, err
	}
	l := spec.NewLoader(dir)
	if err := l.Load(); err != nil {
		return nil, err
	}
	in := l.Input()
	if in.Config.Name == "" {
		in.Config.Name = filepath.Base(filepath.Clean(dir))
	}

	for _, f := range hostFlags {
		h, err := parseHostFlag(f)
		if err != nil {
			return nil, err
		}
		in.Config.Hosts = append(in.Config.Hosts, h)
	}
	return in, nil
}

// buildTopology runs the full pipeline: load, build, seed hosts, verify.
func buildTopology() (*spec.Input, *topology.Topology, error) {
	in, err := loadInput()
	if err != nil {
		return nil, nil, err
	}
	topo, err := in.Build()
	if err != nil {
		return nil, nil, err
	}
	if err := topo.Verify(); err != nil {
		return nil, nil, err
	}
	return in, topo, nil
}

// summary holds node and link counts of a topology.
type summary struct {
	ASes, Routers, Switches, Hosts, RouterLinks int
}

func summarize(topo *topology.Topology) summary {
	var s summary
	s.ASes = len(topo.ASes())
	for _, n := range topo.Nodes() {
		switch n.Kind {
		case topology.KindRouter:
			s.Routers++
			s.RouterLinks += len(n.PeerInterfaces)
		case topology.KindSwitch:
			s.Switches++
		case topology.KindHost:
			s.Hosts++
		}
	}
	s.RouterLinks /= 2
	return s
}
