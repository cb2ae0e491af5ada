package spec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/astopo/pkg/addr"
	"github.com/newtron-network/astopo/pkg/topology"
	"github.com/newtron-network/astopo/pkg/util"
)

// Loader reads generator input from a directory.
type Loader struct {
	dir   string
	input *Input
}

// NewLoader creates a loader for the input directory dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Dir returns the input directory.
func (l *Loader) Dir() string { return l.dir }

// Load reads the config (if present) and both data files, then validates
// them against each other.
func (l *Loader) Load() error {
	cfg, err := l.loadConfig()
	if err != nil {
		return fmt.Errorf("loading %s: %w", ConfigFile, err)
	}
	if cfg.ASPaths == "" {
		cfg.ASPaths = DefaultASPathsFile
	}
	if cfg.ASPrefixes == "" {
		cfg.ASPrefixes = DefaultASPrefixesFile
	}

	paths, err := LoadASPaths(filepath.Join(l.dir, cfg.ASPaths))
	if err != nil {
		return fmt.Errorf("loading AS paths: %w", err)
	}
	if cfg.PathLimit > 0 && cfg.PathLimit < len(paths) {
		paths = paths[:cfg.PathLimit]
	}

	prefixes, err := LoadASPrefixes(filepath.Join(l.dir, cfg.ASPrefixes))
	if err != nil {
		return fmt.Errorf("loading AS prefixes: %w", err)
	}

	in := &Input{Config: *cfg, Paths: paths, Prefixes: prefixes}
	if err := in.Validate(); err != nil {
		return err
	}
	l.input = in
	util.WithField("dir", l.dir).Infof("loaded %d AS paths, %d AS prefix entries", len(paths), len(prefixes))
	return nil
}

// Input returns the loaded input, or nil before Load.
func (l *Loader) Input() *Input { return l.input }

func (l *Loader) loadConfig() (*GenConfig, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, ConfigFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &GenConfig{}, nil // astopo.yaml is optional
		}
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML generation config. Unknown keys are rejected.
func ParseConfig(data []byte) (*GenConfig, error) {
	var cfg GenConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidInput, err)
	}
	return &cfg, nil
}

// LoadASPaths reads a JSON list of AS paths, e.g. [[3356, 1299, 13335]].
func LoadASPaths(path string) ([][]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw [][]int64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", util.ErrInvalidInput, filepath.Base(path), err)
	}
	paths := make([][]uint32, 0, len(raw))
	for i, r := range raw {
		p := make([]uint32, 0, len(r))
		for _, asn := range r {
			if err := util.ValidateASN(asn); err != nil {
				return nil, fmt.Errorf("%w: path %d: %v", util.ErrInvalidInput, i, err)
			}
			p = append(p, uint32(asn))
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// LoadASPrefixes reads a JSON object mapping ASNs (as strings) to lists of
// IPv4 prefixes, e.g. {"13335": ["104.16.0.0/13"]}.
func LoadASPrefixes(path string) (map[uint32][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", util.ErrInvalidInput, filepath.Base(path), err)
	}
	out := make(map[uint32][]string, len(raw))
	for k, v := range raw {
		asn, err := util.ParseASN(k)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", util.ErrInvalidInput, k, err)
		}
		out[asn] = append(out[asn], v...)
	}
	return out, nil
}

// Validate checks the input for problems Build would otherwise hit one at a
// time: short paths, ASes without prefixes, malformed prefixes and bad host
// requests. All problems are reported together.
func (in *Input) Validate() error {
	v := &util.ValidationBuilder{}

	if _, err := topology.ParseMode(in.Config.Mode); err != nil {
		v.AddErrorf("mode: %v", err)
	}
	v.Add(in.Config.PathLimit >= 0, fmt.Sprintf("path_limit must not be negative, got %d", in.Config.PathLimit))

	onPath := make(map[uint32]bool)
	for i, p := range in.Paths {
		if len(p) < 2 {
			v.AddErrorf("path %d has %d hops, need at least 2", i, len(p))
		}
		for _, asn := range p {
			onPath[asn] = true
		}
	}
	for asn := range onPath {
		if len(in.Prefixes[asn]) == 0 {
			v.AddErrorf("AS%d appears on a path but has no prefixes", asn)
		}
	}
	for asn, list := range in.Prefixes {
		if !onPath[asn] {
			continue
		}
		for _, p := range list {
			if _, err := addr.ParseBlock(p); err != nil {
				v.AddErrorf("AS%d: %v", asn, err)
			}
		}
	}

	for i, h := range in.Config.Hosts {
		if !onPath[h.ASN] {
			v.AddErrorf("hosts[%d]: AS%d is not on any path", i, h.ASN)
		}
		if h.Address != "" {
			if _, err := netip.ParseAddr(h.Address); err != nil {
				v.AddErrorf("hosts[%d]: invalid address %q", i, h.Address)
			}
		}
		v.Add(h.Count >= 0, fmt.Sprintf("hosts[%d]: count must not be negative", i))
		if _, err := topology.ParseHostVariant(h.Variant); err != nil {
			v.AddErrorf("hosts[%d]: %v", i, err)
		}
	}

	return v.Build()
}

// TopologyConfig converts the generation config for topology.Build.
func (in *Input) TopologyConfig() (topology.Config, error) {
	mode, err := topology.ParseMode(in.Config.Mode)
	if err != nil {
		return topology.Config{}, err
	}
	return topology.Config{Mode: mode, Profiles: in.Config.Profiles}, nil
}

// Build generates the topology and attaches the configured initial hosts.
func (in *Input) Build() (*topology.Topology, error) {
	cfg, err := in.TopologyConfig()
	if err != nil {
		return nil, err
	}
	topo, err := topology.Build(in.Paths, in.Prefixes, cfg)
	if err != nil {
		return nil, err
	}
	if err := SeedHosts(topo, in.Config.Hosts); err != nil {
		return nil, err
	}
	return topo, nil
}

// SeedHosts attaches the requested hosts in order.
func SeedHosts(topo *topology.Topology, hosts []HostSpec) error {
	for i, h := range hosts {
		variant, err := topology.ParseHostVariant(h.Variant)
		if err != nil {
			return fmt.Errorf("hosts[%d]: %w", i, err)
		}
		if h.Address != "" {
			ip, err := netip.ParseAddr(h.Address)
			if err != nil {
				return fmt.Errorf("hosts[%d]: %w: %v", i, util.ErrInvalidInput, err)
			}
			if _, err := topo.AddEndHost(h.ASN, ip, variant); err != nil {
				return fmt.Errorf("hosts[%d]: %w", i, err)
			}
			continue
		}
		count := h.Count
		if count == 0 {
			count = 1
		}
		for n := 0; n < count; n++ {
			if _, err := topo.AddEndHost(h.ASN, netip.Addr{}, variant); err != nil {
				return fmt.Errorf("hosts[%d]: %w", i, err)
			}
		}
	}
	return nil
}
