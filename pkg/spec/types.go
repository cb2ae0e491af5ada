// Package spec loads and validates the generator's input files: the AS-path
// list, the AS-to-prefix map and the optional generation config.
package spec

import (
	"github.com/newtron-network/astopo/pkg/topology"
)

// Default file names inside an input directory.
const (
	DefaultASPathsFile    = "as_path_list.json"
	DefaultASPrefixesFile = "as_to_prefix.json"
	ConfigFile            = "astopo.yaml"
)

// GenConfig is the optional generation config (astopo.yaml).
type GenConfig struct {
	// Name is the lab name used for exported artifacts.
	Name string `yaml:"name,omitempty"`
	Mode string `yaml:"mode,omitempty"`

	// Data files, relative to the input directory.
	ASPaths    string `yaml:"as_paths,omitempty"`
	ASPrefixes string `yaml:"as_prefixes,omitempty"`

	// PathLimit keeps only the first N paths. Zero means all.
	PathLimit int `yaml:"path_limit,omitempty"`

	Profiles topology.Profiles `yaml:"profiles,omitempty"`
	Hosts    []HostSpec        `yaml:"hosts,omitempty"`
}

// HostSpec requests end hosts to attach right after the graph is built.
type HostSpec struct {
	ASN     uint32 `yaml:"asn"`
	Address string `yaml:"address,omitempty"` // empty: next free address
	Variant string `yaml:"variant,omitempty"`
	Count   int    `yaml:"count,omitempty"` // ignored when Address is set
}

// Input is everything a generation run consumes.
type Input struct {
	Config   GenConfig
	Paths    [][]uint32
	Prefixes map[uint32][]string
}
