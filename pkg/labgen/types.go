// Package labgen exports a generated AS topology as artifacts for the
// emulation layer: a containerlab topology, a topology.json description and
// a CONFIG_DB-style table dump.
package labgen

// ClabTopology represents the containerlab topology YAML structure.
type ClabTopology struct {
	Name     string       `yaml:"name"`
	Topology ClabTopoSpec `yaml:"topology"`
}

// ClabTopoSpec contains the nodes and links sections.
type ClabTopoSpec struct {
	Nodes map[string]*ClabNode `yaml:"nodes"`
	Links []ClabLink           `yaml:"links"`
}

// ClabNode defines a single containerlab node.
type ClabNode struct {
	Kind   string            `yaml:"kind"`
	Image  string            `yaml:"image,omitempty"`
	Cmd    string            `yaml:"cmd,omitempty"`
	CapAdd []string          `yaml:"cap-add,omitempty"`
	Labels map[string]string `yaml:"labels,omitempty"`
	Exec   []string          `yaml:"exec,omitempty"`
}

// ClabLink defines a containerlab link.
type ClabLink struct {
	Endpoints []string `yaml:"endpoints"`
}

// TopologyFile is the topology.json document.
type TopologyFile struct {
	Name    string                  `json:"name"`
	Mode    string                  `json:"mode"`
	ASes    map[string]*ASEntry     `json:"ases"`
	Routers map[string]*RouterEntry `json:"routers"`
	Hosts   map[string]*HostEntry   `json:"hosts,omitempty"`
}

// ASEntry describes one autonomous system and its address plan.
type ASEntry struct {
	Prefixes    []string `json:"prefixes"`
	RouterPool  []string `json:"router_pool"`
	EndHostPool []string `json:"end_host_pool"`
	Neighbors   []uint32 `json:"neighbors"`
	Routers     []string `json:"routers"`
	Switches    []string `json:"switches,omitempty"`
	Hosts       []string `json:"hosts,omitempty"`
}

// RouterEntry lists a router's interfaces. Prefixes are the routes the
// router originates on behalf of its AS.
type RouterEntry struct {
	ASN         uint32          `json:"asn"`
	Image       string          `json:"image,omitempty"`
	RouterLinks []RouterLinkDef `json:"router_links"`
	SwitchLinks []SwitchLinkDef `json:"switch_links,omitempty"`
	Prefixes    []string        `json:"prefixes"`
}

// RouterLinkDef is one router-to-router interface. ClabInterface is the
// device name inside the containerlab node.
type RouterLinkDef struct {
	Interface     string `json:"interface"`
	ClabInterface string `json:"clab_interface"`
	IP            string `json:"ip"`
	PeerIP        string `json:"peer_ip"`
	PeerNode      string `json:"peer_node"`
	PeerASN       uint32 `json:"peer_asn"`
}

// SwitchLinkDef is one end-host-facing gateway interface.
type SwitchLinkDef struct {
	Interface     string `json:"interface"`
	ClabInterface string `json:"clab_interface"`
	Gateway       string `json:"gateway"`
	PrefixLen     int    `json:"prefix_len"`
	Switch        string `json:"switch"`
}

// HostEntry describes an end host.
type HostEntry struct {
	ASN           uint32 `json:"asn"`
	Interface     string `json:"interface"`
	ClabInterface string `json:"clab_interface"`
	Variant       string `json:"variant"`
	IP            string `json:"ip"`
	Gateway       string `json:"gateway"`
	Switch        string `json:"switch"`
}
