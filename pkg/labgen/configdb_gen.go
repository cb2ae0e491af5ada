package labgen

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/newtron-network/astopo/pkg/addr"
	"github.com/newtron-network/astopo/pkg/topology"
)

// Table names of the CONFIG_DB-style dump.
const (
	TableAS        = "AS"
	TableDevice    = "DEVICE"
	TableInterface = "INTERFACE"
)

// Interface roles recorded in the INTERFACE table.
const (
	RoleRouterPeer = "router-peer"
	RoleGateway    = "gateway"
	RoleHost       = "host"
	RoleSwitchPort = "switch-port"
)

// ConfigDB is a table -> key -> field -> value dump, the shape SONiC's
// CONFIG_DB uses. Keys are joined with '|'.
type ConfigDB map[string]map[string]map[string]string

func (db ConfigDB) set(table, key string, fields map[string]string) {
	if db[table] == nil {
		db[table] = make(map[string]map[string]string)
	}
	db[table][key] = fields
}

// Len returns the number of entries across all tables.
func (db ConfigDB) Len() int {
	n := 0
	for _, t := range db {
		n += len(t)
	}
	return n
}

// BuildConfigDB flattens the topology into AS, DEVICE and INTERFACE tables:
//
//   - AS|<asn>: prefixes, pools, neighbors and router name
//   - DEVICE|<node>: kind, asn, image and host variant
//   - INTERFACE|<node>|<ifname>: containerlab port, address, peer endpoint,
//     peer ASN and role
func BuildConfigDB(t *topology.Topology) ConfigDB {
	db := make(ConfigDB)

	for _, as := range t.ASes() {
		neighbors := make([]string, 0, len(as.Neighbors()))
		for _, n := range as.Neighbors() {
			neighbors = append(neighbors, strconv.FormatUint(uint64(n), 10))
		}
		db.set(TableAS, strconv.FormatUint(uint64(as.ASN), 10), map[string]string{
			"prefixes":      addr.Join(as.AdvertisedPrefixes(), ","),
			"router_pool":   addr.Join(as.RouterPool(), ","),
			"end_host_pool": addr.Join(as.EndHostPool(), ","),
			"neighbors":     strings.Join(neighbors, ","),
			"router":        strings.Join(nodeNames(t, as.Routers()), ","),
		})
	}

	for _, n := range t.Nodes() {
		dev := map[string]string{
			"kind":    n.Kind.String(),
			"asn":     strconv.FormatUint(uint64(n.ASN), 10),
			"profile": n.Profile.Kind,
		}
		if n.Profile.Image != "" {
			dev["image"] = n.Profile.Image
		}
		if n.Kind == topology.KindHost {
			dev["variant"] = string(n.Variant)
		}
		db.set(TableDevice, n.Name, dev)

		for _, id := range n.Interfaces {
			ifc := t.Interface(id)
			fields := map[string]string{
				"role":           interfaceRole(n, id),
				"clab_interface": ifc.Port,
			}
			if ifc.Address.IsValid() {
				fields["ip"] = ifc.Address.String()
			}
			if peer := t.Interface(ifc.Peer); peer != nil {
				owner := t.Node(peer.Owner)
				fields["peer"] = owner.Name + "|" + peer.Name
				fields["peer_asn"] = strconv.FormatUint(uint64(owner.ASN), 10)
			}
			db.set(TableInterface, n.Name+"|"+ifc.Name, fields)
		}
	}

	return db
}

func interfaceRole(n *topology.Node, id topology.IfaceID) string {
	switch n.Kind {
	case topology.KindHost:
		return RoleHost
	case topology.KindSwitch:
		return RoleSwitchPort
	}
	for _, sw := range n.SwitchInterfaces {
		if sw == id {
			return RoleGateway
		}
	}
	return RoleRouterPeer
}

// GenerateConfigDB writes config_db.json into outputDir.
func GenerateConfigDB(t *topology.Topology, outputDir string) error {
	return writeJSON(filepath.Join(outputDir, "config_db.json"), BuildConfigDB(t))
}
