package topology

import (
	"fmt"

	"github.com/newtron-network/astopo/pkg/addr"
)

// NodeID is a handle into the node arena of a Topology.
type NodeID int

// IfaceID is a handle into the interface arena of a Topology.
type IfaceID int

// NoIface marks an interface that has not been paired.
const NoIface IfaceID = -1

// Kind tags the node variant.
type Kind int

const (
	KindRouter Kind = iota
	KindSwitch
	KindHost
)

func (k Kind) String() string {
	switch k {
	case KindRouter:
		return "router"
	case KindSwitch:
		return "switch"
	case KindHost:
		return "host"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is a router, switch or end host. All nodes share an ordered interface
// list; routers additionally keep their interfaces partitioned into
// router-peer and switch-facing sets.
type Node struct {
	ID      NodeID
	Name    string
	Kind    Kind
	ASN     uint32
	Variant HostVariant // hosts only
	Profile Profile

	Interfaces []IfaceID

	// Router-only partition views over Interfaces.
	PeerInterfaces   []IfaceID
	SwitchInterfaces []IfaceID
}

// Interface is one end of a link. It is owned by exactly one node and is
// paired with at most one other interface, never re-paired once set.
//
// Name is unique across the topology. Port is the device name inside the
// node's container; eth0 is reserved for management so ports start at eth1.
type Interface struct {
	ID      IfaceID
	Name    string
	Port    string
	Owner   NodeID
	Peer    IfaceID
	Address addr.Interface
}

// arena owns every node and interface of a topology. Relations between them
// are handles, never pointers.
type arena struct {
	nodes  []*Node
	ifaces []*Interface
}

func (a *arena) node(id NodeID) *Node {
	if id < 0 || int(id) >= len(a.nodes) {
		return nil
	}
	return a.nodes[id]
}

func (a *arena) iface(id IfaceID) *Interface {
	if id < 0 || int(id) >= len(a.ifaces) {
		return nil
	}
	return a.ifaces[id]
}

func (a *arena) newNode(kind Kind, asn uint32, name string, profile Profile) *Node {
	n := &Node{
		ID:      NodeID(len(a.nodes)),
		Name:    name,
		Kind:    kind,
		ASN:     asn,
		Profile: profile,
	}
	a.nodes = append(a.nodes, n)
	return n
}

func (a *arena) newIface(owner *Node) *Interface {
	ifc := &Interface{
		ID:    IfaceID(len(a.ifaces)),
		Name:  fmt.Sprintf("%s-eth%d", owner.Name, len(owner.Interfaces)),
		Port:  fmt.Sprintf("eth%d", len(owner.Interfaces)+1),
		Owner: owner.ID,
		Peer:  NoIface,
	}
	a.ifaces = append(a.ifaces, ifc)
	owner.Interfaces = append(owner.Interfaces, ifc.ID)
	return ifc
}

// connect creates a fresh interface on each node and pairs them.
func (a *arena) connect(x, y *Node) (*Interface, *Interface) {
	ix := a.newIface(x)
	iy := a.newIface(y)
	ix.Peer = iy.ID
	iy.Peer = ix.ID
	return ix, iy
}

// assign binds an address to an interface. An interface is addressed once.
func (a *arena) assign(ifc *Interface, ip addr.Interface) error {
	if ifc.Address.IsValid() {
		return fmt.Errorf("interface %s already has address %s", ifc.Name, ifc.Address)
	}
	ifc.Address = ip
	return nil
}

// peerOwner returns the node at the far end of ifc.
func (a *arena) peerOwner(ifc *Interface) *Node {
	peer := a.iface(ifc.Peer)
	if peer == nil {
		return nil
	}
	return a.node(peer.Owner)
}
