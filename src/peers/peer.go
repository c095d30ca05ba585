package peers

import (
	"net"
	"strconv"
)

// State is the connection state of a peer as recorded by the registry.
type State int

const (
	// Banned peers are never contacted.
	Banned State = iota
	// Disconnected peers are known but not currently reachable.
	Disconnected
	// Connected peers are eligible for broadcasts.
	Connected
)

// String ...
func (s State) String() string {
	switch s {
	case Banned:
		return "Banned"
	case Disconnected:
		return "Disconnected"
	case Connected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// Peer is a remote node. Its address, ip:port, is the key under which the
// registry stores it.
type Peer struct {
	IP        string `json:"ip" validate:"required,ip"`
	Port      int    `json:"port" validate:"required,min=1,max=65535"`
	State     State  `json:"state" validate:"min=0,max=2"`
	OS        string `json:"os,omitempty" validate:"max=64"`
	Version   string `json:"version,omitempty" validate:"max=32"`
	Broadhash string `json:"broadhash,omitempty" validate:"omitempty,hexadecimal,len=64"`
	Height    int64  `json:"height,omitempty" validate:"min=0"`
	Nonce     string `json:"nonce,omitempty" validate:"max=32"`
}

// NewPeer ...
func NewPeer(ip string, port int) *Peer {
	return &Peer{
		IP:    ip,
		Port:  port,
		State: Disconnected,
	}
}

// ParsePeer builds a disconnected Peer from an ip:port string.
func ParsePeer(addr string) (*Peer, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}
	return NewPeer(host, port), nil
}

// String returns the ip:port address of the peer.
func (p *Peer) String() string {
	return net.JoinHostPort(p.IP, strconv.Itoa(p.Port))
}

// Copy returns a shallow copy so callers can not mutate registry entries.
func (p *Peer) Copy() *Peer {
	c := *p
	return &c
}
