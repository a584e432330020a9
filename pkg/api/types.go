package api

import (
	"github.com/shuliakovsky/peerlist/pkg/peers"
	"github.com/shuliakovsky/peerlist/pkg/secrets"
)

// PeerView is the outward form of a peer record. Addresses are redacted.
type PeerView struct {
	Position int      `json:"position"`
	ID       string   `json:"PubKeyHex"`
	BaseAddr string   `json:"NetAddr"`
	NetAddrs []string `json:"NetAddrs,omitempty"`
}

type Snapshot struct {
	Network string     `json:"network"`
	Version uint64     `json:"version"`
	Peers   []PeerView `json:"peers"`
}

type AddPeerRequest struct {
	ID       string   `json:"PubKeyHex"`
	BaseAddr string   `json:"NetAddr"`
	NetAddrs []string `json:"NetAddrs,omitempty"`
}

type SetAddrRequest struct {
	Addr string `json:"addr"`
}

type LoadRequest struct {
	// File is resolved inside the configured membership directory.
	File string `json:"file"`
}

func viewOf(pos int, rec peers.Record[peers.PubKeyHex]) PeerView {
	return PeerView{
		Position: pos,
		ID:       rec.ID().String(),
		BaseAddr: secrets.RedactAddr(rec.BaseAddr),
		NetAddrs: secrets.RedactAddrs(rec.NetAddrs),
	}
}
