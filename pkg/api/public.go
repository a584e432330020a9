package api

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/shuliakovsky/peerlist/pkg/leader"
	"github.com/shuliakovsky/peerlist/pkg/peers"
	"github.com/shuliakovsky/peerlist/pkg/registry"
	"github.com/shuliakovsky/peerlist/pkg/secrets"
)

type Public struct {
	Reg     registry.Reader[peers.PubKeyHex]
	Network string
	Logger  *zap.Logger
}

func NewPublic(reg registry.Reader[peers.PubKeyHex], network string, logger *zap.Logger) *Public {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Public{Reg: reg, Network: network, Logger: logger}
}

// GET /peers
func (p *Public) ListPeers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, snapshotOf(p.Network, p.Reg))
}

// GET /peers/{id}
func (p *Public) GetPeer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	i, rec, ok := p.Reg.Find(id)
	if !ok {
		http.Error(w, "peer not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(i, rec))
}

// GET /peers/{id}/addrs/{pos}
func (p *Public) GetNetAddr(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	pos, ok := pathPos(w, r)
	if !ok {
		return
	}
	addr, err := p.Reg.NetAddr(id, pos)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"position": pos, "addr": secrets.RedactAddr(addr)})
}

// GET /leader?round=N
func (p *Public) Leader(w http.ResponseWriter, r *http.Request) {
	var round uint64
	if s := r.URL.Query().Get("round"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			http.Error(w, "bad round", http.StatusBadRequest)
			return
		}
		round = v
	}
	rec, ok := leader.Rotate(p.Reg, round)
	if !ok {
		http.Error(w, "no peers", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"round":  round,
		"leader": rec.ID().String(),
		"addr":   secrets.RedactAddr(rec.BaseAddr),
	})
}

func snapshotOf(network string, reg registry.Reader[peers.PubKeyHex]) Snapshot {
	version, recs := reg.Snapshot()
	snap := Snapshot{Network: network, Version: version, Peers: make([]PeerView, 0, len(recs))}
	for i, rec := range recs {
		snap.Peers = append(snap.Peers, viewOf(i, rec))
	}
	return snap
}
