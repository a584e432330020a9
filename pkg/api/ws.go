package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shuliakovsky/peerlist/pkg/metrics"
	"github.com/shuliakovsky/peerlist/pkg/peers"
	"github.com/shuliakovsky/peerlist/pkg/registry"
)

// Feed streams membership snapshots over a websocket: one on connect and one
// each time the registry version moves.
type Feed struct {
	Reg      registry.Reader[peers.PubKeyHex]
	Network  string
	Interval time.Duration
	Logger   *zap.Logger
}

func NewFeed(reg registry.Reader[peers.PubKeyHex], network string, interval time.Duration, logger *zap.Logger) *Feed {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{Reg: reg, Network: network, Interval: interval, Logger: logger}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /ws/peers
func (f *Feed) ServeWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		f.Logger.Warn("ws_upgrade_failed", zap.Error(err))
		metrics.WSError.WithLabelValues(f.Network).Inc()
		return
	}
	defer conn.Close()

	metrics.WSConnected.WithLabelValues(f.Network).Inc()
	f.Logger.Info("ws_feed_connected", zap.String("network", f.Network), zap.String("remote", r.RemoteAddr))

	// the client never sends anything useful; reading only detects the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	t := time.NewTicker(f.Interval)
	defer t.Stop()

	sent := false
	var last uint64
	for {
		if v := f.Reg.Version(); !sent || v != last {
			snap := snapshotOf(f.Network, f.Reg)
			if err := conn.WriteJSON(snap); err != nil {
				f.Logger.Warn("ws_feed_write_error", zap.String("network", f.Network), zap.Error(err))
				metrics.WSError.WithLabelValues(f.Network).Inc()
				return
			}
			sent, last = true, snap.Version
		}
		select {
		case <-closed:
			f.Logger.Debug("ws_feed_closed", zap.String("network", f.Network))
			return
		case <-r.Context().Done():
			return
		case <-t.C:
		}
	}
}
