package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Peers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "peerlist_peers_total", Help: "Registered peers per network"},
		[]string{"network"},
	)
	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "peerlist_mutations_total", Help: "Registry mutations by operation and result"},
		[]string{"network", "op", "result"},
	)
	WSConnected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "peerlist_ws_connected_total", Help: "Total membership feed connections"},
		[]string{"network"},
	)
	WSError = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "peerlist_ws_errors_total", Help: "Membership feed errors"},
		[]string{"network"},
	)
)

func Init() {
	prometheus.MustRegister(Peers, Mutations)
	prometheus.MustRegister(WSConnected, WSError)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
