package leader

import (
	"github.com/shuliakovsky/peerlist/pkg/peers"
	"github.com/shuliakovsky/peerlist/pkg/registry"
)

// Elect picks the peer with the smallest identity.
func Elect[I peers.ID](r registry.Reader[I]) (peers.Record[I], bool) {
	return Rotate(r, 0)
}

// Rotate walks the membership in canonical identity order, one peer per round,
// so every node that holds the same membership agrees on the leader of a round.
func Rotate[I peers.ID](r registry.Reader[I], round uint64) (peers.Record[I], bool) {
	sorted := r.Sorted()
	if len(sorted) == 0 {
		return peers.Record[I]{}, false
	}
	return sorted[round%uint64(len(sorted))], true
}
