package registry

import (
	"iter"
	"sync"

	"go.uber.org/zap"

	"github.com/shuliakovsky/peerlist/pkg/peers"
)

// Registry is the authoritative membership of one network. Records keep the
// position they were added at; the index maps each identity to that position.
type Registry[I peers.ID] struct {
	mu      sync.RWMutex
	records []peers.Record[I]
	index   map[I]int
	version uint64

	name   string
	logger *zap.Logger
	loader Loader[I]
}

// Loader produces records from a membership artifact.
type Loader[I peers.ID] interface {
	Load(path string) ([]peers.Record[I], error)
}

// Reader is the read-only view handed to the network and consensus layers.
type Reader[I peers.ID] interface {
	Len() int
	At(i int) (peers.Record[I], bool)
	Lookup(id I) (peers.Record[I], bool)
	Find(id I) (int, peers.Record[I], bool)
	BaseAddr(id I) (string, error)
	NetAddr(id I, n int) (string, error)
	Iter() iter.Seq2[int, peers.Record[I]]
	Sorted() []peers.Record[I]
	Version() uint64
	Snapshot() (uint64, []peers.Record[I])
}

type Option[I peers.ID] func(*Registry[I])

// WithName sets the network name used in logs and metric labels.
func WithName[I peers.ID](name string) Option[I] {
	return func(r *Registry[I]) { r.name = name }
}

func WithLogger[I peers.ID](logger *zap.Logger) Option[I] {
	return func(r *Registry[I]) { r.logger = logger }
}

func WithLoader[I peers.ID](l Loader[I]) Option[I] {
	return func(r *Registry[I]) { r.loader = l }
}
