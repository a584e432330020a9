package registry

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"go.uber.org/zap"

	"github.com/shuliakovsky/peerlist/pkg/errs"
	"github.com/shuliakovsky/peerlist/pkg/membership"
	"github.com/shuliakovsky/peerlist/pkg/metrics"
	"github.com/shuliakovsky/peerlist/pkg/peers"
)

var _ Reader[peers.PubKeyHex] = (*Registry[peers.PubKeyHex])(nil)

func New[I peers.ID](opts ...Option[I]) *Registry[I] {
	r := &Registry[I]{
		index:  map[I]int{},
		name:   "default",
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.loader == nil {
		r.loader = membership.NewLoader[I](r.logger)
	}
	metrics.Peers.WithLabelValues(r.name).Set(0)
	return r
}

func (r *Registry[I]) Name() string { return r.name }

// Add appends rec at the tail. A duplicate identity leaves the registry untouched.
func (r *Registry[I]) Add(rec peers.Record[I]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.admit([]peers.Record[I]{rec})
	r.observe("add", err)
	if err == nil {
		r.logger.Debug("peer_added", zap.String("network", r.name), zap.Stringer("peer", rec.ID()))
	}
	return err
}

// AddAll admits every record or none of them under one write lock.
func (r *Registry[I]) AddAll(recs []peers.Record[I]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.admit(recs)
	r.observe("add_all", err)
	return err
}

// LoadFromFile reads the artifact at path and ingests it atomically: either every
// peer in the file is added or the registry is left as it was.
func (r *Registry[I]) LoadFromFile(path string) error {
	recs, err := r.loader.Load(path)
	if err != nil {
		r.mu.RLock()
		r.observe("load", err)
		r.mu.RUnlock()
		r.logger.Warn("membership_load_error", zap.String("network", r.name), zap.String("file", path), zap.Error(err))
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.admit(recs); err != nil {
		r.observe("load", err)
		r.logger.Warn("membership_rejected", zap.String("network", r.name), zap.String("file", path), zap.Error(err))
		return err
	}
	r.observe("load", nil)
	r.logger.Info("membership_loaded",
		zap.String("network", r.name),
		zap.String("file", path),
		zap.Int("added", len(recs)),
		zap.Int("peers_count", len(r.records)))
	return nil
}

// SaveToFile writes the current membership, in registry order, to path.
func (r *Registry[I]) SaveToFile(path string) error {
	return membership.Save(path, r.Records())
}

// SetNetAddr overwrites the secondary address n of peer id, or appends it when
// n is exactly the current count.
func (r *Registry[I]) SetNetAddr(id I, n int, addr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, err := r.locate(id)
	if err == nil {
		err = r.records[i].SetNetAddr(n, addr)
	}
	if err == nil {
		r.version++
	}
	r.observe("set_net_addr", err)
	return err
}

// UpdateAt runs fn on a copy of the record at position i and commits the copy
// when fn succeeds. Changing the identity is rejected.
//
// fn runs under the write lock and must not call back into r.
func (r *Registry[I]) UpdateAt(i int, fn func(rec *peers.Record[I]) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.records) {
		err := errs.Absent(fmt.Sprintf("position %d", i))
		r.observe("update", err)
		return err
	}
	work := r.records[i].Clone()
	if err := fn(&work); err != nil {
		r.observe("update", err)
		return err
	}
	if work.ID() != r.records[i].ID() {
		err := errs.Unsupported("peer %s: identity is immutable", r.records[i].ID())
		r.observe("update", err)
		return err
	}
	r.records[i] = work
	r.version++
	r.observe("update", nil)
	return nil
}

// UpdateAll visits records in order with mutable access until fn returns false.
// Changes are committed together; an identity change discards all of them.
//
// fn runs under the write lock and must not call back into r, Iter included.
func (r *Registry[I]) UpdateAll(fn func(i int, rec *peers.Record[I]) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	staged := make([]peers.Record[I], 0, len(r.records))
	for i, cur := range r.records {
		work := cur.Clone()
		more := fn(i, &work)
		if work.ID() != cur.ID() {
			err := errs.Unsupported("peer %s: identity is immutable", cur.ID())
			r.observe("update_all", err)
			return err
		}
		staged = append(staged, work)
		if !more {
			break
		}
	}
	copy(r.records, staged)
	if len(staged) > 0 {
		r.version++
	}
	r.observe("update_all", nil)
	return nil
}

func (r *Registry[I]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Version increases on every successful mutation.
func (r *Registry[I]) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

func (r *Registry[I]) At(i int) (peers.Record[I], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.records) {
		return peers.Record[I]{}, false
	}
	return r.records[i].Clone(), true
}

func (r *Registry[I]) Lookup(id I) (peers.Record[I], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, err := r.locate(id)
	if err != nil {
		return peers.Record[I]{}, false
	}
	return r.records[i].Clone(), true
}

// Find returns the position and a copy of the record for id.
func (r *Registry[I]) Find(id I) (int, peers.Record[I], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, err := r.locate(id)
	if err != nil {
		return -1, peers.Record[I]{}, false
	}
	return i, r.records[i].Clone(), true
}

func (r *Registry[I]) Contains(id I) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[id]
	return ok
}

func (r *Registry[I]) BaseAddr(id I) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, err := r.locate(id)
	if err != nil {
		return "", err
	}
	return r.records[i].BaseAddr, nil
}

func (r *Registry[I]) NetAddr(id I, n int) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, err := r.locate(id)
	if err != nil {
		return "", err
	}
	return r.records[i].NetAddr(n)
}

// Records returns a copy of the membership in insertion order.
func (r *Registry[I]) Records() []peers.Record[I] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cloneLocked()
}

// Snapshot returns the membership together with the version it was taken at.
func (r *Registry[I]) Snapshot() (uint64, []peers.Record[I]) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version, r.cloneLocked()
}

func (r *Registry[I]) cloneLocked() []peers.Record[I] {
	out := make([]peers.Record[I], len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Clone()
	}
	return out
}

// Iter yields the membership in insertion order. Each range over the sequence
// works on a fresh snapshot taken under a single read lock.
func (r *Registry[I]) Iter() iter.Seq2[int, peers.Record[I]] {
	return func(yield func(int, peers.Record[I]) bool) {
		for i, rec := range r.Records() {
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Sorted returns a snapshot in canonical identity order.
func (r *Registry[I]) Sorted() []peers.Record[I] {
	out := r.Records()
	slices.SortFunc(out, func(a, b peers.Record[I]) int { return cmp.Compare(a.ID(), b.ID()) })
	return out
}

// Verify checks that the index and the ordered records agree.
func (r *Registry[I]) Verify() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.index) != len(r.records) {
		return errs.Bug("index holds %d peers, records hold %d", len(r.index), len(r.records))
	}
	for i, rec := range r.records {
		if j, ok := r.index[rec.ID()]; !ok || j != i {
			return errs.Bug("peer %s at position %d indexed at %d", rec.ID(), i, j)
		}
	}
	return nil
}

// admit validates the whole batch before appending any of it. Callers hold the write lock.
func (r *Registry[I]) admit(recs []peers.Record[I]) error {
	var zero I
	seen := make(map[I]struct{}, len(recs))
	for i, rec := range recs {
		id := rec.ID()
		if id == zero {
			return errs.Unsupported("peer #%d has an empty id", i)
		}
		if v, ok := any(id).(peers.Validator); ok {
			if err := v.Validate(); err != nil {
				return err
			}
		}
		if _, ok := r.index[id]; ok {
			return errs.Unsupported("peer %s already registered", id)
		}
		if _, ok := seen[id]; ok {
			return errs.Unsupported("peer %s listed twice", id)
		}
		seen[id] = struct{}{}
	}
	if len(recs) == 0 {
		return nil
	}
	for _, rec := range recs {
		r.index[rec.ID()] = len(r.records)
		r.records = append(r.records, rec.Clone())
	}
	r.version++
	return nil
}

// locate resolves id to a position. Callers hold the lock.
func (r *Registry[I]) locate(id I) (int, error) {
	i, ok := r.index[id]
	if !ok {
		return -1, errs.Absent(fmt.Sprintf("peer %s", id))
	}
	if i < 0 || i >= len(r.records) || r.records[i].ID() != id {
		r.logger.Error("registry_index_drift", zap.String("network", r.name), zap.Stringer("peer", id), zap.Int("position", i))
		return -1, errs.Bug("index maps peer %s to position %d of %d", id, i, len(r.records))
	}
	return i, nil
}

// observe records the outcome of a mutation. Callers hold the lock.
func (r *Registry[I]) observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = errs.KindOf(err).String()
	}
	metrics.Mutations.WithLabelValues(r.name, op, result).Inc()
	metrics.Peers.WithLabelValues(r.name).Set(float64(len(r.records)))
}
