package peers

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/shuliakovsky/peerlist/pkg/errs"
)

func New[I ID](id I, baseAddr string, netAddrs ...string) Record[I] {
	return Record[I]{
		id:       id,
		BaseAddr: baseAddr,
		NetAddrs: slices.Clone(netAddrs),
	}
}

func (r Record[I]) ID() I { return r.id }

// NetAddr returns the secondary address at position n.
func (r Record[I]) NetAddr(n int) (string, error) {
	if n < 0 || n >= len(r.NetAddrs) {
		return "", errs.Absent(fmt.Sprintf("net address %d of peer %s", n, r.id))
	}
	return r.NetAddrs[n], nil
}

// SetNetAddr overwrites the secondary address at position n, or appends it when
// n equals the current length. Sparse growth is rejected.
func (r *Record[I]) SetNetAddr(n int, addr string) error {
	switch {
	case n < 0 || n > len(r.NetAddrs):
		return errs.Unsupported("net address position %d out of range for peer %s (have %d)", n, r.id, len(r.NetAddrs))
	case n == len(r.NetAddrs):
		r.NetAddrs = append(r.NetAddrs, addr)
	default:
		r.NetAddrs[n] = addr
	}
	return nil
}

// Clone returns a copy that shares no memory with r.
func (r Record[I]) Clone() Record[I] {
	r.NetAddrs = slices.Clone(r.NetAddrs)
	return r
}

func (r Record[I]) Equal(o Record[I]) bool {
	return r.id == o.id && r.BaseAddr == o.BaseAddr && slices.Equal(r.NetAddrs, o.NetAddrs)
}

func (r Record[I]) String() string {
	if len(r.NetAddrs) == 0 {
		return fmt.Sprintf("%s@%s", r.id, r.BaseAddr)
	}
	return fmt.Sprintf("%s@%s%v", r.id, r.BaseAddr, r.NetAddrs)
}

func (r Record[I]) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON[I]{ID: r.id, BaseAddr: r.BaseAddr, NetAddrs: r.NetAddrs})
}

func (r *Record[I]) UnmarshalJSON(data []byte) error {
	var raw recordJSON[I]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = New(Canonical(raw.ID), raw.BaseAddr, raw.NetAddrs...)
	return nil
}
