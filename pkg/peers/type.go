package peers

import "fmt"

// ID is satisfied by printable integer and string kinds. Floats are left out:
// NaN has no order and never equals itself as a map key. The zero value is the
// empty identity and is never admitted into a registry.
type ID interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~string
	fmt.Stringer
}

// Validator is implemented by identities that have invalid spellings.
type Validator interface {
	Validate() error
}

type canonicalizer[I any] interface {
	Canonical() I
}

// Canonical returns the single spelling of id that a registry stores and
// compares. Identities with only one spelling are returned as is.
func Canonical[I ID](id I) I {
	if c, ok := any(id).(canonicalizer[I]); ok {
		return c.Canonical()
	}
	return id
}

// PubKeyHex is the hex encoded public key used as peer identity on the wire.
type PubKeyHex string

// Record is one peer: its identity plus the addresses it can be reached on.
// The identity is fixed at construction; addresses may change in place.
type Record[I ID] struct {
	id       I
	BaseAddr string   // primary contact address, URI or host:port
	NetAddrs []string // secondary addresses, addressed by position
}

type recordJSON[I ID] struct {
	ID       I        `json:"PubKeyHex"`
	BaseAddr string   `json:"NetAddr"`
	NetAddrs []string `json:"NetAddrs,omitempty"`
}
