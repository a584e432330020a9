package peers

import (
	"encoding/hex"
	"net"
	"net/url"
	"strings"

	"github.com/shuliakovsky/peerlist/pkg/errs"
)

// ParsePubKeyHex normalizes s (trimmed, lower-case, optional 0x prefix dropped)
// and validates it.
func ParsePubKeyHex(s string) (PubKeyHex, error) {
	id := PubKeyHex(s).Canonical()
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

func (p PubKeyHex) String() string { return string(p) }

// Canonical is p trimmed, lower-cased and without a 0x prefix.
func (p PubKeyHex) Canonical() PubKeyHex {
	s := strings.ToLower(strings.TrimSpace(string(p)))
	return PubKeyHex(strings.TrimPrefix(s, "0x"))
}

// Validate accepts only the canonical spelling, so "AA01" and "0xaa01" cannot
// sit next to "aa01" as distinct peers.
func (p PubKeyHex) Validate() error {
	if p == "" {
		return errs.Unsupported("empty peer id")
	}
	if c := p.Canonical(); c != p {
		return errs.Unsupported("peer id %q is not canonical, use %q", string(p), string(c))
	}
	if len(p)%2 != 0 {
		return errs.Unsupported("peer id %q has odd length", string(p))
	}
	if _, err := hex.DecodeString(string(p)); err != nil {
		return errs.Unsupported("peer id %q is not hex", string(p))
	}
	return nil
}

func (p PubKeyHex) Bytes() ([]byte, error) {
	b, err := hex.DecodeString(string(p))
	if err != nil {
		return nil, errs.Unsupported("peer id %q is not hex", string(p))
	}
	return b, nil
}

// ValidateAddr accepts scheme://host[:port] URIs and bare host:port pairs.
func ValidateAddr(addr string) error {
	if addr == "" {
		return errs.Unsupported("empty address")
	}
	if strings.Contains(addr, "://") {
		u, err := url.Parse(addr)
		if err != nil {
			return errs.Unsupported("address %q: %v", addr, err)
		}
		if u.Host == "" {
			return errs.Unsupported("address %q has no host", addr)
		}
		return nil
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return errs.Unsupported("address %q: %v", addr, err)
	}
	if host == "" || port == "" {
		return errs.Unsupported("address %q needs host and port", addr)
	}
	return nil
}
