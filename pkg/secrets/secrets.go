package secrets

import (
	"net/url"
	"os"
	"strings"
	"sync"
)

var (
	once          sync.Once
	sensitiveEnvs []string

	envNameSensitivePatterns = []string{
		"API_KEY", "TOKEN", "SECRET", "PASSWORD", "ACCESS_KEY", "PRIVATE_KEY",
	}
)

func initSensitiveEnvs() {
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name, val := parts[0], parts[1]
		up := strings.ToUpper(name)
		for _, pat := range envNameSensitivePatterns {
			if strings.Contains(up, pat) && val != "" {
				sensitiveEnvs = append(sensitiveEnvs, val)
				break
			}
		}
	}
}

// RedactAddr hides URI credentials and any sensitive env value embedded in addr.
func RedactAddr(addr string) string {
	if strings.Contains(addr, "://") {
		if u, err := url.Parse(addr); err == nil && u.User != nil {
			u.User = url.User("redacted")
			addr = u.String()
		}
	}
	return RedactString(addr)
}

// RedactAddrs applies RedactAddr to every element of a copy of addrs.
func RedactAddrs(addrs []string) []string {
	if len(addrs) == 0 {
		return addrs
	}
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = RedactAddr(a)
	}
	return out
}

func RedactString(s string) string {
	once.Do(initSensitiveEnvs)
	for _, val := range sensitiveEnvs {
		if val == "" {
			continue
		}
		s = strings.ReplaceAll(s, val, "[HIDDEN]")
	}
	return s
}
