package api

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shuliakovsky/peerlist/pkg/peers"
	"github.com/shuliakovsky/peerlist/pkg/registry"
)

const maxBody = 1 << 20

type Admin struct {
	Reg      *registry.Registry[peers.PubKeyHex]
	AdminKey string
	// Dir bounds the artifacts POST /admin/load may read.
	Dir    string
	Logger *zap.Logger
}

func NewAdmin(reg *registry.Registry[peers.PubKeyHex], key, dir string, logger *zap.Logger) *Admin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Admin{Reg: reg, AdminKey: key, Dir: dir, Logger: logger}
}

func (a *Admin) auth(w http.ResponseWriter, r *http.Request) bool {
	key := r.Header.Get("x-admin-key")
	if a.AdminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(a.AdminKey)) != 1 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

// readBody reads and logs the request body, then decodes it into v.
func (a *Admin) readBody(w http.ResponseWriter, r *http.Request, tag string, v any) (time.Time, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return time.Time{}, false
	}
	started := LogRequest(a.Logger, tag, r.Method, r.URL.Path, body)
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(v); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return started, false
	}
	return started, true
}

func (a *Admin) fail(w http.ResponseWriter, tag string, started time.Time, err error) {
	LogResponse(a.Logger, tag, statusOf(err), started, err)
	writeError(w, err)
}

// POST /admin/peers
func (a *Admin) AddPeer(w http.ResponseWriter, r *http.Request) {
	if !a.auth(w, r) {
		return
	}
	var req AddPeerRequest
	started, ok := a.readBody(w, r, "admin_add_peer", &req)
	if !ok {
		return
	}

	id, err := peers.ParsePubKeyHex(req.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, addr := range append([]string{req.BaseAddr}, req.NetAddrs...) {
		if err := peers.ValidateAddr(addr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := a.Reg.Add(peers.New(id, req.BaseAddr, req.NetAddrs...)); err != nil {
		a.fail(w, "admin_add_peer", started, err)
		return
	}
	LogResponse(a.Logger, "admin_add_peer", http.StatusCreated, started, nil)
	writeJSON(w, http.StatusCreated, map[string]any{"status": "added", "peers": a.Reg.Len()})
}

// PUT /admin/peers/{id}/addrs/{pos}
func (a *Admin) SetNetAddr(w http.ResponseWriter, r *http.Request) {
	if !a.auth(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	pos, ok := pathPos(w, r)
	if !ok {
		return
	}
	var req SetAddrRequest
	started, ok := a.readBody(w, r, "admin_set_addr", &req)
	if !ok {
		return
	}
	if err := peers.ValidateAddr(req.Addr); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.Reg.SetNetAddr(id, pos, req.Addr); err != nil {
		a.fail(w, "admin_set_addr", started, err)
		return
	}
	LogResponse(a.Logger, "admin_set_addr", http.StatusOK, started, nil)
	writeJSON(w, http.StatusOK, map[string]any{"status": "updated", "position": pos})
}

// POST /admin/load
func (a *Admin) Load(w http.ResponseWriter, r *http.Request) {
	if !a.auth(w, r) {
		return
	}
	var req LoadRequest
	started, ok := a.readBody(w, r, "admin_load", &req)
	if !ok {
		return
	}

	path, ok := a.resolve(req.File)
	if !ok {
		http.Error(w, "file outside membership directory", http.StatusBadRequest)
		return
	}
	before := a.Reg.Len()
	if err := a.Reg.LoadFromFile(path); err != nil {
		a.fail(w, "admin_load", started, err)
		return
	}
	LogResponse(a.Logger, "admin_load", http.StatusOK, started, nil)
	writeJSON(w, http.StatusOK, map[string]any{"status": "loaded", "added": a.Reg.Len() - before})
}

func (a *Admin) resolve(file string) (string, bool) {
	if a.Dir == "" || file == "" {
		return "", false
	}
	path := filepath.Join(a.Dir, file)
	rel, err := filepath.Rel(a.Dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return path, true
}
