package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/shuliakovsky/peerlist/pkg/peers"
	"github.com/shuliakovsky/peerlist/pkg/registry"
)

const testKey = "test-admin-key"

type fixture struct {
	reg *registry.Registry[peers.PubKeyHex]
	srv *httptest.Server
	dir string
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithKey(t, testKey)
}

func newFixtureWithKey(t *testing.T, key string) *fixture {
	t.Helper()
	reg := registry.New(registry.WithName[peers.PubKeyHex]("api-test"))
	dir := t.TempDir()

	mux := http.NewServeMux()
	Register(mux,
		NewPublic(reg, "api-test", nil),
		NewAdmin(reg, key, dir, nil),
		NewFeed(reg, "api-test", 10*time.Millisecond, nil),
	)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &fixture{reg: reg, srv: srv, dir: dir}
}

func (f *fixture) do(t *testing.T, method, path, body string, admin bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if admin {
		req.Header.Set("x-admin-key", testKey)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestListPeers_InsertionOrder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Add(peers.New(peers.PubKeyHex("bb"), "https://user:pw@h2:443")))
	require.NoError(t, f.reg.Add(peers.New(peers.PubKeyHex("aa"), "h1:7000", "h1:7001")))

	resp := f.do(t, http.MethodGet, "/peers", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	require.Equal(t, "api-test", snap.Network)
	require.Len(t, snap.Peers, 2)
	require.Equal(t, "bb", snap.Peers[0].ID)
	require.NotContains(t, snap.Peers[0].BaseAddr, "pw")
	require.Equal(t, 1, snap.Peers[1].Position)
	require.Equal(t, []string{"h1:7001"}, snap.Peers[1].NetAddrs)
}

func TestGetPeer(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Add(peers.New(peers.PubKeyHex("aa"), "h1:7000")))

	resp := f.do(t, http.MethodGet, "/peers/AA", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v PeerView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	require.Equal(t, "aa", v.ID)

	require.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/peers/bb", "", false).StatusCode)
	require.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/peers/xyz", "", false).StatusCode)
}

func TestGetNetAddr(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Add(peers.New(peers.PubKeyHex("aa"), "h1:7000", "h1:7001", "h1:7002")))

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/peers/aa/addrs/1", "", false).StatusCode)
	require.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/peers/aa/addrs/5", "", false).StatusCode)
	require.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/peers/aa/addrs/-1", "", false).StatusCode)
}

func TestAdmin_RequiresKey(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodPost, "/admin/peers", `{"PubKeyHex":"aa","NetAddr":"h:1"}`, false)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, 0, f.reg.Len())
}

func TestAdmin_NotMountedWithoutKey(t *testing.T) {
	f := newFixtureWithKey(t, "")
	for _, path := range []string{"/admin/peers", "/admin/load"} {
		req, err := http.NewRequest(http.MethodPost, f.srv.URL+path, strings.NewReader(`{}`))
		require.NoError(t, err)
		req.Header.Set("x-admin-key", "")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/peers", "", false).StatusCode)
}

func TestAdmin_LoadedKeysMatchPathAndAdd(t *testing.T) {
	f := newFixture(t)
	body := `[{"PubKeyHex":"AA01","NetAddr":"h:1"},{"PubKeyHex":"0xBB02","NetAddr":"h:2"}]`
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "peers.json"), []byte(body), 0644))

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/admin/load", `{"file":"peers.json"}`, true).StatusCode)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/peers/AA01", "", false).StatusCode)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/peers/0xbb02", "", false).StatusCode)

	for _, id := range []string{"aa01", "0xAA01", "bb02"} {
		resp := f.do(t, http.MethodPost, "/admin/peers", `{"PubKeyHex":"`+id+`","NetAddr":"h:9"}`, true)
		require.Equal(t, http.StatusConflict, resp.StatusCode, id)
	}
	require.Equal(t, 2, f.reg.Len())
}

func TestGetPeer_ReportsPosition(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Add(peers.New(peers.PubKeyHex("aa"), "h:1")))
	require.NoError(t, f.reg.Add(peers.New(peers.PubKeyHex("bb"), "h:2")))

	resp := f.do(t, http.MethodGet, "/peers/bb", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v PeerView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	require.Equal(t, 1, v.Position)
	require.Equal(t, "h:2", v.BaseAddr)
}

func TestListPeers_VersionMatchesPeers(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Add(peers.New(peers.PubKeyHex("aa"), "h:1")))
	require.NoError(t, f.reg.Add(peers.New(peers.PubKeyHex("bb"), "h:2")))

	snap := snapshotOf("api-test", f.reg)
	require.Equal(t, uint64(2), snap.Version)
	require.Len(t, snap.Peers, 2)
}

func TestAdmin_AddPeer(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/admin/peers", `{"PubKeyHex":"0xAA","NetAddr":"h:1","NetAddrs":["h:2"]}`, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	addr, err := f.reg.NetAddr("aa", 0)
	require.NoError(t, err)
	require.Equal(t, "h:2", addr)

	resp = f.do(t, http.MethodPost, "/admin/peers", `{"PubKeyHex":"aa","NetAddr":"h:9"}`, true)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/admin/peers", `{"PubKeyHex":"bb","NetAddr":"nowhere"}`, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/admin/peers", `{`, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, 1, f.reg.Len())
}

func TestAdmin_SetNetAddr(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Add(peers.New(peers.PubKeyHex("aa"), "h:1", "h:2", "h:3")))

	resp := f.do(t, http.MethodPut, "/admin/peers/aa/addrs/2", `{"addr":"h:4"}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPut, "/admin/peers/aa/addrs/4", `{"addr":"h:5"}`, true)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodPut, "/admin/peers/bb/addrs/0", `{"addr":"h:5"}`, true)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	p, _ := f.reg.Lookup("aa")
	require.Equal(t, []string{"h:2", "h:3", "h:4"}, p.NetAddrs)
}

func TestAdmin_Load(t *testing.T) {
	f := newFixture(t)
	body := `[{"PubKeyHex":"aa01","NetAddr":"h:1"},{"PubKeyHex":"bb02","NetAddr":"h:2"}]`
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "peers.json"), []byte(body), 0644))

	resp := f.do(t, http.MethodPost, "/admin/load", `{"file":"peers.json"}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 2, f.reg.Len())

	resp = f.do(t, http.MethodPost, "/admin/load", `{"file":"peers.json"}`, true)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, 2, f.reg.Len())

	resp = f.do(t, http.MethodPost, "/admin/load", `{"file":"../etc/passwd"}`, true)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/admin/load", `{"file":"missing.json"}`, true)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestLeader(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/leader", "", false).StatusCode)

	require.NoError(t, f.reg.Add(peers.New(peers.PubKeyHex("cc"), "h:3")))
	require.NoError(t, f.reg.Add(peers.New(peers.PubKeyHex("aa"), "h:1")))

	resp := f.do(t, http.MethodGet, "/leader?round=1", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Leader string `json:"leader"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "cc", out.Leader)

	require.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/leader?round=x", "", false).StatusCode)
}

func TestFeed_StreamsChanges(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Add(peers.New(peers.PubKeyHex("aa"), "h:1")))

	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws/peers"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var snap Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	require.Len(t, snap.Peers, 1)

	require.NoError(t, f.reg.Add(peers.New(peers.PubKeyHex("bb"), "h:2")))
	require.NoError(t, conn.ReadJSON(&snap))
	require.Len(t, snap.Peers, 2)
	require.Equal(t, "bb", snap.Peers[1].ID)
}
