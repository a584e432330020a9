package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shuliakovsky/peerlist/pkg/errs"
	"github.com/shuliakovsky/peerlist/pkg/peers"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps registry failures onto HTTP status codes.
func statusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.KindAbsent:
		return http.StatusNotFound
	case errs.KindUnsupported:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), map[string]string{"error": err.Error()})
}

func pathID(w http.ResponseWriter, r *http.Request) (peers.PubKeyHex, bool) {
	id, err := peers.ParsePubKeyHex(r.PathValue("id"))
	if err != nil {
		http.Error(w, "bad peer id", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func pathPos(w http.ResponseWriter, r *http.Request) (int, bool) {
	pos, err := strconv.Atoi(r.PathValue("pos"))
	if err != nil || pos < 0 {
		http.Error(w, "bad position", http.StatusBadRequest)
		return 0, false
	}
	return pos, true
}
