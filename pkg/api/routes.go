package api

import "net/http"

// Register mounts the membership endpoints on mux. Admin endpoints are only
// mounted when admin is set and carries a key.
func Register(mux *http.ServeMux, public *Public, admin *Admin, feed *Feed) {
	mux.HandleFunc("GET /peers", public.ListPeers)
	mux.HandleFunc("GET /peers/{id}", public.GetPeer)
	mux.HandleFunc("GET /peers/{id}/addrs/{pos}", public.GetNetAddr)
	mux.HandleFunc("GET /leader", public.Leader)

	if admin != nil && admin.AdminKey != "" {
		mux.HandleFunc("POST /admin/peers", admin.AddPeer)
		mux.HandleFunc("PUT /admin/peers/{id}/addrs/{pos}", admin.SetNetAddr)
		mux.HandleFunc("POST /admin/load", admin.Load)
	}

	mux.HandleFunc("GET /ws/peers", feed.ServeWS)
}
