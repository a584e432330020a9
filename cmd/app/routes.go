package main

import (
	"net/http"
	"path/filepath"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/shuliakovsky/peerlist/pkg/api"
	"github.com/shuliakovsky/peerlist/pkg/docs"
	"github.com/shuliakovsky/peerlist/pkg/metrics"
	"github.com/shuliakovsky/peerlist/pkg/peers"
	"github.com/shuliakovsky/peerlist/pkg/registry"
)

func registerRoutes(reg *registry.Registry[peers.PubKeyHex], cfg config, logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	dir := "."
	if cfg.MembershipFile != "" {
		dir = filepath.Dir(cfg.MembershipFile)
	}
	if cfg.AdminKey == "" {
		logger.Warn("admin_api_disabled", zap.String("reason", "ADMIN_API_KEY is not set"))
	}
	api.Register(mux,
		api.NewPublic(reg, cfg.Network, logger),
		api.NewAdmin(reg, cfg.AdminKey, dir, logger),
		api.NewFeed(reg, cfg.Network, cfg.FeedInterval, logger),
	)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := reg.Verify(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/swagger.json"),
		httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName()),
	))
	mux.HandleFunc("GET /swagger/swagger.json", docs.JSONHandler)

	// Metrics
	metrics.Init()
	mux.Handle("GET /metrics", metrics.Handler())

	return mux
}
