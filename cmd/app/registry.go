package main

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shuliakovsky/peerlist/pkg/membership"
	"github.com/shuliakovsky/peerlist/pkg/peers"
	"github.com/shuliakovsky/peerlist/pkg/registry"
)

func initRegistry(cfg config, logger *zap.Logger) *registry.Registry[peers.PubKeyHex] {
	reg := registry.New(
		registry.WithName[peers.PubKeyHex](cfg.Network),
		registry.WithLogger[peers.PubKeyHex](logger),
		registry.WithLoader[peers.PubKeyHex](membership.NewLoader[peers.PubKeyHex](logger)),
	)

	if cfg.MembershipFile != "" {
		if err := reg.LoadFromFile(cfg.MembershipFile); err != nil {
			logger.Fatal("membership_load_error", zap.String("file", cfg.MembershipFile), zap.Error(err))
		}
	}

	self := selfID(cfg, logger)
	if _, ok := reg.Lookup(self); ok {
		logger.Info("self_in_membership", zap.String("id", self.String()))
		return reg
	}
	if err := reg.Add(peers.New(self, cfg.SelfAddr)); err != nil {
		logger.Fatal("self_add_error", zap.String("id", self.String()), zap.Error(err))
	}
	logger.Info("Node started",
		zap.String("network", cfg.Network),
		zap.String("id", self.String()),
		zap.String("addr", cfg.SelfAddr),
		zap.Int("peers", reg.Len()),
	)
	return reg
}

func selfID(cfg config, logger *zap.Logger) peers.PubKeyHex {
	if cfg.SelfID == "" {
		return peers.PubKeyHex(strings.ReplaceAll(uuid.NewString(), "-", ""))
	}
	id, err := peers.ParsePubKeyHex(cfg.SelfID)
	if err != nil {
		logger.Fatal("self_id_invalid", zap.String("id", cfg.SelfID), zap.Error(err))
	}
	return id
}
