package membership

import (
	"go.uber.org/zap"

	"github.com/shuliakovsky/peerlist/pkg/peers"
)

// Descriptor is one entry of a persisted membership artifact.
type Descriptor[I peers.ID] struct {
	PubKeyHex I      `json:"PubKeyHex" yaml:"PubKeyHex" cbor:"PubKeyHex"`
	NetAddr   string `json:"NetAddr" yaml:"NetAddr" cbor:"NetAddr"`
}

// Loader reads membership artifacts into peer records. It never mutates a registry.
type Loader[I peers.ID] struct {
	Logger *zap.Logger
	// ExpandEnv substitutes ${VAR} placeholders in text artifacts.
	ExpandEnv bool
}

type format int

const (
	formatJSON format = iota
	formatYAML
	formatCBOR
)
