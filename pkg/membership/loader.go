package membership

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/shuliakovsky/peerlist/pkg/errs"
	"github.com/shuliakovsky/peerlist/pkg/peers"
)

var (
	placeholder = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)
	leftover    = regexp.MustCompile(`\$\{[^}]*\}`)
)

func NewLoader[I peers.ID](logger *zap.Logger) *Loader[I] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader[I]{Logger: logger, ExpandEnv: true}
}

// Load parses the artifact at path into records, in file order.
func (l *Loader[I]) Load(path string) ([]peers.Record[I], error) {
	logger := l.logger()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.IO(err)
	}

	f := formatOf(path)
	if f != formatCBOR && l.ExpandEnv {
		b = l.expand(path, b)
	}

	var descs []Descriptor[I]
	if err := decode(f, b, &descs); err != nil {
		if isTypeError(err) {
			return nil, errs.Unsupported("%s: %v", filepath.Base(path), err)
		}
		return nil, errs.IO(fmt.Errorf("%s: %w", filepath.Base(path), err))
	}

	out := make([]peers.Record[I], 0, len(descs))
	for i, d := range descs {
		d.PubKeyHex = peers.Canonical(d.PubKeyHex)
		if err := validate(d); err != nil {
			return nil, errs.Unsupported("%s: peer #%d: %v", filepath.Base(path), i, reason(err))
		}
		out = append(out, peers.New(d.PubKeyHex, d.NetAddr))
	}

	logger.Debug("membership_loaded", zap.String("file", path), zap.Int("peers", len(out)))
	return out, nil
}

func (l *Loader[I]) expand(path string, b []byte) []byte {
	logger := l.logger()
	b = placeholder.ReplaceAllFunc(b, func(m []byte) []byte {
		k := string(placeholder.FindSubmatch(m)[1])
		val := os.Getenv(k)
		if val == "" {
			logger.Warn("env variable is empty during membership expansion",
				zap.String("file", filepath.Base(path)),
				zap.String("var", k))
		}
		return []byte(val)
	})

	if leftover.Match(b) {
		logger.Error("unresolved ${VAR} placeholders left after env expansion",
			zap.String("file", filepath.Base(path)))
	}
	return b
}

func (l *Loader[I]) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

func validate[I peers.ID](d Descriptor[I]) error {
	var zero I
	if d.PubKeyHex == zero {
		return errs.Unsupported("missing PubKeyHex")
	}
	if v, ok := any(d.PubKeyHex).(peers.Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if d.NetAddr == "" {
		return errs.Unsupported("missing NetAddr")
	}
	return peers.ValidateAddr(d.NetAddr)
}

// reason strips the kind prefix so nested unsupported errors read once.
func reason(err error) string {
	if e, ok := err.(*errs.Error); ok && e.Reason != "" {
		return e.Reason
	}
	return err.Error()
}

// isTypeError reports a well-formed artifact whose shape does not match a
// descriptor list. Anything else from a decoder means the bytes were unreadable.
func isTypeError(err error) bool {
	var (
		jsonErr *json.UnmarshalTypeError
		yamlErr *yaml.TypeError
		cborErr *cbor.UnmarshalTypeError
	)
	return errors.As(err, &jsonErr) || errors.As(err, &yamlErr) || errors.As(err, &cborErr)
}

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".cbor":
		return formatCBOR
	default:
		return formatJSON
	}
}

func decode(f format, b []byte, v any) error {
	switch f {
	case formatYAML:
		return yaml.Unmarshal(b, v)
	case formatCBOR:
		return cbor.Unmarshal(b, v)
	default:
		return json.Unmarshal(b, v)
	}
}

func encode(f format, v any) ([]byte, error) {
	switch f {
	case formatYAML:
		return yaml.Marshal(v)
	case formatCBOR:
		return cbor.Marshal(v)
	default:
		return json.MarshalIndent(v, "", "  ")
	}
}

// Save writes records as an artifact in the format implied by the extension.
// Secondary addresses are not part of the artifact and are dropped.
func Save[I peers.ID](path string, records []peers.Record[I]) error {
	descs := make([]Descriptor[I], 0, len(records))
	for _, r := range records {
		descs = append(descs, Descriptor[I]{PubKeyHex: r.ID(), NetAddr: r.BaseAddr})
	}
	b, err := encode(formatOf(path), descs)
	if err != nil {
		return errs.IO(err)
	}
	return errs.IO(os.WriteFile(path, b, 0644))
}
