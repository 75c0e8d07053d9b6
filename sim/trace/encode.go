package trace

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCBOR = "cbor"
)

// ValidFormats is the set of accepted export formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatYAML: true,
	FormatCBOR: true,
}

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding: sorted map keys, smallest integer encoding, no
// indefinite-length items. The digest depends on it.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("trace: CBOR encoder initialization failed: " + err.Error())
	}
}

// document is the exported form of a RunTrace.
type document struct {
	Run        RunInfo          `json:"run" yaml:"run"`
	Level      TraceLevel       `json:"level" yaml:"level"`
	Summary    *TraceSummary    `json:"summary" yaml:"summary"`
	Sends      []SendRecord     `json:"sends,omitempty" yaml:"sends,omitempty"`
	Deliveries []DeliveryRecord `json:"deliveries,omitempty" yaml:"deliveries,omitempty"`
}

func (st *RunTrace) document() document {
	level := st.Config.Level
	if level == "" {
		level = TraceLevelNone
	}
	return document{
		Run:        st.Info,
		Level:      level,
		Summary:    Summarize(st),
		Sends:      st.Sends,
		Deliveries: st.Deliveries,
	}
}

// Encode writes the trace to w in the given format.
func (st *RunTrace) Encode(w io.Writer, format string) error {
	doc := st.document()
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatCBOR:
		return encMode.NewEncoder(w).Encode(doc)
	}
	return fmt.Errorf("unknown trace format %q; valid: %v", format, validFormatNames())
}

// Digest is a BLAKE3 fingerprint of a run.
type Digest [32]byte

// String returns the lowercase hex form.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short returns the first 8 bytes in hex.
func (d Digest) Short() string { return hex.EncodeToString(d[:8]) }

// digestKey separates trace digests from any other BLAKE3 use. It is the
// ASCII domain name zero-padded to 32 bytes.
var digestKey = [32]byte{
	'n', 's', 'f', 'x', '.', 't', 'r', 'a', 'c', 'e', '.', 'v', '1',
}

// Digest hashes the deterministic CBOR encoding of the trace. Two runs
// with the same seed, scenario and trace level have the same digest.
func (st *RunTrace) Digest() (Digest, error) {
	var d Digest
	data, err := encMode.Marshal(st.document())
	if err != nil {
		return d, fmt.Errorf("trace digest: %w", err)
	}
	h, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		panic("trace: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	h.Write(data)
	copy(d[:], h.Sum(nil))
	return d, nil
}

func validFormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for n := range ValidFormats {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
