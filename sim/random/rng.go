package random

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sort"
)

// === Engines by name ===

// ValidEngines is the set of recognized engine names. The empty name
// selects xoroshiro128**.
var ValidEngines = map[string]bool{
	"":                     true,
	"xoroshiro64star":      true,
	"xoroshiro64starstar":  true,
	"xoroshiro128plus":     true,
	"xoroshiro128starstar": true,
}

// NewEngine creates the named engine seeded with seed.
func NewEngine(name string, seed uint64) (Engine, error) {
	switch name {
	case "", "xoroshiro128starstar":
		return NewXoroshiro128StarStar(seed), nil
	case "xoroshiro128plus":
		return NewXoroshiro128Plus(seed), nil
	case "xoroshiro64star":
		return NewXoroshiro64Star(seed), nil
	case "xoroshiro64starstar":
		return NewXoroshiro64StarStar(seed), nil
	}
	return nil, fmt.Errorf("unknown engine %q; valid: %v", name, validEngineNames())
}

func validEngineNames() []string {
	names := make([]string, 0, len(ValidEngines))
	for n := range ValidEngines {
		if n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey and identical scenario MUST produce
// bit-for-bit identical traces.
type SimulationKey uint64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem names ===

const (
	// SubsystemArrivals draws inter-arrival times. It uses the master seed
	// directly, so a scenario's first flow is reproducible from the seed alone.
	SubsystemArrivals = "arrivals"

	// SubsystemPayload draws payload sizes.
	SubsystemPayload = "payload"
)

// SubsystemFlow returns the per-flow subsystem name for kind. Flow 0 uses
// kind itself.
func SubsystemFlow(kind string, i int) string {
	if i == 0 {
		return kind
	}
	return fmt.Sprintf("%s_flow_%d", kind, i)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated engines per subsystem.
//
// Derivation formula:
//   - For SubsystemArrivals: the master seed
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	engine     string
	subsystems map[string]*stream
}

type stream struct {
	engine Engine
	rng    *rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG whose streams use the named
// engine. The name must be in ValidEngines.
func NewPartitionedRNG(key SimulationKey, engine string) (*PartitionedRNG, error) {
	if !ValidEngines[engine] {
		return nil, fmt.Errorf("unknown engine %q; valid: %v", engine, validEngineNames())
	}
	return &PartitionedRNG{
		key:        key,
		engine:     engine,
		subsystems: make(map[string]*stream),
	}, nil
}

// ForSubsystem returns a deterministically-seeded *rand.Rand for the named
// subsystem. The same name always returns the same instance.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	return p.stream(name).rng
}

// Source returns the engine behind ForSubsystem(name), for use as the Src
// of a distribution.
func (p *PartitionedRNG) Source(name string) rand.Source {
	return p.stream(name).engine
}

func (p *PartitionedRNG) stream(name string) *stream {
	if s, ok := p.subsystems[name]; ok {
		return s
	}

	derived := uint64(p.key)
	if name != SubsystemArrivals {
		derived ^= fnv1a64(name)
	}

	e, err := NewEngine(p.engine, derived)
	if err != nil {
		// The engine name was validated in NewPartitionedRNG.
		panic(err)
	}
	s := &stream{engine: e, rng: rand.New(e)}
	p.subsystems[name] = s
	return s
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
