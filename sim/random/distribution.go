package random

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution draws real-valued samples.
type Distribution interface {
	Rand() float64
}

// DistSpec parameterizes a distribution.
type DistSpec struct {
	Type   string             `yaml:"type" json:"type"`
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
}

// ValidDistributions maps each distribution type to its required parameters.
var ValidDistributions = map[string][]string{
	"constant":    {"value"},
	"uniform":     {"min", "max"},
	"exponential": {"mean"},
	"normal":      {"mean", "std_dev"},
	"lognormal":   {"mu", "sigma"},
	"pareto":      {"xm", "alpha"},
	"poisson":     {"lambda"},
	"weibull":     {"k", "lambda"},
}

// Validate checks the type and the presence and range of its parameters.
func (s DistSpec) Validate() error {
	keys, ok := ValidDistributions[s.Type]
	if !ok {
		return fmt.Errorf("unknown distribution type %q; valid: %v", s.Type, validDistributionNames())
	}
	if err := requireParam(s.Params, keys...); err != nil {
		return fmt.Errorf("%s: %w", s.Type, err)
	}
	p := s.Params
	switch s.Type {
	case "uniform":
		if p["max"] < p["min"] {
			return fmt.Errorf("uniform: max %g below min %g", p["max"], p["min"])
		}
	case "exponential":
		if p["mean"] <= 0 {
			return fmt.Errorf("exponential: mean must be positive, got %g", p["mean"])
		}
	case "normal":
		if p["std_dev"] < 0 {
			return fmt.Errorf("normal: std_dev must be non-negative, got %g", p["std_dev"])
		}
	case "lognormal":
		if p["sigma"] < 0 {
			return fmt.Errorf("lognormal: sigma must be non-negative, got %g", p["sigma"])
		}
	case "pareto":
		if p["xm"] <= 0 || p["alpha"] <= 0 {
			return fmt.Errorf("pareto: xm and alpha must be positive")
		}
	case "poisson":
		if p["lambda"] <= 0 {
			return fmt.Errorf("poisson: lambda must be positive, got %g", p["lambda"])
		}
	case "weibull":
		if p["k"] <= 0 || p["lambda"] <= 0 {
			return fmt.Errorf("weibull: k and lambda must be positive")
		}
	}
	for k, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: parameter %q is not finite", s.Type, k)
		}
	}
	return nil
}

// Mean returns the expected value of the distribution described by s.
// It assumes s is valid.
func (s DistSpec) Mean() float64 {
	p := s.Params
	switch s.Type {
	case "constant":
		return p["value"]
	case "uniform":
		return (p["min"] + p["max"]) / 2
	case "exponential", "normal":
		return p["mean"]
	}
	d, err := NewDistribution(s, NewSplitMix64(0))
	if err != nil {
		return math.NaN()
	}
	if m, ok := d.(interface{ Mean() float64 }); ok {
		return m.Mean()
	}
	return math.NaN()
}

// constant always returns the same value.
type constant float64

func (c constant) Rand() float64 { return float64(c) }
func (c constant) Mean() float64 { return float64(c) }

// NewDistribution builds the distribution described by spec drawing from src.
func NewDistribution(spec DistSpec, src rand.Source) (Distribution, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	p := spec.Params
	switch spec.Type {
	case "constant":
		return constant(p["value"]), nil
	case "uniform":
		if p["min"] == p["max"] {
			return constant(p["min"]), nil
		}
		return distuv.Uniform{Min: p["min"], Max: p["max"], Src: src}, nil
	case "exponential":
		return distuv.Exponential{Rate: 1 / p["mean"], Src: src}, nil
	case "normal":
		return distuv.Normal{Mu: p["mean"], Sigma: p["std_dev"], Src: src}, nil
	case "lognormal":
		return distuv.LogNormal{Mu: p["mu"], Sigma: p["sigma"], Src: src}, nil
	case "pareto":
		return distuv.Pareto{Xm: p["xm"], Alpha: p["alpha"], Src: src}, nil
	case "poisson":
		return distuv.Poisson{Lambda: p["lambda"], Src: src}, nil
	case "weibull":
		return distuv.Weibull{K: p["k"], Lambda: p["lambda"], Src: src}, nil
	}
	// Validate rejects unknown types.
	panic(fmt.Sprintf("unhandled distribution type %q", spec.Type))
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

func validDistributionNames() []string {
	names := make([]string, 0, len(ValidDistributions))
	for n := range ValidDistributions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
