package policy

import (
	"encoding/json"
	"fmt"
)

// ExploitStrategy decides when a trial should restart from a better one.
type ExploitStrategy interface {
	ExploitName() string
	Params() (interface{}, error)
}

// ExploreStrategy decides how a hyperparameter is changed when a trial is
// restarted.
type ExploreStrategy interface {
	ExploreName() string
	Params() (interface{}, error)
}

const (
	TruncateName = "truncate"
	PerturbName  = "perturb"
)

// Truncate replaces a trial in the worst Proportion of the population by one
// in the best Proportion. 0 < Proportion <= 0.5.
type Truncate struct {
	Proportion float64
}

func NewTruncate() Truncate { return Truncate{Proportion: 0.2} }

func (Truncate) ExploitName() string { return TruncateName }

func (s Truncate) Params() (interface{}, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s.Proportion, nil
}

func (s Truncate) validate() error {
	if !(s.Proportion > 0 && s.Proportion <= 0.5) {
		return fmt.Errorf("%w: truncate proportion %v is not in (0, 0.5]", ErrInvalidParams, s.Proportion)
	}
	return nil
}

// Perturb multiplies a hyperparameter by a factor drawn uniformly from
// [MinFactor, MaxFactor).
type Perturb struct {
	MinFactor float64 `json:"minFactor"`
	MaxFactor float64 `json:"maxFactor"`
}

func NewPerturb() Perturb { return Perturb{MinFactor: 0.8, MaxFactor: 1.2} }

func (Perturb) ExploreName() string            { return PerturbName }
func (s Perturb) Params() (interface{}, error) { return s, nil }

var ExploitStrategies = NewRegistry[ExploitStrategy]("exploit strategy",
	func(s ExploitStrategy) string { return s.ExploitName() },
	func(s ExploitStrategy) (interface{}, error) { return s.Params() })

var ExploreStrategies = NewRegistry[ExploreStrategy]("explore strategy",
	func(s ExploreStrategy) string { return s.ExploreName() },
	func(s ExploreStrategy) (interface{}, error) { return s.Params() })

func init() {
	ExploitStrategies.Register(TruncateName, func(params json.RawMessage) (ExploitStrategy, error) {
		var s Truncate
		if err := json.Unmarshal(params, &s.Proportion); err != nil {
			return nil, fmt.Errorf("%w: truncate expects a number: %v", ErrInvalidParams, err)
		}
		if err := s.validate(); err != nil {
			return nil, err
		}
		return s, nil
	})
	ExploreStrategies.Register(PerturbName, func(params json.RawMessage) (ExploreStrategy, error) {
		var s Perturb
		err := decodeFields(params, &s, "minFactor", "maxFactor")
		return s, err
	})
}
