package policy

import (
	"encoding/json"
	"fmt"
)

// Distribution describes how a random hyperparameter value is drawn.
type Distribution interface {
	DistributionName() string
	Args() (interface{}, error)
}

const (
	UniformName    = "uniform"
	LogUniformName = "loguniform"
	NormalName     = "normal"
	ChoiceName     = "choice"
	ConstantName   = "const"
)

type Uniform struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

func (Uniform) DistributionName() string     { return UniformName }
func (d Uniform) Args() (interface{}, error) { return d, nil }

// LogUniform draws Base^x with x uniform in [LowExp, HighExp].
type LogUniform struct {
	Base    float64 `json:"base"`
	LowExp  float64 `json:"lowExp"`
	HighExp float64 `json:"highExp"`
}

func (LogUniform) DistributionName() string     { return LogUniformName }
func (d LogUniform) Args() (interface{}, error) { return d, nil }

type Normal struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

func (Normal) DistributionName() string     { return NormalName }
func (d Normal) Args() (interface{}, error) { return d, nil }

// Choice picks one of Values, with probabilities proportional to Weights
// when they are set.
type Choice struct {
	Values  []interface{} `json:"values"`
	Weights []float64     `json:"weights,omitempty"`
}

func (Choice) DistributionName() string { return ChoiceName }

func (d Choice) Args() (interface{}, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if d.Values == nil {
		d.Values = []interface{}{}
	}
	return d, nil
}

func (d Choice) validate() error {
	if d.Weights != nil && len(d.Weights) != len(d.Values) {
		return fmt.Errorf("%w: %d weights for %d values", ErrInvalidParams, len(d.Weights), len(d.Values))
	}
	return nil
}

// Constant always yields Value. Its parameters are the value itself.
type Constant struct {
	Value interface{}
}

func (Constant) DistributionName() string     { return ConstantName }
func (d Constant) Args() (interface{}, error) { return d.Value, nil }

// Distributions holds the distribution kinds understood by the client.
var Distributions = NewRegistry[Distribution]("distribution",
	func(d Distribution) string { return d.DistributionName() },
	func(d Distribution) (interface{}, error) { return d.Args() })

func init() {
	Distributions.Register(UniformName, func(params json.RawMessage) (Distribution, error) {
		var d Uniform
		err := decodeFields(params, &d, "low", "high")
		return d, err
	})
	Distributions.Register(LogUniformName, func(params json.RawMessage) (Distribution, error) {
		var d LogUniform
		err := decodeFields(params, &d, "base", "lowExp", "highExp")
		return d, err
	})
	Distributions.Register(NormalName, func(params json.RawMessage) (Distribution, error) {
		var d Normal
		err := decodeFields(params, &d, "mean", "std")
		return d, err
	})
	Distributions.Register(ChoiceName, func(params json.RawMessage) (Distribution, error) {
		var d Choice
		if err := decodeFields(params, &d, "values"); err != nil {
			return nil, err
		}
		if err := d.validate(); err != nil {
			return nil, err
		}
		return d, nil
	})
	Distributions.Register(ConstantName, func(params json.RawMessage) (Distribution, error) {
		var d Constant
		if err := json.Unmarshal(params, &d.Value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		return d, nil
	})
}
