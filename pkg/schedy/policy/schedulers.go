// Package policy describes the scheduling policies of an experiment. The
// descriptors only carry configuration: the service runs the policies.
package policy

import (
	"encoding/json"
	"fmt"
)

// Scheduler decides which hyperparameters the next trial of an experiment
// gets.
type Scheduler interface {
	SchedulerName() string
	Params() (interface{}, error)
}

const (
	ManualName       = "Manual"
	RandomSearchName = "RandomSearch"
	PBTName          = "PBT"
)

// ManualSearch only hands out trials that were queued explicitly.
type ManualSearch struct{}

func (ManualSearch) SchedulerName() string        { return ManualName }
func (ManualSearch) Params() (interface{}, error) { return nil, nil }

// RandomSearch draws every hyperparameter from its distribution when no
// trial is queued.
type RandomSearch struct {
	Distributions map[string]Distribution
}

func (RandomSearch) SchedulerName() string { return RandomSearchName }

func (s RandomSearch) Params() (interface{}, error) {
	return Distributions.EncodeMap(s.Distributions)
}

type Objective string

const (
	Minimize Objective = "min"
	Maximize Objective = "max"
)

// PopulationBasedTraining trains a population of trials, periodically
// replacing the worst ones by perturbed copies of the best ones.
type PopulationBasedTraining struct {
	Objective            Objective
	ResultName           string
	Exploit              ExploitStrategy
	Explore              map[string]ExploreStrategy
	InitialDistributions map[string]Distribution
	PopulationSize       int
	MaxGenerations       int
}

type pbtParams struct {
	Objective      Objective                  `json:"objective"`
	ResultName     string                     `json:"qualityResultName"`
	PopulationSize int                        `json:"numParallel,omitempty"`
	Init           map[string]json.RawMessage `json:"init,omitempty"`
	Exploit        json.RawMessage            `json:"exploit"`
	Explore        map[string]json.RawMessage `json:"explore,omitempty"`
	MaxGenerations int                        `json:"maxGenerations,omitempty"`
}

func (PopulationBasedTraining) SchedulerName() string { return PBTName }

func (s PopulationBasedTraining) Params() (interface{}, error) {
	if err := s.Objective.validate(); err != nil {
		return nil, err
	}
	if s.Exploit == nil {
		return nil, fmt.Errorf("%w: an exploit strategy is required", ErrInvalidParams)
	}

	params := pbtParams{
		Objective:      s.Objective,
		ResultName:     s.ResultName,
		PopulationSize: s.PopulationSize,
		MaxGenerations: s.MaxGenerations,
	}
	var err error
	if params.Exploit, err = ExploitStrategies.Encode(s.Exploit); err != nil {
		return nil, err
	}
	if len(s.Explore) > 0 {
		if params.Explore, err = ExploreStrategies.EncodeMap(s.Explore); err != nil {
			return nil, err
		}
	}
	if len(s.InitialDistributions) > 0 {
		if params.Init, err = Distributions.EncodeMap(s.InitialDistributions); err != nil {
			return nil, err
		}
	}
	return params, nil
}

func (o Objective) validate() error {
	switch o {
	case Minimize, Maximize:
		return nil
	}
	return fmt.Errorf("%w: objective %q is neither %q nor %q", ErrInvalidParams, o, Minimize, Maximize)
}

func decodePBT(raw json.RawMessage) (Scheduler, error) {
	var params struct {
		Objective      Objective       `json:"objective"`
		ResultName     string          `json:"qualityResultName"`
		PopulationSize int             `json:"numParallel"`
		Init           json.RawMessage `json:"init"`
		Exploit        json.RawMessage `json:"exploit"`
		Explore        json.RawMessage `json:"explore"`
		MaxGenerations int             `json:"maxGenerations"`
	}
	if err := decodeFields(raw, &params, "objective", "qualityResultName", "exploit"); err != nil {
		return nil, err
	}
	if err := params.Objective.validate(); err != nil {
		return nil, err
	}

	s := PopulationBasedTraining{
		Objective:      params.Objective,
		ResultName:     params.ResultName,
		PopulationSize: params.PopulationSize,
		MaxGenerations: params.MaxGenerations,
	}
	var err error
	if s.Exploit, err = ExploitStrategies.Decode(params.Exploit); err != nil {
		return nil, err
	}
	if !isNull(params.Explore) {
		if s.Explore, err = ExploreStrategies.DecodeMap(params.Explore); err != nil {
			return nil, err
		}
	}
	if !isNull(params.Init) {
		if s.InitialDistributions, err = Distributions.DecodeMap(params.Init); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Schedulers holds the scheduler kinds understood by the client. Custom
// kinds can be added with Register.
var Schedulers = NewRegistry[Scheduler]("scheduler",
	func(s Scheduler) string { return s.SchedulerName() },
	func(s Scheduler) (interface{}, error) { return s.Params() })

func init() {
	Schedulers.Register(ManualName, func(params json.RawMessage) (Scheduler, error) {
		if !isNull(params) {
			return nil, fmt.Errorf("%w: manual search takes no parameters", ErrInvalidParams)
		}
		return ManualSearch{}, nil
	})
	Schedulers.Register(RandomSearchName, func(params json.RawMessage) (Scheduler, error) {
		distributions, err := Distributions.DecodeMap(params)
		if err != nil {
			return nil, err
		}
		return RandomSearch{Distributions: distributions}, nil
	})
	Schedulers.Register(PBTName, decodePBT)
}
