package policy

import (
	"encoding/json"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	_ "github.com/schedyio/schedy/pkg/test/gomega"
)

func finiteFloat() *rapid.Generator[float64] {
	return rapid.Float64Range(-1e6, 1e6)
}

func distributionGenerator() *rapid.Generator[Distribution] {
	return rapid.OneOf(
		rapid.Custom(func(t *rapid.T) Distribution {
			return Uniform{Low: finiteFloat().Draw(t, "low"), High: finiteFloat().Draw(t, "high")}
		}),
		rapid.Custom(func(t *rapid.T) Distribution {
			return LogUniform{Base: finiteFloat().Draw(t, "base"), LowExp: finiteFloat().Draw(t, "lowExp"), HighExp: finiteFloat().Draw(t, "highExp")}
		}),
		rapid.Custom(func(t *rapid.T) Distribution {
			return Normal{Mean: finiteFloat().Draw(t, "mean"), Std: finiteFloat().Draw(t, "std")}
		}),
		rapid.Custom(func(t *rapid.T) Distribution {
			values := rapid.SliceOfN(rapid.String(), 1, 5).Draw(t, "values")
			choice := Choice{Values: make([]interface{}, len(values))}
			for i, v := range values {
				choice.Values[i] = v
			}
			if rapid.Bool().Draw(t, "weighted") {
				choice.Weights = rapid.SliceOfN(finiteFloat(), len(values), len(values)).Draw(t, "weights")
			}
			return choice
		}),
		rapid.Custom(func(t *rapid.T) Distribution {
			return Constant{Value: rapid.String().Draw(t, "value")}
		}),
	)
}

func roundTrip(t require.TestingT, s Scheduler) Scheduler {
	encoded, err := Schedulers.Encode(s)
	require.NoError(t, err)
	decoded, err := Schedulers.Decode(encoded)
	require.NoError(t, err)
	return decoded
}

func TestRandomSearchWireFormat(t *testing.T) {
	s := RandomSearch{Distributions: map[string]Distribution{
		"x": Normal{Mean: 0, Std: 5},
		"y": Normal{Mean: 0, Std: 2},
	}}

	encoded, err := Schedulers.Encode(s)
	Expect(err).ToNot(HaveOccurred())
	Expect(string(encoded)).To(MatchJSON(`{"RandomSearch": {"x": {"normal": {"mean": 0.0, "std": 5.0}}, "y": {"normal": {"mean": 0.0, "std": 2.0}}}}`))

	decoded, err := Schedulers.Decode(encoded)
	Expect(err).ToNot(HaveOccurred())
	Expect(decoded).To(Equal(s))
}

func TestRandomSearchRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		distributions := rapid.MapOfN(rapid.StringMatching(`[a-z]{1,6}`), distributionGenerator(), 0, 4).Draw(t, "distributions")
		s := RandomSearch{Distributions: distributions}
		assert.Equal(t, s, roundTrip(t, s))
	})
}

func TestManualSearch(t *testing.T) {
	encoded, err := Schedulers.Encode(ManualSearch{})
	Expect(err).ToNot(HaveOccurred())
	Expect(string(encoded)).To(MatchJSON(`{"Manual": null}`))
	Expect(roundTrip(t, ManualSearch{})).To(Equal(ManualSearch{}))

	_, err = Schedulers.Decode(json.RawMessage(`{"Manual": {"a": 1}}`))
	Expect(err).To(MatchError(ErrInvalidParams))
}

func TestPopulationBasedTraining(t *testing.T) {
	s := PopulationBasedTraining{
		Objective:  Maximize,
		ResultName: "accuracy",
		Exploit:    Truncate{Proportion: 0.2},
		Explore: map[string]ExploreStrategy{
			"lr": Perturb{MinFactor: 0.8, MaxFactor: 1.2},
		},
		InitialDistributions: map[string]Distribution{
			"lr":    LogUniform{Base: 10, LowExp: -4, HighExp: -1},
			"optim": Choice{Values: []interface{}{"sgd", "adam"}, Weights: []float64{1, 3}},
			"bs":    Constant{Value: "64"},
		},
		PopulationSize: 20,
		MaxGenerations: 10,
	}

	encoded, err := Schedulers.Encode(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"PBT": {
		"objective": "max",
		"qualityResultName": "accuracy",
		"exploit": {"truncate": 0.2},
		"explore": {"lr": {"perturb": {"minFactor": 0.8, "maxFactor": 1.2}}},
		"init": {
			"lr": {"loguniform": {"base": 10, "lowExp": -4, "highExp": -1}},
			"optim": {"choice": {"values": ["sgd", "adam"], "weights": [1, 3]}},
			"bs": {"const": "64"}
		},
		"numParallel": 20,
		"maxGenerations": 10
	}}`, string(encoded))

	assert.Equal(t, s, roundTrip(t, s))
}

func TestPopulationBasedTrainingMinimal(t *testing.T) {
	decoded, err := Schedulers.Decode(json.RawMessage(`{"PBT": {"objective": "min", "qualityResultName": "loss", "exploit": {"truncate": 0.5}}}`))
	require.NoError(t, err)
	assert.Equal(t, PopulationBasedTraining{
		Objective:  Minimize,
		ResultName: "loss",
		Exploit:    Truncate{Proportion: 0.5},
	}, decoded)
}

func TestInvalidDefinitions(t *testing.T) {
	for _, wire := range []string{
		`{}`,
		`{"RandomSearch": {}, "Manual": null}`,
		`[]`,
		`{"RandomSearch": {"x": {"gamma": {"k": 1}}}}`,
		`{"RandomSearch": {"x": {"normal": {"mean": 1}}}}`,
		`{"RandomSearch": {"x": {"choice": {"values": [1, 2], "weights": [1]}}}}`,
		`{"PBT": {"objective": "sideways", "qualityResultName": "q", "exploit": {"truncate": 0.2}}}`,
		`{"PBT": {"objective": "min", "qualityResultName": "q"}}`,
		`{"PBT": {"objective": "min", "qualityResultName": "q", "exploit": {"truncate": 0.7}}}`,
		`{"PBT": {"objective": "min", "qualityResultName": "q", "exploit": {"truncate": 0.2}, "explore": {"x": {"perturb": {"minFactor": 1}}}}}`,
	} {
		_, err := Schedulers.Decode(json.RawMessage(wire))
		assert.Errorf(t, err, "decoding %s", wire)
	}
}

func TestUnregisteredScheduler(t *testing.T) {
	_, err := Schedulers.Decode(json.RawMessage(`{"Hyperband": {"eta": 3}}`))
	Expect(err).To(MatchError(ErrUnregistered))
	Expect(err.Error()).To(ContainSubstring("Hyperband"))
}

type gridSearch struct {
	Points int `json:"points"`
}

func (gridSearch) SchedulerName() string          { return "Grid" }
func (s gridSearch) Params() (interface{}, error) { return s, nil }

func TestCustomScheduler(t *testing.T) {
	registry := NewRegistry[Scheduler]("scheduler",
		func(s Scheduler) string { return s.SchedulerName() },
		func(s Scheduler) (interface{}, error) { return s.Params() })
	registry.Register("Grid", func(params json.RawMessage) (Scheduler, error) {
		var s gridSearch
		err := decodeFields(params, &s, "points")
		return s, err
	})

	assert.Equal(t, []string{"Grid"}, registry.Names())
	encoded, err := registry.Encode(gridSearch{Points: 4})
	require.NoError(t, err)
	decoded, err := registry.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, gridSearch{Points: 4}, decoded)

	_, err = Schedulers.Decode(encoded)
	assert.ErrorIs(t, err, ErrUnregistered)
}

func TestEncodingValidation(t *testing.T) {
	_, err := Schedulers.Encode(RandomSearch{Distributions: map[string]Distribution{
		"x": Choice{Values: []interface{}{1, 2}, Weights: []float64{1}},
	}})
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = Schedulers.Encode(PopulationBasedTraining{Objective: Maximize, ResultName: "q"})
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = Schedulers.Encode(PopulationBasedTraining{Objective: Maximize, ResultName: "q", Exploit: Truncate{}})
	assert.ErrorIs(t, err, ErrInvalidParams)

	assert.Equal(t, Truncate{Proportion: 0.2}, NewTruncate())
	assert.Equal(t, Perturb{MinFactor: 0.8, MaxFactor: 1.2}, NewPerturb())
}
