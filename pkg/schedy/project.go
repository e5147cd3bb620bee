package schedy

import (
	"context"
	"encoding/json"
	"net/http"

	cbhttp "github.com/schedyio/schedy/pkg/clientbase/http"
	"github.com/schedyio/schedy/pkg/schedy/policy"
)

// Project is the namespace of a set of experiments.
type Project struct {
	ID   string
	Name string

	session    *Session
	schedulers *policy.Registry[policy.Scheduler]
}

type projectWire struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type createProjectWire struct {
	ProjectID string `json:"projectID"`
	Name      string `json:"name"`
}

func (p *Project) experiment(def ExperimentDef) *Experiment {
	return &Experiment{
		ExperimentDef: def,
		ProjectID:     p.ID,
		session:       p.session,
		schedulers:    p.schedulers,
	}
}

// CreateExperiment adds an experiment to the project. It fails with
// ErrResourceExists if the name is taken.
func (p *Project) CreateExperiment(ctx context.Context, def ExperimentDef) (*Experiment, error) {
	e := p.experiment(def)
	e.Hyperparameters = orderedSet(def.Hyperparameters)
	e.Metrics = orderedSet(def.Metrics)
	body, err := e.body()
	if err != nil {
		return nil, err
	}

	_, err = p.session.DoNoResponse(ctx, http.MethodPost, p.session.Routes().Experiments(p.ID), cbhttp.BodyObj(body))
	if err != nil {
		return nil, asResourceExists(err)
	}
	return e, nil
}

func (p *Project) GetExperiment(ctx context.Context, name string) (*Experiment, error) {
	var raw json.RawMessage
	if _, err := p.session.DoJson(ctx, http.MethodGet, p.session.Routes().Experiment(p.ID, name), &raw); err != nil {
		return nil, err
	}
	return decodeExperiment(raw, p.session, p.schedulers)
}

func (p *Project) ListExperiments(ctx context.Context) (*PageIterator[*Experiment], error) {
	return newPageIterator(ctx, sessionPages(p.session, p.session.Routes().Experiments(p.ID)),
		func(raw json.RawMessage) (*Experiment, error) {
			return decodeExperiment(raw, p.session, p.schedulers)
		})
}

// Experiment returns a handle on an experiment of the project without
// fetching it.
func (p *Project) Experiment(name string) *Experiment {
	return p.experiment(ExperimentDef{Name: name})
}

func (p *Project) DeleteExperiment(ctx context.Context, name string) error {
	_, err := p.session.DoNoResponse(ctx, http.MethodDelete, p.session.Routes().Experiment(p.ID, name))
	return err
}
