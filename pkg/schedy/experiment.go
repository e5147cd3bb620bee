package schedy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-http-utils/headers"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	cbhttp "github.com/schedyio/schedy/pkg/clientbase/http"
	"github.com/schedyio/schedy/pkg/schedy/policy"
)

// IdempotencyKeyHeader lets the service recognize a retried POST.
const IdempotencyKeyHeader = "Idempotency-Key"

type ExperimentStatus string

const (
	ExperimentRunning ExperimentStatus = "RUNNING"
	ExperimentDone    ExperimentStatus = "DONE"
)

func (s ExperimentStatus) Valid() bool {
	return s == ExperimentRunning || s == ExperimentDone
}

// ExperimentDef is the definition of an experiment. Hyperparameters and
// Metrics are ordered sets: duplicates are dropped, first occurrence wins.
// Status and Scheduler are optional.
type ExperimentDef struct {
	Name            string
	Hyperparameters []string
	Metrics         []string
	Status          ExperimentStatus
	Scheduler       policy.Scheduler
}

type Experiment struct {
	ExperimentDef
	ProjectID string

	session    *Session
	schedulers *policy.Registry[policy.Scheduler]
}

type hyperparameterWire struct {
	Name string `json:"name"`
}

type experimentWire struct {
	ProjectID       string               `json:"projectID"`
	Name            string               `json:"name"`
	Hyperparameters []hyperparameterWire `json:"hyperparameters"`
	Metrics         []string             `json:"metricsName"`
	Status          ExperimentStatus     `json:"status,omitempty"`
	Scheduler       json.RawMessage      `json:"scheduler,omitempty"`
}

func orderedSet(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (e *Experiment) body() (*experimentWire, error) {
	w := &experimentWire{
		ProjectID:       e.ProjectID,
		Name:            e.Name,
		Hyperparameters: []hyperparameterWire{},
		Metrics:         orderedSet(e.Metrics),
		Status:          e.Status,
	}
	for _, name := range orderedSet(e.Hyperparameters) {
		w.Hyperparameters = append(w.Hyperparameters, hyperparameterWire{Name: name})
	}
	if e.Status != "" && !e.Status.Valid() {
		return nil, fmt.Errorf("experiment %s: invalid status %q", e.Name, e.Status)
	}
	if e.Scheduler != nil {
		scheduler, err := e.schedulers.Encode(e.Scheduler)
		if err != nil {
			return nil, fmt.Errorf("experiment %s: %w", e.Name, err)
		}
		w.Scheduler = scheduler
	}
	return w, nil
}

func decodeExperiment(raw json.RawMessage, session *Session, schedulers *policy.Registry[policy.Scheduler]) (*Experiment, error) {
	var w experimentWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, newError(ErrUnhandledResponse, "invalid experiment: %v", err)
	}
	if w.Name == "" || w.ProjectID == "" {
		return nil, newError(ErrUnhandledResponse, "invalid experiment: missing name or projectID")
	}
	if w.Status != "" && !w.Status.Valid() {
		return nil, newError(ErrUnhandledResponse, "experiment %s: invalid or unknown status %q", w.Name, w.Status)
	}

	e := &Experiment{
		ExperimentDef: ExperimentDef{
			Name:    w.Name,
			Metrics: orderedSet(w.Metrics),
			Status:  w.Status,
		},
		ProjectID:  w.ProjectID,
		session:    session,
		schedulers: schedulers,
	}
	hyperparameters := make([]string, 0, len(w.Hyperparameters))
	for _, hp := range w.Hyperparameters {
		hyperparameters = append(hyperparameters, hp.Name)
	}
	e.Hyperparameters = orderedSet(hyperparameters)

	if len(w.Scheduler) > 0 && string(w.Scheduler) != "null" {
		scheduler, err := schedulers.Decode(w.Scheduler)
		if err != nil {
			return nil, &Error{Kind: ErrUnhandledResponse, Err: fmt.Errorf("experiment %s: %w", w.Name, err)}
		}
		e.Scheduler = scheduler
	}
	return e, nil
}

func (e *Experiment) route() string {
	return e.session.Routes().Experiment(e.ProjectID, e.Name)
}

// Push writes the current definition of the experiment.
func (e *Experiment) Push(ctx context.Context) error {
	body, err := e.body()
	if err != nil {
		return err
	}
	_, err = e.session.DoNoResponse(ctx, http.MethodPut, e.route(), cbhttp.BodyObj(body))
	return err
}

// Delete removes the experiment. With ensure, the experiment must still
// exist.
func (e *Experiment) Delete(ctx context.Context, ensure bool) error {
	var opts []cbhttp.RequestOption
	if ensure {
		opts = append(opts, cbhttp.IfMatch("*"))
	}
	_, err := e.session.DoNoResponse(ctx, http.MethodDelete, e.route(), opts...)
	if err != nil && !ensure && IsNotFound(err) {
		return nil
	}
	return err
}

func (e *Experiment) newTrial(spec TrialSpec) *Trial {
	status := spec.Status
	if status == "" {
		status = TrialQueued
	}
	return &Trial{
		ProjectID:       e.ProjectID,
		ExperimentName:  e.Name,
		Status:          status,
		Hyperparameters: spec.Hyperparameters,
		Metrics:         spec.Metrics,
		Metadata:        spec.Metadata,
		session:         e.session,
	}
}

// decodeTrial reads a trial of this experiment.
func (e *Experiment) decodeTrial(raw json.RawMessage, etag string) (*Trial, error) {
	var w trialWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, newError(ErrUnhandledResponse, "invalid trial: %v", err)
	}
	if w.ID == "" || w.Status == "" {
		return nil, newError(ErrUnhandledResponse, "invalid trial: missing id or status")
	}
	if w.Experiment != e.Name {
		return nil, newError(ErrUnhandledResponse, "inconsistent experiment name for trial %s: expected %q, found %q", w.ID, e.Name, w.Experiment)
	}

	t := &Trial{
		ProjectID:      e.ProjectID,
		ExperimentName: e.Name,
		ETag:           etag,
		session:        e.session,
	}
	if err := t.apply(&w); err != nil {
		return nil, newError(ErrUnhandledResponse, "invalid trial %s: %w", w.ID, err)
	}
	return t, nil
}

// asResourceExists reports a failed creation precondition as a conflict.
func asResourceExists(err error) error {
	var serr *Error
	if errors.As(err, &serr) && (serr.Kind == ErrUnsafeUpdate || serr.Kind == ErrResourceExists) {
		return &Error{Kind: ErrResourceExists, Code: serr.Code, Body: serr.Body, Err: serr.Err}
	}
	return err
}

// CreateTrial adds a trial whose id is assigned by the service. The POST
// carries an idempotency key so that transport retries cannot create it
// twice.
func (e *Experiment) CreateTrial(ctx context.Context, spec TrialSpec) (*Trial, error) {
	t := e.newTrial(spec)
	body, err := t.body()
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	resp, err := e.session.DoJson(ctx, http.MethodPost, e.session.Routes().Trials(e.ProjectID, e.Name), &raw,
		cbhttp.BodyObj(body),
		cbhttp.SetHeader(IdempotencyKeyHeader, uuid.NewString()))
	if err != nil {
		return nil, asResourceExists(err)
	}

	var w trialWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, newError(ErrUnhandledResponse, "invalid trial creation response: %v", err)
	}
	if w.ID == "" {
		return nil, newError(ErrUnhandledResponse, "trial creation response has no id")
	}
	if err := t.apply(&w); err != nil {
		return nil, newError(ErrUnhandledResponse, "invalid trial %s: %w", w.ID, err)
	}
	t.ETag = resp.Header.Get(headers.ETag)
	return t, nil
}

// CreateTrialWithID adds a trial with a caller-chosen id. It fails with
// ErrResourceExists if the id is taken.
func (e *Experiment) CreateTrialWithID(ctx context.Context, id string, spec TrialSpec) (*Trial, error) {
	t := e.newTrial(spec)
	t.ID = id
	body, err := t.body()
	if err != nil {
		return nil, err
	}

	resp, err := e.session.DoNoResponse(ctx, http.MethodPut, t.route(), cbhttp.BodyObj(body), cbhttp.IfNoneMatch("*"))
	if err != nil {
		return nil, asResourceExists(err)
	}
	t.ETag = resp.Header.Get(headers.ETag)
	return t, nil
}

func (e *Experiment) GetTrial(ctx context.Context, id string) (*Trial, error) {
	var raw json.RawMessage
	resp, err := e.session.DoJson(ctx, http.MethodGet, e.session.Routes().Trial(e.ProjectID, e.Name, id), &raw)
	if err != nil {
		return nil, err
	}
	return e.decodeTrial(raw, resp.Header.Get(headers.ETag))
}

// ListTrials iterates over the trials of the experiment. Listed trials carry
// no entity tag: fetch one with GetTrial before a safe update.
func (e *Experiment) ListTrials(ctx context.Context) (*PageIterator[*Trial], error) {
	return newPageIterator(ctx, sessionPages(e.session, e.session.Routes().Trials(e.ProjectID, e.Name)),
		func(raw json.RawMessage) (*Trial, error) {
			return e.decodeTrial(raw, "")
		})
}

func (e *Experiment) DeleteTrial(ctx context.Context, id string, ensure bool) error {
	return deleteTrial(ctx, e.session, e.session.Routes().Trial(e.ProjectID, e.Name, id), ensure)
}

// NextTrial claims a trial to work on and returns it RUNNING. When another
// worker claims the same trial first, another one is requested. ErrNoTrial
// means nothing is left to run.
func (e *Experiment) NextTrial(ctx context.Context) (*Trial, error) {
	uri := e.session.Routes().Schedule(e.ProjectID, e.Name)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		trial, err := e.scheduled(ctx, uri)
		if err != nil {
			return nil, err
		}

		err = trial.TryRun(ctx)
		if err == nil {
			return trial, nil
		}
		if !errors.Is(err, ErrUnsafeUpdate) {
			return nil, err
		}
		log.Debugf("trial %s of experiment %s was claimed by another worker, retrying", trial.ID, e.Name)
	}
}

func (e *Experiment) scheduled(ctx context.Context, uri string) (*Trial, error) {
	resp, err := e.session.Do(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, &Error{Kind: ErrNoTrial, Code: resp.StatusCode, Err: fmt.Errorf("no trial left for experiment %s", e.Name)}
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp).Decode(&raw); err != nil {
		return nil, &Error{Kind: ErrServer, Code: resp.StatusCode, Err: fmt.Errorf("invalid scheduled trial: %w", err)}
	}
	return e.decodeTrial(raw, resp.Header.Get(headers.ETag))
}

// WorkOnNextTrial claims a trial and runs fn on it, see Trial.Work.
func (e *Experiment) WorkOnNextTrial(ctx context.Context, fn func(ctx context.Context, trial *Trial) error) error {
	trial, err := e.NextTrial(ctx)
	if err != nil {
		return err
	}
	return trial.Work(ctx, fn)
}
