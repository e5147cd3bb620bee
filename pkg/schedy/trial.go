package schedy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-http-utils/headers"
	"github.com/hashicorp/go-multierror"
	"github.com/looplab/fsm"
	log "github.com/sirupsen/logrus"

	cbhttp "github.com/schedyio/schedy/pkg/clientbase/http"
	"github.com/schedyio/schedy/pkg/scalar"
)

type TrialStatus string

const (
	TrialQueued  TrialStatus = "QUEUED"
	TrialRunning TrialStatus = "RUNNING"
	TrialCrashed TrialStatus = "CRASHED"
	TrialDone    TrialStatus = "DONE"
	// TrialPruned is only ever set by the service or explicitly by the
	// caller.
	TrialPruned TrialStatus = "PRUNED"
)

func (s TrialStatus) Valid() bool {
	switch s {
	case TrialQueued, TrialRunning, TrialCrashed, TrialDone, TrialPruned:
		return true
	}
	return false
}

const (
	eventRun      = "run"
	eventComplete = "complete"
	eventCrash    = "crash"
)

var trialEvents = fsm.Events{
	{Name: eventRun, Src: []string{string(TrialQueued), string(TrialCrashed), string(TrialRunning)}, Dst: string(TrialRunning)},
	{Name: eventComplete, Src: []string{string(TrialRunning)}, Dst: string(TrialDone)},
	{Name: eventCrash, Src: []string{string(TrialQueued), string(TrialRunning)}, Dst: string(TrialCrashed)},
}

// transition returns the status reached from "from" by event. Running an
// already running trial is allowed.
func transition(from TrialStatus, event string) (TrialStatus, error) {
	machine := fsm.NewFSM(string(from), trialEvents, fsm.Callbacks{})
	if err := machine.Event(event); err != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			return from, fmt.Errorf("%w: cannot %s a %s trial", ErrInvalidTransition, event, from)
		}
	}
	return TrialStatus(machine.Current()), nil
}

// Trial is one run of an experiment. ETag is the version of the trial last
// read or written by this client; safe updates are conditioned on it.
type Trial struct {
	ProjectID       string
	ExperimentName  string
	ID              string
	Status          TrialStatus
	Hyperparameters scalar.Map
	Metrics         map[string]float64
	Metadata        scalar.Map
	ETag            string

	session *Session
}

// TrialSpec holds the caller-provided fields of a new trial. The status
// defaults to QUEUED.
type TrialSpec struct {
	Hyperparameters scalar.Map
	Status          TrialStatus
	Metrics         map[string]float64
	Metadata        scalar.Map
}

type trialWire struct {
	ID              string                     `json:"id,omitempty"`
	Project         string                     `json:"project,omitempty"`
	Experiment      string                     `json:"experiment,omitempty"`
	Status          TrialStatus                `json:"status,omitempty"`
	Hyperparameters map[string]json.RawMessage `json:"hyperparameters,omitempty"`
	Metrics         map[string]json.RawMessage `json:"metrics,omitempty"`
	Metadata        map[string]json.RawMessage `json:"metadata,omitempty"`
}

// body is the representation sent on writes.
func (t *Trial) body() (*trialWire, error) {
	w := &trialWire{Status: t.Status}
	var err error
	if len(t.Hyperparameters) > 0 {
		if w.Hyperparameters, err = scalar.EncodeMap(t.Hyperparameters); err != nil {
			return nil, fmt.Errorf("hyperparameters: %w", err)
		}
	}
	if len(t.Metadata) > 0 {
		if w.Metadata, err = scalar.EncodeMap(t.Metadata); err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
	}
	if len(t.Metrics) > 0 {
		w.Metrics = make(map[string]json.RawMessage, len(t.Metrics))
		for name, value := range t.Metrics {
			w.Metrics[name] = scalar.EncodeNumber(value)
		}
	}
	return w, nil
}

// apply copies the fields present in w onto t.
func (t *Trial) apply(w *trialWire) error {
	if w.ID != "" {
		t.ID = w.ID
	}
	if w.Status != "" {
		if !w.Status.Valid() {
			return fmt.Errorf("invalid or unknown status %q", w.Status)
		}
		t.Status = w.Status
	}
	if w.Hyperparameters != nil {
		hp, err := scalar.DecodeMap(w.Hyperparameters)
		if err != nil {
			return fmt.Errorf("hyperparameters: %w", err)
		}
		t.Hyperparameters = hp
	}
	if w.Metadata != nil {
		metadata, err := scalar.DecodeMap(w.Metadata)
		if err != nil {
			return fmt.Errorf("metadata: %w", err)
		}
		t.Metadata = metadata
	}
	if w.Metrics != nil {
		metrics := make(map[string]float64, len(w.Metrics))
		for name, raw := range w.Metrics {
			value, err := scalar.DecodeNumber(raw)
			if err != nil {
				return fmt.Errorf("metric %s: %w", name, err)
			}
			metrics[name] = value
		}
		t.Metrics = metrics
	}
	return nil
}

func (t *Trial) route() string {
	return t.session.Routes().Trial(t.ProjectID, t.ExperimentName, t.ID)
}

// Update writes the trial. A safe update only succeeds if the trial was not
// modified since ETag was captured, and fails with ErrUnsafeUpdate
// otherwise. An unsafe update overwrites concurrent changes.
func (t *Trial) Update(ctx context.Context, safe bool) error {
	body, err := t.body()
	if err != nil {
		return err
	}

	opts := []cbhttp.RequestOption{cbhttp.BodyObj(body)}
	if safe {
		if t.ETag == "" {
			return fmt.Errorf("updating trial %s: %w", t.ID, ErrMissingETag)
		}
		opts = append(opts, cbhttp.IfMatch(t.ETag))
	}

	resp, err := t.session.DoNoResponse(ctx, http.MethodPut, t.route(), opts...)
	if err != nil {
		return err
	}
	if etag := resp.Header.Get(headers.ETag); etag != "" {
		t.ETag = etag
	}
	return nil
}

// TryRun marks the trial as running with a safe update. ErrUnsafeUpdate
// means another worker got to the trial first. The status is left unchanged
// when the update fails.
func (t *Trial) TryRun(ctx context.Context) error {
	status, err := transition(t.Status, eventRun)
	if err != nil {
		return err
	}

	previous := t.Status
	t.Status = status
	if err := t.Update(ctx, true); err != nil {
		t.Status = previous
		return err
	}
	return nil
}

// Delete removes the trial. With ensure, the trial must still exist;
// otherwise a trial that is already gone is not an error.
func (t *Trial) Delete(ctx context.Context, ensure bool) error {
	return deleteTrial(ctx, t.session, t.route(), ensure)
}

func deleteTrial(ctx context.Context, session *Session, uri string, ensure bool) error {
	var opts []cbhttp.RequestOption
	if ensure {
		opts = append(opts, cbhttp.IfMatch("*"))
	}
	_, err := session.DoNoResponse(ctx, http.MethodDelete, uri, opts...)
	if err != nil && !ensure && IsNotFound(err) {
		return nil
	}
	return err
}

// Work runs fn on the trial. The trial is marked as running first if it is
// not already. When fn returns, the trial is marked DONE, or CRASHED if fn
// failed or panicked, and written with a safe update. Panics are propagated
// once the trial is written.
func (t *Trial) Work(ctx context.Context, fn func(ctx context.Context, trial *Trial) error) (err error) {
	if t.Status != TrialRunning {
		if err := t.TryRun(ctx); err != nil {
			return err
		}
	}

	defer func() {
		recovered := recover()

		event := eventComplete
		if err != nil || recovered != nil {
			event = eventCrash
		}
		if status, terr := transition(t.Status, event); terr == nil {
			t.Status = status
		} else {
			log.Warnf("trial %s: keeping status %s: %s", t.ID, t.Status, terr)
		}

		// The final write must go through even when ctx is what failed fn.
		if uerr := t.Update(context.WithoutCancel(ctx), true); uerr != nil {
			if err == nil {
				err = uerr
			} else {
				err = multierror.Append(err, uerr)
			}
		}

		if recovered != nil {
			panic(recovered)
		}
	}()

	return fn(ctx, t)
}
