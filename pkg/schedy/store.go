package schedy

import "context"

type ProjectStore interface {
	CreateProject(ctx context.Context, id, name string) (*Project, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) (*PageIterator[*Project], error)
	DeleteProject(ctx context.Context, id string) error
}

type ExperimentStore interface {
	CreateExperiment(ctx context.Context, def ExperimentDef) (*Experiment, error)
	GetExperiment(ctx context.Context, name string) (*Experiment, error)
	ListExperiments(ctx context.Context) (*PageIterator[*Experiment], error)
	DeleteExperiment(ctx context.Context, name string) error
}

type TrialStore interface {
	CreateTrial(ctx context.Context, spec TrialSpec) (*Trial, error)
	CreateTrialWithID(ctx context.Context, id string, spec TrialSpec) (*Trial, error)
	GetTrial(ctx context.Context, id string) (*Trial, error)
	ListTrials(ctx context.Context) (*PageIterator[*Trial], error)
	DeleteTrial(ctx context.Context, id string, ensure bool) error
	NextTrial(ctx context.Context) (*Trial, error)
}

var (
	_ ProjectStore    = &Client{}
	_ ExperimentStore = &Project{}
	_ TrialStore      = &Experiment{}
)
