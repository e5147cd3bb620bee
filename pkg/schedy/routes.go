package schedy

import (
	"net/url"
	"strings"
)

// Routes builds endpoint URLs from the service root, which must end with a
// slash.
type Routes struct {
	Root string
}

func NewRoutes(root string) Routes {
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return Routes{Root: root}
}

// EscapeSegment percent-encodes every byte outside A-Z a-z 0-9 and "-._~".
func EscapeSegment(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (r Routes) join(parts ...string) string {
	var b strings.Builder
	b.WriteString(r.Root)
	for _, p := range parts {
		b.WriteString(p)
	}
	return b.String()
}

func (r Routes) Signin() string        { return r.join("accounts/signin/") }
func (r Routes) GenerateToken() string { return r.join("accounts/generateToken/") }
func (r Routes) Projects() string      { return r.join("projects/") }

func (r Routes) Project(projectID string) string {
	return r.join("projects/", EscapeSegment(projectID), "/")
}

func (r Routes) Experiments(projectID string) string {
	return r.Project(projectID) + "experiments/"
}

func (r Routes) Experiment(projectID, experiment string) string {
	return r.Experiments(projectID) + EscapeSegment(experiment) + "/"
}

// Schedule is the endpoint handing out the next trial to run.
func (r Routes) Schedule(projectID, experiment string) string {
	return r.Experiment(projectID, experiment) + "schedule"
}

func (r Routes) Trials(projectID, experiment string) string {
	return r.Experiment(projectID, experiment) + "trials/"
}

func (r Routes) Trial(projectID, experiment, trialID string) string {
	return r.Trials(projectID, experiment) + EscapeSegment(trialID) + "/"
}
