// Package schedy is a client for the schedy experiment service: projects,
// experiments and the trials that workers claim and complete.
package schedy

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/schedyio/schedy/pkg/clientbase"
	cbhttp "github.com/schedyio/schedy/pkg/clientbase/http"
	"github.com/schedyio/schedy/pkg/schedy/policy"
	ltime "github.com/schedyio/schedy/pkg/time"
)

type Client struct {
	session    *Session
	schedulers *policy.Registry[policy.Scheduler]
}

func NewClient(cfg *Config, connections *clientbase.Connections, watch ltime.Watch) *Client {
	return &Client{
		session:    NewSession(cfg, connections, watch),
		schedulers: policy.Schedulers,
	}
}

// WithSchedulers returns a client decoding experiment schedulers with the
// given registry instead of policy.Schedulers.
func (c *Client) WithSchedulers(schedulers *policy.Registry[policy.Scheduler]) *Client {
	return &Client{session: c.session, schedulers: schedulers}
}

func (c *Client) Session() *Session { return c.session }

func (c *Client) project(id, name string) *Project {
	return &Project{ID: id, Name: name, session: c.session, schedulers: c.schedulers}
}

// Project returns a handle on a project without fetching it.
func (c *Client) Project(id string) *Project {
	return c.project(id, "")
}

// CreateProject fails with ErrResourceExists if the id is taken.
func (c *Client) CreateProject(ctx context.Context, id, name string) (*Project, error) {
	_, err := c.session.DoNoResponse(ctx, http.MethodPost, c.session.Routes().Projects(),
		cbhttp.BodyObj(createProjectWire{ProjectID: id, Name: name}))
	if err != nil {
		return nil, asResourceExists(err)
	}
	return c.project(id, name), nil
}

func (c *Client) decodeProject(raw json.RawMessage) (*Project, error) {
	var w projectWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, newError(ErrUnhandledResponse, "invalid project: %v", err)
	}
	if w.ID == "" {
		return nil, newError(ErrUnhandledResponse, "invalid project: missing id")
	}
	return c.project(w.ID, w.Name), nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var raw json.RawMessage
	if _, err := c.session.DoJson(ctx, http.MethodGet, c.session.Routes().Project(id), &raw); err != nil {
		return nil, err
	}
	return c.decodeProject(raw)
}

func (c *Client) ListProjects(ctx context.Context) (*PageIterator[*Project], error) {
	return newPageIterator(ctx, sessionPages(c.session, c.session.Routes().Projects()), c.decodeProject)
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	_, err := c.session.DoNoResponse(ctx, http.MethodDelete, c.session.Routes().Project(id))
	return err
}

// GenerateToken asks the service for a long-lived API token for the
// configured account, usually signed in with a password. The returned
// configuration is not saved, see SaveConfig.
func (c *Client) GenerateToken(ctx context.Context) (*Config, error) {
	var generated Config
	if _, err := c.session.DoJson(ctx, http.MethodPost, c.session.Routes().GenerateToken(), &generated); err != nil {
		return nil, err
	}
	if generated.Root == "" {
		generated.Root = c.session.Config().Root
	}
	if generated.Email == "" {
		generated.Email = c.session.Config().Email
	}
	if generated.TokenType == "" {
		generated.TokenType = TokenTypeAPI
	}
	if err := generated.Validate(); err != nil {
		return nil, &Error{Kind: ErrServer, Err: err}
	}
	return &generated, nil
}
