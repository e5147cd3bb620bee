package clientbase

import (
	"github.com/go-http-utils/headers"

	cbhttp "github.com/schedyio/schedy/pkg/clientbase/http"
)

// Connections is the transport shared by every session of a process.
type Connections struct {
	Cfg        *Config
	HttpClient *cbhttp.Instance
}

func NewConnections(cfg *Config, httpClient *cbhttp.Instance) (*Connections, error) {
	c := &Connections{
		Cfg: cfg,
	}

	c.HttpClient = httpClient

	return c, nil
}

// RequestOptions are added to every request sent through these connections.
func (c *Connections) RequestOptions() []cbhttp.RequestOption {
	if c.Cfg == nil || c.Cfg.UserAgent == "" {
		return nil
	}
	return []cbhttp.RequestOption{cbhttp.SetHeader(headers.UserAgent, c.Cfg.UserAgent)}
}

func (c *Connections) Close() error {
	if c.HttpClient != nil {
		return c.HttpClient.Close()
	}
	return nil
}
