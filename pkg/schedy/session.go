package schedy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/schedyio/schedy/pkg/clientbase"
	cbhttp "github.com/schedyio/schedy/pkg/clientbase/http"
	cbhttpmiddleware "github.com/schedyio/schedy/pkg/clientbase/http/middleware"
	ltime "github.com/schedyio/schedy/pkg/time"
)

// Requests rejected with 401 are sent again with a fresh token, once.
const maxAuthAttempts = 2

// signinTimeout bounds a shared sign-in, which outlives the context of the
// caller that started it.
const signinTimeout = 2 * time.Minute

// Session signs in with the configured credentials and attaches a bearer
// token to every request. It is safe for concurrent use.
type Session struct {
	cfg         *Config
	routes      Routes
	connections *clientbase.Connections
	watch       ltime.Watch

	group singleflight.Group
	mu    sync.Mutex
	token *Token
}

func NewSession(cfg *Config, connections *clientbase.Connections, watch ltime.Watch) *Session {
	if watch == nil {
		watch = ltime.NewWallWatch()
	}
	return &Session{
		cfg:         cfg,
		routes:      NewRoutes(cfg.Root),
		connections: connections,
		watch:       watch,
	}
}

func (s *Session) Config() *Config { return s.cfg }
func (s *Session) Routes() Routes  { return s.routes }

// Token returns the token currently held, if any.
func (s *Session) Token() *Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

type signinRequest struct {
	Email string    `json:"email"`
	Token string    `json:"token"`
	Type  TokenType `json:"type"`
}

type signinResponse struct {
	Token     string      `json:"token"`
	ExpiresAt json.Number `json:"expiresAt"`
}

// Authenticate signs in and installs a new token.
func (s *Session) Authenticate(ctx context.Context) (*Token, error) {
	return s.signin(ctx)
}

// renew signs in unless a valid token was installed in the meantime.
// Concurrent callers share one sign-in request. A caller whose context ends
// returns right away while the sign-in goes on for the others.
func (s *Session) renew(ctx context.Context) (*Token, error) {
	shared := context.WithoutCancel(ctx)
	results := s.group.DoChan("signin", func() (interface{}, error) {
		if token := s.Token(); !token.ExpiresSoon(s.watch.Now()) {
			return token, nil
		}
		signinCtx, cancel := context.WithTimeout(shared, signinTimeout)
		defer cancel()
		return s.signin(signinCtx)
	})

	select {
	case <-ctx.Done():
		return nil, &Error{Kind: ErrTransport, Err: ctx.Err()}
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Token), nil
	}
}

func (s *Session) signin(ctx context.Context) (*Token, error) {
	var body signinResponse
	resp, herr := s.connections.HttpClient.Do(
		cbhttp.NewRequest(ctx, http.MethodPost, s.routes.Signin(),
			cbhttp.ComposeOptions(s.connections.RequestOptions()...),
			cbhttp.BodyObj(signinRequest{Email: s.cfg.Email, Token: s.cfg.Token, Type: s.cfg.TokenType})),
		cbhttpmiddleware.JsonDecoder(&body))
	if herr != nil {
		return nil, fromHttpError(herr)
	}
	if err := unexpectedStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	if body.Token == "" {
		return nil, &Error{Kind: ErrServer, Code: resp.StatusCode, Err: errors.New("sign-in response has no token")}
	}
	expiresAt, err := parseUnixTime(body.ExpiresAt)
	if err != nil {
		return nil, &Error{Kind: ErrServer, Code: resp.StatusCode, Err: fmt.Errorf("sign-in response: %w", err)}
	}

	token := NewToken(body.Token, expiresAt, s.watch.Now())
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	log.Debugf("signed in as %s, token renewal at %s", s.cfg.Email, token.RenewAt().Format(time.RFC3339))
	return token, nil
}

func parseUnixTime(n json.Number) (time.Time, error) {
	seconds, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiresAt %q", n.String())
	}
	if math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return time.Time{}, fmt.Errorf("invalid expiresAt %q", n.String())
	}
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))), nil
}

func (s *Session) currentToken(ctx context.Context) (*Token, error) {
	if token := s.Token(); !token.ExpiresSoon(s.watch.Now()) {
		return token, nil
	}
	return s.renew(ctx)
}

// invalidate drops the token unless another request already replaced it.
func (s *Session) invalidate(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == token {
		s.token = nil
	}
}

// Do sends an authenticated request. Options are applied again on every
// attempt, so request bodies must come from cbhttp.BodyObj. Statuses other
// than 200, 201 and 204 are returned as a *Error.
func (s *Session) Do(ctx context.Context, method, uri string, opts []cbhttp.RequestOption, m ...cbhttp.MiddlewareFunc) (*cbhttp.Response, error) {
	var lastErr error
	for attempt := 0; attempt < maxAuthAttempts; attempt++ {
		token, err := s.currentToken(ctx)
		if err != nil {
			return nil, err
		}

		options := make([]cbhttp.RequestOption, 0, len(opts)+2)
		options = append(options, s.connections.RequestOptions()...)
		options = append(options, opts...)
		options = append(options, cbhttp.BearerToken(token.Value))

		resp, herr := s.connections.HttpClient.Do(cbhttp.NewRequest(ctx, method, uri, options...), m...)
		if herr == nil {
			if serr := unexpectedStatus(resp.StatusCode); serr != nil {
				resp.Close()
				return nil, serr
			}
			return resp, nil
		}

		serr := fromHttpError(herr)
		if !errors.Is(serr, ErrReauthenticate) {
			return nil, serr
		}
		log.Debugf("%s %s rejected the token, signing in again", method, uri)
		s.invalidate(token)
		lastErr = serr
	}
	return nil, lastErr
}

// DoJson sends an authenticated request and decodes the JSON response body
// into out.
func (s *Session) DoJson(ctx context.Context, method, uri string, out interface{}, opts ...cbhttp.RequestOption) (*cbhttp.Response, error) {
	return s.Do(ctx, method, uri, opts, cbhttpmiddleware.JsonDecoder(out))
}

// DoNoResponse sends an authenticated request and discards the body.
func (s *Session) DoNoResponse(ctx context.Context, method, uri string, opts ...cbhttp.RequestOption) (*cbhttp.Response, error) {
	resp, err := s.Do(ctx, method, uri, opts)
	if err != nil {
		return nil, err
	}
	resp.Close()
	return resp, nil
}
