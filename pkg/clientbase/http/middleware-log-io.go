package cbhttp

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-http-utils/headers"
	log "github.com/sirupsen/logrus"

	lhttp "github.com/schedyio/schedy/pkg/http"
)

// LogIO dumps every attempt's request and response at debug level.
func LogIO() MiddlewareFunc {
	return func(next RunnerFunc) RunnerFunc {
		return func(r *Request) (*Response, *lhttp.HttpError) {
			if !log.IsLevelEnabled(log.DebugLevel) {
				return next(r)
			}

			if r.Body != nil {
				content, err := io.ReadAll(r.Body)
				if err != nil {
					return nil, &lhttp.HttpError{Err: err}
				}
				r.Body.Close()
				r.Body = io.NopCloser(bytes.NewReader(content))
				log.Debugf("> %s %s\n%s\n%s", r.Method, r.URI, formatHeader(r.Header), content)
			} else {
				log.Debugf("> %s %s\n%s", r.Method, r.URI, formatHeader(r.Header))
			}

			resp, herr := next(r)
			switch {
			case herr != nil && herr.IsTransport():
				log.Debugf("< %s %s failed: %s", r.Method, r.URI, herr)
			case herr != nil:
				log.Debugf("< %d\n%s\n%s", herr.Code, formatHeader(herr.Header), herr.Message)
			default:
				// send already buffered the body.
				content, _ := io.ReadAll(resp.Body)
				resp.Body = io.NopCloser(bytes.NewReader(content))
				log.Debugf("< %d\n%s\n%s", resp.StatusCode, formatHeader(resp.Header), content)
			}
			return resp, herr
		}
	}
}

func formatHeader(h http.Header) string {
	if len(h) == 0 {
		return ""
	}
	redacted := h.Clone()
	if redacted.Get(headers.Authorization) != "" {
		redacted.Set(headers.Authorization, "<redacted>")
	}
	var buffer bytes.Buffer
	_ = redacted.Write(&buffer)
	return buffer.String()
}
