// Package overpass talks to an Overpass API instance: it probes the shared
// rate-limit status and submits queries. Sleeping between the two is left to
// the caller.
package overpass

import (
	"strings"
	"time"

	"github.com/samvad-hq/overpass-harvester/pkg/httpclient"
)

const (
	statusPath      = "/api/status"
	interpreterPath = "/api/interpreter"
)

// Logger defines the logging surface the client relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

// Client issues status probes and queries. It holds no per-endpoint state;
// the base URL is passed on every call.
type Client struct {
	http httpclient.Client
	log  Logger
}

// NewClient builds a client over the given transport. A nil transport uses
// resty with its default timeout.
func NewClient(client httpclient.Client, log Logger) *Client {
	if client == nil {
		client = httpclient.NewRestyClient(0)
	}
	if log == nil {
		log = noopLogger{}
	}
	return &Client{http: client, log: log}
}

// DefaultClient returns a client using a resty transport with the given timeout.
func DefaultClient(timeout time.Duration, log Logger) *Client {
	return NewClient(httpclient.NewRestyClient(timeout), log)
}

func endpoint(base, path string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + path
}
