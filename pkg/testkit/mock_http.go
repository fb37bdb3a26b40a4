// Package testkit provides test doubles for the outgoing HTTP layer.
//
// MockTransport implements http.RoundTripper. Install it on the shared HTTP
// client before the test so no real network calls are made:
//
//	mt := testkit.NewMockTransport()
//	mt.Stub("POST", "/compras/", 200, `{"id": 7}`)
//	http.DefaultClient.Transport = mt
//	defer http.ResetTransport()
//	// ... run test ...
//	mt.AssertAllCalled(t)
package testkit

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Stub describes one mocked endpoint.
type Stub struct {
	Method     string // "" matches any method
	Path       string // prefix match against the request path
	StatusCode int
	Body       string
	Err        error // when set, the round trip fails with this error

	calls int
}

// MockTransport matches outgoing requests against stubs and returns
// synthetic responses.
type MockTransport struct {
	mu    sync.Mutex
	stubs []*Stub
}

func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Stub registers a synthetic response for method+path (prefix match, first
// registered wins). Returns the stub so tests can inspect call counts.
func (mt *MockTransport) Stub(method, path string, status int, body string) *Stub {
	s := &Stub{Method: method, Path: path, StatusCode: status, Body: body}
	mt.mu.Lock()
	mt.stubs = append(mt.stubs, s)
	mt.mu.Unlock()
	return s
}

// StubError makes matching requests fail at the transport level.
func (mt *MockTransport) StubError(method, path string, err error) *Stub {
	s := &Stub{Method: method, Path: path, Err: err}
	mt.mu.Lock()
	mt.stubs = append(mt.stubs, s)
	mt.mu.Unlock()
	return s
}

// RoundTrip intercepts the outgoing request and returns a synthetic response.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	for _, s := range mt.stubs {
		if s.Method != "" && s.Method != req.Method {
			continue
		}
		if !strings.HasPrefix(req.URL.Path, s.Path) {
			continue
		}

		s.calls++
		if s.Err != nil {
			return nil, s.Err
		}

		code := s.StatusCode
		if code == 0 {
			code = http.StatusOK
		}

		header := make(http.Header)
		header.Set("Content-Type", "application/json")

		return &http.Response{
			StatusCode: code,
			Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
			Header:     header,
			Body:       io.NopCloser(strings.NewReader(s.Body)),
			Request:    req,
		}, nil
	}

	return nil, fmt.Errorf("testkit: unexpected outgoing HTTP call %s %s — no matching stub", req.Method, req.URL)
}

// Calls returns how many times the stub was hit.
func (s *Stub) Calls() int { return s.calls }

// AssertAllCalled fails the test if any registered stub was never triggered.
func (mt *MockTransport) AssertAllCalled(t *testing.T) {
	t.Helper()
	mt.mu.Lock()
	defer mt.mu.Unlock()

	for _, s := range mt.stubs {
		assert.Greaterf(t, s.calls, 0,
			"stub %s %s was never called", s.Method, s.Path)
	}
}
