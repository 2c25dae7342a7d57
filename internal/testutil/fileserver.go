// Package testutil provides helpers for deterministic data file tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/geodata"
)

// Response defines a fixed HTTP reply for a path.
type Response struct {
	Status int
	Body   []byte
}

// FileServer serves fixed responses by path over HTTP.
type FileServer struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]Response
	hits      map[string]int
}

// StartFileServer starts a file server on a random port. It is closed when
// the test finishes.
func StartFileServer(t *testing.T, responses map[string]Response) *FileServer {
	t.Helper()

	srv := &FileServer{
		responses: make(map[string]Response, len(responses)),
		hits:      make(map[string]int),
	}
	for path, resp := range responses {
		srv.responses[path] = resp
	}
	srv.Server = httptest.NewServer(http.HandlerFunc(srv.serve))
	t.Cleanup(srv.Close)
	return srv
}

// FileURL returns the absolute URL of path on the server.
func (s *FileServer) FileURL(path string) string {
	return s.URL + path
}

// Hits returns how many requests were made for path.
func (s *FileServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *FileServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	resp, ok := s.responses[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if resp.Status != 0 {
		w.WriteHeader(resp.Status)
	}
	_, _ = w.Write(resp.Body)
}

// List returns a successful response carrying an encoded list of kind.
func List(t *testing.T, kind geodata.Kind, codes ...string) Response {
	t.Helper()
	return Response{Body: EncodeList(t, kind, codes...)}
}

// EncodeList encodes a list message of kind with one entry per code.
func EncodeList(t *testing.T, kind geodata.Kind, codes ...string) []byte {
	t.Helper()
	data, err := geodata.Encode(kind, codes...)
	if err != nil {
		t.Fatalf("encode %s list: %v", kind, err)
	}
	return data
}
