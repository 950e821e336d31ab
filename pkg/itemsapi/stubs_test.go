package itemsapi

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/samvad-hq/mercari-items-client/pkg/httpclient"
)

// countingResponse implements httpclient.Response and counts body reads.
type countingResponse struct {
	body       []byte
	statusCode int
	header     http.Header
	bodyReads  atomic.Int32
}

func (r *countingResponse) Body() []byte {
	r.bodyReads.Add(1)
	return r.body
}
func (r *countingResponse) StatusCode() int     { return r.statusCode }
func (r *countingResponse) Header() http.Header { return r.header }

type getResult struct {
	resp *countingResponse
	err  error
}

// stubTransport answers GETs from a url-keyed table and records every call.
type stubTransport struct {
	mu       sync.Mutex
	gets     map[string]getResult
	calls    []string
	headers  []map[string]string
	forms    []httpclient.MultipartForm
	postResp *countingResponse
	postErr  error
}

func (s *stubTransport) Get(_ context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, "GET "+url)
	s.headers = append(s.headers, headers)
	res, ok := s.gets[url]
	s.mu.Unlock()

	if !ok {
		return &countingResponse{statusCode: http.StatusNotFound}, nil
	}
	if res.err != nil {
		return nil, res.err
	}
	return res.resp, nil
}

func (s *stubTransport) PostMultipart(_ context.Context, url string, form httpclient.MultipartForm, _ map[string]string) (httpclient.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, "POST "+url)
	s.forms = append(s.forms, form)
	s.mu.Unlock()

	if s.postErr != nil {
		return nil, s.postErr
	}
	return s.postResp, nil
}

func (s *stubTransport) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func jsonResponse(body string) *countingResponse {
	return &countingResponse{
		body:       []byte(body),
		statusCode: http.StatusOK,
		header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func imageResponse(data []byte) *countingResponse {
	return &countingResponse{
		body:       data,
		statusCode: http.StatusOK,
		header:     http.Header{"Content-Type": []string{"image/jpeg"}},
	}
}
