package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract. The body is read off the wire
// once; Body returns the buffered bytes.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// FilePart is a binary part of a multipart form.
type FilePart struct {
	FileName string
	Content  []byte
}

// MultipartForm is a multipart/form-data body. Field names are unique across
// Fields and Files.
type MultipartForm struct {
	Fields map[string]string
	Files  map[string]FilePart
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	PostMultipart(ctx context.Context, url string, form MultipartForm, headers map[string]string) (Response, error)
}
