package itemsapi

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/mercari-items-client/pkg/httpclient"
)

var (
	// ErrInvalidInput marks a CreateItemInput rejected before any request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidImageReference marks an image name that is empty or not a bare filename.
	ErrInvalidImageReference = errors.New("invalid image reference")
)

const maxSnippetLen = 512

// TransportError reports a failed request: either the network call failed
// (StatusCode is 0 and Err is set) or the server answered with a non-2xx status.
type TransportError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("%s: %s %s: status %d", e.Op, e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s %s: status %d body: %s", e.Op, e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that does not have the expected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

func newStatusError(op, method, url string, resp httpclient.Response, body []byte) *TransportError {
	return &TransportError{
		Op:         op,
		Method:     method,
		URL:        url,
		StatusCode: resp.StatusCode(),
		Body:       bodySnippet(resp, body),
	}
}

// bodySnippet trims body for error messages. HTML error pages are reduced to their text.
func bodySnippet(resp httpclient.Response, body []byte) string {
	if len(body) == 0 {
		return ""
	}

	text := ""
	if isHTML(resp) {
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
			text = strings.Join(strings.Fields(doc.Text()), " ")
		}
	}
	if text == "" {
		text = strings.TrimSpace(string(body))
	}
	if len(text) > maxSnippetLen {
		text = text[:maxSnippetLen] + "..."
	}
	return text
}

func isHTML(resp httpclient.Response) bool {
	if resp == nil || resp.Header() == nil {
		return false
	}
	mt, _, err := mime.ParseMediaType(resp.Header().Get("Content-Type"))
	return err == nil && mt == "text/html"
}
