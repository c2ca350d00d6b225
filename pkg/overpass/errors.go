package overpass

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrInvalidEncoding marks a successful response whose body is not UTF-8.
var ErrInvalidEncoding = errors.New("response body is not valid utf-8")

const maxSnippetLen = 512

// QueryError reports a failed query submission. Err is set for transport
// failures; StatusCode and Message for HTTP-level failures.
type QueryError struct {
	URL        string
	StatusCode int
	Status     string
	Message    string
	Err        error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("overpass query %s: %v", e.URL, e.Err)
	}
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	if e.Message == "" {
		return fmt.Sprintf("overpass query %s: HTTP %s", e.URL, status)
	}
	return fmt.Sprintf("overpass query %s: HTTP %s: %s", e.URL, status, e.Message)
}

func (e *QueryError) Unwrap() error { return e.Err }

// errorMessage pulls the human-readable reason out of an Overpass error
// page. Overpass renders each error as <p><strong>Error</strong>: ...</p>.
func errorMessage(body []byte) string {
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
		var msgs []string
		doc.Find("p").Each(func(_ int, p *goquery.Selection) {
			label := strings.TrimSpace(p.Find("strong").First().Text())
			if !strings.EqualFold(label, "error") {
				return
			}
			text := strings.TrimSpace(p.Text())
			text = strings.TrimSpace(strings.TrimPrefix(text, label))
			text = strings.TrimSpace(strings.TrimPrefix(text, ":"))
			if text != "" {
				msgs = append(msgs, text)
			}
		})
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return bodySnippet(body)
}

func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippetLen {
		return s[:maxSnippetLen] + "..."
	}
	return s
}
