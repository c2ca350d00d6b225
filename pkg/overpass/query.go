package overpass

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/samvad-hq/overpass-harvester/pkg/httpclient"
)

// Query posts the query text to <base>/api/interpreter and returns the
// response body unmodified. Failures are returned as *QueryError and are
// never retried here.
func (c *Client) Query(ctx context.Context, base, query string) (string, error) {
	url := endpoint(base, interpreterPath)
	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}

	resp, err := c.http.Post(ctx, url, []byte(query), headers)
	if err != nil {
		return "", &QueryError{URL: url, Err: err}
	}
	if !httpclient.IsSuccess(resp) {
		qerr := &QueryError{
			URL:        url,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Message:    errorMessage(resp.Body()),
		}
		c.log.ErrorObj("overpass query failed", "query_error", map[string]any{
			"url":         url,
			"status_code": qerr.StatusCode,
			"message":     qerr.Message,
		})
		return "", qerr
	}

	body := resp.Body()
	if !utf8.Valid(body) {
		return "", fmt.Errorf("decode overpass response: %w", ErrInvalidEncoding)
	}
	c.log.DebugObj("overpass query completed", "query_result", map[string]any{
		"url":   url,
		"bytes": len(body),
	})
	return string(body), nil
}
