package overpass

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samvad-hq/overpass-harvester/pkg/httpclient"
)

const (
	slotPrefix      = "Slot available after:"
	availableMarker = "available now"
)

// ErrMalformedSlotLine is returned by ParseStatus when a slot line carries no
// parsable countdown.
var ErrMalformedSlotLine = errors.New("malformed slot line")

// Matches "..., in 12 seconds." as well as a bare "12 seconds".
var slotSecondsRe = regexp.MustCompile(`(-?\d+) seconds`)

// Status is the availability state extracted from an /api/status document.
type Status struct {
	Available   bool
	SlotFound   bool
	SlotSeconds int
}

// Wait returns the number of seconds to sleep before the next query.
// "available now" wins; a slot countdown gets one extra second and never
// drops below one.
func (s Status) Wait() int {
	if s.Available || !s.SlotFound {
		return 0
	}
	wait := s.SlotSeconds + 1
	if wait <= 0 {
		wait = 1
	}
	return wait
}

// ParseStatus scans a status document line by line. Scanning stops at the
// first slot line, so only that one is honored and any "available now" line
// after it is ignored.
func ParseStatus(body string) (Status, error) {
	var st Status
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, slotPrefix) {
			m := slotSecondsRe.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				return st, fmt.Errorf("%w: %q", ErrMalformedSlotLine, line)
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return st, fmt.Errorf("%w: %q: %v", ErrMalformedSlotLine, line, err)
			}
			st.SlotFound = true
			st.SlotSeconds = n
			break
		}
		if strings.Contains(line, availableMarker) {
			st.Available = true
		}
	}
	if err := scanner.Err(); err != nil {
		return st, fmt.Errorf("scan status: %w", err)
	}
	return st, nil
}

// NeedSleep checks <base>/api/status and returns how many seconds to wait
// before querying. Any failure to obtain or read the status resolves to 0.
func (c *Client) NeedSleep(ctx context.Context, base string) int {
	url := endpoint(base, statusPath)

	resp, err := c.http.Get(ctx, url, nil)
	if err != nil {
		c.log.WarnObj("overpass status check failed", "status_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return 0
	}
	if !httpclient.IsSuccess(resp) {
		c.log.WarnObj("overpass status check failed", "status_error", map[string]any{
			"url":         url,
			"status_code": resp.StatusCode(),
		})
		return 0
	}

	st, err := ParseStatus(string(resp.Body()))
	if err != nil {
		c.log.WarnObj("overpass status unreadable", "status_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return 0
	}

	wait := st.Wait()
	c.log.DebugObj("overpass status checked", "status", map[string]any{
		"available":    st.Available,
		"slot_found":   st.SlotFound,
		"slot_seconds": st.SlotSeconds,
		"wait_seconds": wait,
	})
	return wait
}
