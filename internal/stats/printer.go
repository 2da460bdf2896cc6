package stats

import (
	"fmt"
	"io"
	"strings"
)

// minifyFilter keeps only the codes from filter that actually appear in
// messages (spec §4.6: "the filter is first minified to only codes
// actually seen").
func minifyFilter(messages []string, filter []string) []string {
	if len(filter) == 0 {
		return nil
	}
	present := map[string]bool{}
	for _, msg := range messages {
		if m := codeRE.FindStringSubmatch(msg); m != nil {
			present[strings.TrimPrefix(m[1], "E")] = true
		}
	}
	var kept []string
	for _, code := range filter {
		if present[code] {
			kept = append(kept, code)
		}
	}
	return kept
}

// matchesFilter reports whether msg carries a code on the filter list.
// Matching is structural (spec §4.6): search for "[" + "E" + digits
// equal to a filter entry + "]".
func matchesFilter(msg string, filter []string) bool {
	m := codeRE.FindStringSubmatch(msg)
	if m == nil {
		return false
	}
	digits := strings.TrimPrefix(m[1], "E")
	for _, code := range filter {
		if digits == code {
			return true
		}
	}
	return false
}

// PrintErrors writes every error message to w, honoring mute and an
// optional error-code filter (spec §4.6). Must be called after
// Finalize so messages are in offset order.
func (c *Collector) PrintErrors(w io.Writer, mute bool, errorCodeFilter []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mute {
		return
	}
	if c.Err.FatalMessage != "" {
		fmt.Fprintln(w, c.Err.FatalMessage)
	}

	filter := minifyFilter(c.Err.Messages, errorCodeFilter)
	for _, msg := range c.Err.Messages {
		if len(errorCodeFilter) > 0 && !matchesFilter(msg, filter) {
			continue
		}
		fmt.Fprintln(w, msg)
	}
}
