// Package parser extracts pod-like annotated sections from raw document text.
package parser

import (
	"regexp"
	"strings"

	"github.com/starford/perthro/internal/models"
)

// markerRe matches an opener or closer line: a `=` or `@=` prefix, a word
// token, and an optional argument separated by horizontal whitespace.
var markerRe = regexp.MustCompile(`^(@?=)([A-Za-z0-9_]+)(?:[ \t]+(.*))?$`)

// cutToken closes the nearest open block of the matching prefix.
const cutToken = "cut"

// marker is one decoded marker line.
type marker struct {
	prefix string // "=" or "@="
	token  string
	arg    string
}

// parseMarker decodes line as a marker. Lines that do not start with a
// marker prefix followed by a word token are not markers.
func parseMarker(line string) (marker, bool) {
	m := markerRe.FindStringSubmatch(line)
	if m == nil {
		return marker{}, false
	}
	return marker{
		prefix: m[1],
		token:  m[2],
		arg:    strings.TrimSpace(m[3]),
	}, true
}

// pending is the single currently-open block. Only one block is open for
// capture purposes at any time; the scanner does not track deeper nesting.
type pending struct {
	opener marker
	body   []string
}

// Parse scans text top to bottom and returns every closed marker block in
// the order blocks close. Parse is total: malformed, unterminated, or
// unmatched markers are dropped silently, never reported as errors.
//
// Grammar summary:
//   - `=token` or `=token argument` opens a block; `=cut` closes it.
//   - `@=token` … `@=cut` is an equivalent alternate form; each prefix
//     only closes blocks opened with the same prefix.
//   - inside an open block, a line starting with `+=` or `+@=` is captured
//     as content with the leading `+` stripped (single escape level).
//   - a same-prefix opener while a block is open replaces the pending
//     block; the abandoned opener yields no record.
func Parse(text string) []models.Section {
	var (
		out  []models.Section
		open *pending
		next = 1
	)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSuffix(raw, "\r")

		if open == nil {
			if m, ok := parseMarker(line); ok && m.token != cutToken {
				open = &pending{opener: m}
			}
			// Text outside any block is discarded.
			continue
		}

		// Escaped marker line: capture with one prefix level removed.
		if strings.HasPrefix(line, "+=") || strings.HasPrefix(line, "+@=") {
			open.body = append(open.body, line[1:])
			continue
		}

		if m, ok := parseMarker(line); ok && m.prefix == open.opener.prefix {
			if m.token == cutToken {
				out = append(out, buildSection(open, next))
				next++
				open = nil
			} else {
				// Later opener replaces the pending one; no stacking.
				open = &pending{opener: m}
			}
			continue
		}

		// Everything else, including marker lines of the other prefix,
		// is body content of the open block.
		open.body = append(open.body, line)
	}

	// An opener with no closer before end of input yields no record.
	return out
}

// buildSection converts the pending block into a Section record.
func buildSection(p *pending, index int) models.Section {
	s := models.Section{
		Index: index,
		Data:  trimEdgeBlanks(p.body),
	}
	if p.opener.arg != "" {
		s.List = p.opener.token
		s.Name = p.opener.arg
	} else {
		s.Name = p.opener.token
	}
	return s
}

// trimEdgeBlanks removes all contiguous blank lines from both ends of the
// captured body. Internal blank lines are preserved.
func trimEdgeBlanks(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}
