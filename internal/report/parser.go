// Package report extracts labeled sections from the downloader's combined
// output text. It is a section extractor for a fixed small vocabulary of
// labels, not a general log parser: text outside any recognized section is
// dropped.
package report

import "strings"

// parser states for the section state machine.
type parseState int

const (
	stateIdle parseState = iota
	stateInSection
)

// Parser splits report text into labeled sections. The zero value is not
// usable; construct with NewParser.
type Parser struct {
	labels map[string]bool
}

// NewParser creates a Parser recognizing the given section labels. A line
// whose trimmed content exactly equals a label opens a section.
func NewParser(labels []string) *Parser {
	m := make(map[string]bool, len(labels))
	for _, l := range labels {
		m[l] = true
	}
	return &Parser{labels: m}
}

// ParseSections scans text line by line and returns the recognized sections
// in encounter order, each as the newline-join of its lines (label first).
//
// Transitions: a known label opens a new section (closing any open one), a
// blank line closes the open section, any other non-blank line appends to
// the open section and is ignored when no section is open. A section still
// open at end of input is flushed. Duplicate labels yield separate
// sections; no merging happens.
func (p *Parser) ParseSections(text string) []string {
	var (
		sections []string
		current  []string
		state    = stateIdle
	)

	flush := func() {
		if state == stateInSection {
			sections = append(sections, strings.Join(current, "\n"))
			current = nil
			state = stateIdle
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case p.labels[trimmed]:
			flush()
			current = []string{trimmed}
			state = stateInSection
		case trimmed == "":
			// Closing an already-closed section is a no-op.
			flush()
		case state == stateInSection:
			current = append(current, trimmed)
		default:
			// Diagnostic chatter outside any section; ignored.
		}
	}
	flush()

	return sections
}

// JoinSection builds the canonical pre-joined form of a section from its
// label and entries, matching what ParseSections emits.
func JoinSection(label string, entries ...string) string {
	return strings.Join(append([]string{label}, entries...), "\n")
}
