package suite

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/harrison/artcheck/internal/models"
)

// Markdown suite layout: a level-1 "Suite: <name>" heading, then one
// level-2 "Case N: <name>" heading per test case, each followed by a
// fenced yaml block holding the case fields (the case name comes from the
// heading).
var (
	suiteHeadingRegex = regexp.MustCompile(`^Suite:\s*(.+)$`)
	caseHeadingRegex  = regexp.MustCompile(`^Case\s+\d+:\s*(.+)$`)
)

// markdownCase mirrors models.TestCase minus the name, which the heading
// supplies.
type markdownCase struct {
	Description    string              `yaml:"description"`
	Packages       string              `yaml:"packages"`
	Artifacts      models.ArtifactSpec `yaml:"artifacts,omitempty"`
	ExpectedReport []string            `yaml:"expected_report"`
	Iterations     int                 `yaml:"iterations,omitempty"`
}

// loadMarkdown parses a Markdown suite file.
func loadMarkdown(path string) (*Suite, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	s := &Suite{}
	var currentCase string // name from the open Case heading, "" when none

	walkErr := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			headingText := extractText(node, source)
			switch node.Level {
			case 1:
				if m := suiteHeadingRegex.FindStringSubmatch(headingText); m != nil {
					s.Name = strings.TrimSpace(m[1])
				}
			case 2:
				m := caseHeadingRegex.FindStringSubmatch(headingText)
				if m == nil {
					currentCase = ""
					return ast.WalkContinue, nil
				}
				currentCase = strings.TrimSpace(m[1])
			}

		case *ast.FencedCodeBlock:
			if currentCase == "" {
				return ast.WalkContinue, nil
			}
			if lang := string(node.Language(source)); lang != "yaml" && lang != "yml" {
				return ast.WalkContinue, nil
			}

			tc, err := parseCaseBlock(currentCase, blockContent(node, source))
			if err != nil {
				return ast.WalkStop, err
			}
			s.Cases = append(s.Cases, tc)
			currentCase = "" // one block per case heading
		}

		return ast.WalkContinue, nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return s, nil
}

// parseCaseBlock decodes one case's yaml block with strict fields.
func parseCaseBlock(name string, block []byte) (models.TestCase, error) {
	var mc markdownCase
	decoder := yaml.NewDecoder(bytes.NewReader(block))
	decoder.KnownFields(true)
	if err := decoder.Decode(&mc); err != nil {
		return models.TestCase{}, fmt.Errorf("case %q: failed to parse yaml block: %w", name, err)
	}

	return models.TestCase{
		Name:           name,
		Description:    mc.Description,
		Packages:       models.PackageRequest(mc.Packages),
		Artifacts:      mc.Artifacts,
		ExpectedReport: mc.ExpectedReport,
		Iterations:     mc.Iterations,
	}, nil
}

// blockContent re-joins a fenced code block's line segments.
func blockContent(node *ast.FencedCodeBlock, source []byte) []byte {
	var buf bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}

// extractText extracts the plain text of an AST node's children.
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return buf.String()
}
