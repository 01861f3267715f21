package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ImportResult summarizes one ImportMarkdown call.
type ImportResult struct {
	Imported int
	Skipped  []string
}

// ImportMarkdown walks dir recursively and adds one pattern per
// Markdown file: the first heading becomes the name, the first
// paragraph the summary, the whole document the content. Files without
// a heading are skipped and reported, not fatal.
func (s *Store) ImportMarkdown(dir, category string) (*ImportResult, error) {
	res := &ImportResult{}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("%s: %v", path, err))
			return nil
		}

		name, summary := markdownHead(data)
		if name == "" {
			res.Skipped = append(res.Skipped, fmt.Sprintf("%s: no heading", path))
			return nil
		}

		if _, err := s.Add(AddParams{
			Name:     name,
			Category: category,
			Summary:  summary,
			Content:  string(data),
			Source:   path,
		}); err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("%s: %v", path, err))
			return nil
		}
		res.Imported++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", dir, err)
	}
	return res, nil
}

// markdownHead parses the document and extracts the first heading text
// and the first paragraph following it.
func markdownHead(src []byte) (heading, summary string) {
	reader := text.NewReader(src)
	doc := goldmark.DefaultParser().Parse(reader)

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if heading == "" {
				heading = nodeText(node, src)
			}
		case *ast.Paragraph:
			if heading != "" && summary == "" {
				summary = nodeText(node, src)
				return heading, summary
			}
		}
	}
	return heading, summary
}

// nodeText concatenates the raw text segments beneath a node.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := child.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
