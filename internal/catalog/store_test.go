package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "patterns.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddAndGet(t *testing.T) {
	s := openTestStore(t)

	added, err := s.Add(AddParams{
		Name:     "Scoped child reducers",
		Category: "composition",
		Summary:  "Split a monolithic reducer into scoped children",
		Content:  "Long form write-up about scoping.",
		Source:   "docs/scoping.md",
	})
	require.NoError(t, err)
	require.NotEmpty(t, added.ID)
	assert.NotEmpty(t, added.CreatedAt)

	got, err := s.Get(added.ID)
	require.NoError(t, err)
	assert.Equal(t, added.Name, got.Name)
	assert.Equal(t, "composition", got.Category)
	assert.Equal(t, added.Content, got.Content)
}

func TestAdd_Validation(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Add(AddParams{Name: "", Content: "x"})
	require.Error(t, err)

	_, err = s.Add(AddParams{Name: "x", Content: "  "})
	require.Error(t, err)

	p, err := s.Add(AddParams{Name: "x", Content: "y"})
	require.NoError(t, err)
	assert.Equal(t, "general", p.Category, "empty category must default")
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_FilterByCategory(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Add(AddParams{Name: "a", Content: "x", Category: "composition"})
	require.NoError(t, err)
	_, err = s.Add(AddParams{Name: "b", Content: "x", Category: "dependencies"})
	require.NoError(t, err)

	all, err := s.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	comp, err := s.List("composition")
	require.NoError(t, err)
	require.Len(t, comp, 1)
	assert.Equal(t, "a", comp[0].Name)
}

func TestSearch_RanksMatches(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Add(AddParams{
		Name:    "Dependency client",
		Content: "Group injected closures into a dependency client struct.",
	})
	require.NoError(t, err)
	_, err = s.Add(AddParams{
		Name:    "Unrelated",
		Content: "Nothing to see here.",
	})
	require.NoError(t, err)

	results, err := s.Search("dependency client", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Dependency client", results[0].Name)
}

func TestSearch_OperatorsAreLiteral(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Add(AddParams{Name: "sample", Content: "plain text"})
	require.NoError(t, err)

	// FTS5 operator characters in user input must not break the query.
	_, err = s.Search(`text AND "unclosed`, 10)
	require.NoError(t, err)
}

func TestSearch_EmptyQuery(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Search("   ", 10)
	require.Error(t, err)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	p, err := s.Add(AddParams{Name: "a", Content: "x"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(p.ID))
	_, err = s.Get(p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleted patterns must leave the search index too.
	results, err := s.Search("a", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	assert.ErrorIs(t, s.Delete(p.ID), ErrNotFound)
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	for _, cat := range []string{"composition", "composition", "dependencies"} {
		_, err := s.Add(AddParams{Name: "p", Content: "x", Category: cat})
		require.NoError(t, err)
	}

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalPatterns)
	assert.Equal(t, 2, st.ByCategory["composition"])
	assert.Equal(t, 1, st.ByCategory["dependencies"])
}

func TestOpen_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "patterns.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestImportMarkdown(t *testing.T) {
	s := openTestStore(t)
	dir := t.TempDir()

	doc := `# Scoped child reducers

Split a monolithic reducer into scoped children.

More detail below.
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scoping.md"), []byte(doc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "headless.md"), []byte("no heading here\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("# ignored\n"), 0o644))

	res, err := s.ImportMarkdown(dir, "composition")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Skipped[0], "headless.md")

	patterns, err := s.List("composition")
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "Scoped child reducers", patterns[0].Name)
	assert.Equal(t, "Split a monolithic reducer into scoped children.", patterns[0].Summary)
}

func TestImportMarkdown_Recursive(t *testing.T) {
	s := openTestStore(t)
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "deep.md"), []byte("# Deep pattern\n\nBody.\n"), 0o644))

	res, err := s.ImportMarkdown(dir, "general")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
}

func TestImportMarkdown_MissingDir(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ImportMarkdown(filepath.Join(t.TempDir(), "absent"), "general")
	require.Error(t, err)
}
