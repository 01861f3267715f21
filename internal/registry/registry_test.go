package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Smith-Tools/archlint/internal/decl"
	"github.com/Smith-Tools/archlint/internal/rule"
	"github.com/Smith-Tools/archlint/internal/source"
)

type builtinStub struct {
	id string
}

func (r *builtinStub) ID() string                          { return r.id }
func (r *builtinStub) Name() string                        { return "stub-" + r.id }
func (r *builtinStub) Check(d *decl.Info) []rule.Violation { return nil }

// writeProvider creates <rulesDir>/<name>/rule as an executable shell
// script.
func writeProvider(t *testing.T, rulesDir, name, script string) {
	t.Helper()
	dir := filepath.Join(rulesDir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rule"), []byte(script), 0o755))
}

// describeScript answers --describe with the given identity and emits
// the given check output otherwise.
func describeScript(id, name, checkOut string) string {
	return fmt.Sprintf(`#!/bin/sh
if [ "$1" = "--describe" ]; then
  printf '{"id":%q,"name":%q}'
  exit 0
fi
cat > /dev/null
printf '%s'
`, id, name, checkOut)
}

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("provider scripts require a POSIX shell")
	}
}

func TestLoad_BuiltinsOnly(t *testing.T) {
	rule.Reset()
	defer rule.Reset()
	rule.Register(&builtinStub{id: "B1"})

	res, err := Load(Options{})
	require.NoError(t, err)
	require.Len(t, res.Rules, 1)
	assert.Equal(t, "B1", res.Rules[0].ID())
	assert.Empty(t, res.Warnings)
}

func TestLoad_ExternalProviders(t *testing.T) {
	requireUnix(t)
	rule.Reset()
	defer rule.Reset()
	rule.Register(&builtinStub{id: "B1"})

	rulesDir := t.TempDir()
	writeProvider(t, rulesDir, "zeta", describeScript("EXT002", "ext-zeta", "[]"))
	writeProvider(t, rulesDir, "alpha", describeScript("EXT001", "ext-alpha", "[]"))

	res, err := Load(Options{RulesDir: rulesDir})
	require.NoError(t, err)
	require.Len(t, res.Rules, 3)
	// Built-ins first, then providers in directory-name order.
	assert.Equal(t, "B1", res.Rules[0].ID())
	assert.Equal(t, "EXT001", res.Rules[1].ID())
	assert.Equal(t, "EXT002", res.Rules[2].ID())
	assert.Equal(t, "ext-alpha", res.Rules[1].Name())
	assert.Empty(t, res.Warnings)
}

func TestLoad_MissingRulesDirIsWarning(t *testing.T) {
	rule.Reset()
	defer rule.Reset()
	rule.Register(&builtinStub{id: "B1"})

	res, err := Load(Options{RulesDir: filepath.Join(t.TempDir(), "absent")})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Len(t, res.Rules, 1)
}

func TestLoad_ProviderWithoutExecutableIsWarning(t *testing.T) {
	rule.Reset()
	defer rule.Reset()

	rulesDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(rulesDir, "empty"), 0o755))

	res, err := Load(Options{RulesDir: rulesDir})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Error(), "empty")
	assert.Empty(t, res.Rules)
}

func TestLoad_BadDescribeIsWarning(t *testing.T) {
	requireUnix(t)
	rule.Reset()
	defer rule.Reset()

	rulesDir := t.TempDir()
	writeProvider(t, rulesDir, "garbled", "#!/bin/sh\nprintf 'not json'\n")

	res, err := Load(Options{RulesDir: rulesDir})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Empty(t, res.Rules)
}

func TestLoad_DescribeMissingID(t *testing.T) {
	requireUnix(t)
	rule.Reset()
	defer rule.Reset()

	rulesDir := t.TempDir()
	writeProvider(t, rulesDir, "anon", describeScript("", "nameless", "[]"))

	res, err := Load(Options{RulesDir: rulesDir})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
}

func TestLoad_DuplicateIDIsFatal(t *testing.T) {
	requireUnix(t)
	rule.Reset()
	defer rule.Reset()
	rule.Register(&builtinStub{id: "AR900"})

	rulesDir := t.TempDir()
	writeProvider(t, rulesDir, "clash", describeScript("AR900", "clashing", "[]"))

	_, err := Load(Options{RulesDir: rulesDir})
	require.Error(t, err)
	var dup *DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "AR900", dup.ID)
}

func sampleDecl(t *testing.T) *decl.Info {
	t.Helper()
	u, err := source.Parse("Feature.swift", []byte(`
struct Feature: Reducer {
    struct State {
        var a: Int
    }
}
`))
	require.NoError(t, err)
	infos := decl.Extract(u, "Reducer")
	require.Len(t, infos, 1)
	return infos[0]
}

func TestExternalRule_Check(t *testing.T) {
	requireUnix(t)
	rule.Reset()
	defer rule.Reset()

	rulesDir := t.TempDir()
	out := `[{"severity":"high","line":7,"message":"external says no","recommendation":"do less"}]`
	writeProvider(t, rulesDir, "sample", describeScript("EXT001", "ext-sample", out))

	res, err := Load(Options{RulesDir: rulesDir})
	require.NoError(t, err)
	require.Len(t, res.Rules, 1)

	vs := res.Rules[0].Check(sampleDecl(t))
	require.Len(t, vs, 1)
	assert.Equal(t, "EXT001", vs[0].RuleID)
	assert.Equal(t, "ext-sample", vs[0].RuleName)
	assert.Equal(t, "Feature.swift", vs[0].File)
	assert.Equal(t, 7, vs[0].Line)
	assert.Equal(t, rule.High, vs[0].Severity)
	assert.Equal(t, "external says no", vs[0].Message)
	assert.Equal(t, "do less", vs[0].Recommendation)
}

func TestExternalRule_DefaultsOnLooseOutput(t *testing.T) {
	requireUnix(t)
	rule.Reset()
	defer rule.Reset()

	rulesDir := t.TempDir()
	out := `[{"severity":"blocker","message":"odd"}]`
	writeProvider(t, rulesDir, "loose", describeScript("EXT001", "ext-loose", out))

	res, err := Load(Options{RulesDir: rulesDir})
	require.NoError(t, err)

	d := sampleDecl(t)
	vs := res.Rules[0].Check(d)
	require.Len(t, vs, 1)
	// Unknown severity degrades to medium; a missing line falls back
	// to the declaration's line.
	assert.Equal(t, rule.Medium, vs[0].Severity)
	assert.Equal(t, d.SourceLine, vs[0].Line)
}

func TestExternalRule_CrashYieldsNoViolations(t *testing.T) {
	requireUnix(t)
	rule.Reset()
	defer rule.Reset()

	rulesDir := t.TempDir()
	script := `#!/bin/sh
if [ "$1" = "--describe" ]; then
  printf '{"id":"EXT001","name":"ext-crash"}'
  exit 0
fi
exit 3
`
	writeProvider(t, rulesDir, "crash", script)

	res, err := Load(Options{RulesDir: rulesDir})
	require.NoError(t, err)

	vs := res.Rules[0].Check(sampleDecl(t))
	assert.Empty(t, vs)
}
