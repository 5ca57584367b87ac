package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/enunezf/dbsanitize/internal/core/domain"
	"github.com/enunezf/dbsanitize/internal/core/ports"
	"github.com/enunezf/dbsanitize/internal/security"
)

const coreRules = `sanitize:
  core:
    users:
      description: Sanitize users
      query: UPDATE users SET pass = ''
    node:
      description: Sanitize nodes
      query: TRUNCATE TABLE node
`

type fakeDB struct {
	tables  []string
	listErr error
	pingErr error
	opened  int
	pinged  int
	closed  int
}

func (f *fakeDB) ListTables(_ context.Context) ([]string, error) { return f.tables, f.listErr }
func (f *fakeDB) Connect(_ context.Context) error { return nil }
func (f *fakeDB) Ping(_ context.Context) error { f.pinged++; return f.pingErr }
func (f *fakeDB) Close() error { f.closed++; return nil }
func (f *fakeDB) GetServerInfo(_ context.Context) (*domain.ServerInfo, error) {
	return &domain.ServerInfo{Version: "Microsoft SQL Server 2022\n\tCopyright", Database: "drupal"}, nil
}

func newTestApp(tables ...string) (*app, *fakeDB) {
	db := &fakeDB{tables: tables}
	a := newApp()
	a.isTerminal = func() bool { return false }
	a.openDatabase = func(_ context.Context, _ *domain.ConnectionConfig, _ *zap.Logger) (ports.DatabasePort, error) {
		db.opened++
		return db, nil
	}
	return a, db
}

var connFlags = []string{"--server", "localhost", "--database", "drupal", "--user", "sa", "--password", "secret"}

func run(t *testing.T, a *app, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd(a)
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, connFlags...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeRules(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyze_ReportsMissingTables(t *testing.T) {
	a, db := newTestApp("node", "users", "users_log", "cache_foo")
	rules := writeRules(t, t.TempDir(), "database.sanitize.yml", coreRules)

	stdout, _, err := run(t, a, "", "analyze", "--file", rules, "--list")

	require.NoError(t, err)
	assert.Contains(t, stdout, "There are 2 tables not defined on sanitize YML files")
	assert.Contains(t, stdout, "users_log\ncache_foo\n")
	assert.Equal(t, 1, db.opened)
	assert.Equal(t, 1, db.closed)
}

func TestAnalyze_WithoutListOmitsNames(t *testing.T) {
	a, _ := newTestApp("node", "users", "users_log")
	rules := writeRules(t, t.TempDir(), "database.sanitize.yml", coreRules)

	stdout, _, err := run(t, a, "", "analyze", "--file", rules)

	require.NoError(t, err)
	assert.Contains(t, stdout, "There are 1 tables not defined on sanitize YML files")
	assert.NotContains(t, stdout, "users_log")
}

func TestAnalyze_AllCovered(t *testing.T) {
	a, _ := newTestApp("node", "users")
	rules := writeRules(t, t.TempDir(), "database.sanitize.yml", coreRules)

	stdout, _, err := run(t, a, "", "dbsa", "--file", rules)

	require.NoError(t, err)
	assert.Contains(t, stdout, "All database tables are already specified in sanitize YML files")
}

func TestCommandAliases(t *testing.T) {
	rules := writeRules(t, t.TempDir(), "database.sanitize.yml", coreRules)

	for _, name := range []string{"analyze", "sanitize-analyze", "db-sanitize-analyze", "dbsa"} {
		t.Run(name, func(t *testing.T) {
			a, _ := newTestApp("node", "users", "users_log")
			stdout, _, err := run(t, a, "", name, "--file", rules)
			require.NoError(t, err)
			assert.Contains(t, stdout, "There are 1 tables not defined")
		})
	}

	for _, name := range []string{"generate", "sanitize-generate", "db-sanitize-generate", "dbsg"} {
		t.Run(name, func(t *testing.T) {
			a, _ := newTestApp("node", "users", "users_log")
			stdout, _, err := run(t, a, "", name, "--file", rules, "-m", "my_module")
			require.NoError(t, err)
			assert.Contains(t, stdout, "TRUNCATE TABLE users_log")
		})
	}
}

func TestAnalyze_MissingFileNeverConnects(t *testing.T) {
	a, db := newTestApp("node")

	_, _, err := run(t, a, "", "analyze", "--file", filepath.Join(t.TempDir(), "nope.yml"))

	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "does not exist")
	assert.Zero(t, db.opened)
}

func TestAnalyze_MalformedFile(t *testing.T) {
	a, db := newTestApp("node")
	rules := writeRules(t, t.TempDir(), "database.sanitize.yml", "sanitize: [unclosed")

	_, _, err := run(t, a, "", "analyze", "--file", rules)

	assert.True(t, domain.IsParseError(err))
	assert.Zero(t, db.opened)
}

func TestAnalyze_DiscoversRuleFiles(t *testing.T) {
	a, _ := newTestApp("node", "users", "watchdog")
	root := t.TempDir()
	module := filepath.Join(root, "custom", "core")
	require.NoError(t, os.MkdirAll(module, 0o755))
	writeRules(t, module, "core.sanitize.yml", coreRules)
	writeRules(t, root, "dblog.sanitize.yml", "sanitize:\n  dblog:\n    watchdog:\n      description: Logs\n      query: TRUNCATE TABLE watchdog\n")

	stdout, _, err := run(t, a, "", "analyze", "--search-path", root)

	require.NoError(t, err)
	assert.Contains(t, stdout, "All database tables are already specified")
}

func TestAnalyze_PromptsOnTerminal(t *testing.T) {
	a, _ := newTestApp("node", "users", "users_log")
	a.isTerminal = func() bool { return true }
	rules := writeRules(t, t.TempDir(), "database.sanitize.yml", coreRules)

	stdout, stderr, err := run(t, a, rules+"\n", "analyze")

	require.NoError(t, err)
	assert.Contains(t, stderr, "full path to a sanitize YML file")
	assert.Contains(t, stdout, "There are 1 tables not defined")
}

func TestAnalyze_InvalidConnectionConfig(t *testing.T) {
	a, db := newTestApp("node")
	rules := writeRules(t, t.TempDir(), "database.sanitize.yml", coreRules)

	_, _, err := run(t, a, "", "analyze", "--file", rules, "--driver", "oracle")

	assert.True(t, domain.IsConfigurationError(err))
	assert.Zero(t, db.opened)
}

func TestAnalyze_IntrospectionError(t *testing.T) {
	a, db := newTestApp()
	db.listErr = errors.New("permission denied")
	rules := writeRules(t, t.TempDir(), "database.sanitize.yml", coreRules)

	_, _, err := run(t, a, "", "analyze", "--file", rules)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.False(t, domain.IsConfigurationError(err))
}

func TestGenerate_ToStdout(t *testing.T) {
	a, _ := newTestApp("node", "users", "users_log", "cache_foo")
	rules := writeRules(t, t.TempDir(), "database.sanitize.yml", coreRules)

	stdout, stderr, err := run(t, a, "", "generate", "--file", rules, "--machine-name", "my_module")

	require.NoError(t, err)
	assert.Contains(t, stderr, "There are 2 tables not defined")

	var doc map[string]map[string]map[string]domain.Rule
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "TRUNCATE TABLE users_log", doc["sanitize"]["my_module"]["users_log"].Query)
	assert.Equal(t, "TRUNCATE TABLE cache_foo", doc["sanitize"]["my_module"]["cache_foo"].Query)
	assert.Less(t, strings.Index(stdout, "users_log"), strings.Index(stdout, "cache_foo"))
}

func TestGenerate_JSON(t *testing.T) {
	a, _ := newTestApp("node", "users", "users_log")
	rules := writeRules(t, t.TempDir(), "database.sanitize.yml", coreRules)

	stdout, _, err := run(t, a, "", "dbsg", "--file", rules, "-m", "my_module", "--format", "json")

	require.NoError(t, err)
	assert.Contains(t, stdout, `"query": "TRUNCATE TABLE users_log"`)
}

func TestGenerate_NothingMissing(t *testing.T) {
	a, _ := newTestApp("node", "users")
	rules := writeRules(t, t.TempDir(), "database.sanitize.yml", coreRules)

	stdout, stderr, err := run(t, a, "", "generate", "--file", rules, "--machine-name", "my_module")

	require.NoError(t, err)
	assert.Contains(t, stdout, "All database tables are already specified")
	assert.NotContains(t, stderr, "All database tables")
}

func TestGenerate_RequiresMachineName(t *testing.T) {
	a, db := newTestApp("node")
	rules := writeRules(t, t.TempDir(), "database.sanitize.yml", coreRules)

	_, _, err := run(t, a, "", "generate", "--file", rules)

	assert.True(t, domain.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "machine name")
	assert.Zero(t, db.opened)
}

func TestGenerate_WritesNewOutputFile(t *testing.T) {
	a, _ := newTestApp("node", "users", "users_log")
	dir := t.TempDir()
	rules := writeRules(t, dir, "database.sanitize.yml", coreRules)
	output := filepath.Join(dir, "generated.sanitize.yml")

	stdout, stderr, err := run(t, a, "", "generate", "--file", rules, "-m", "my_module", "-o", output)

	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "1 sanitize entries written")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TRUNCATE TABLE users_log")
}

func TestGenerate_RefusesOverwriteWithoutConfirmation(t *testing.T) {
	a, _ := newTestApp("node", "users", "users_log")
	dir := t.TempDir()
	rules := writeRules(t, dir, "database.sanitize.yml", coreRules)
	output := writeRules(t, dir, "notes.txt", "keep me")

	_, _, err := run(t, a, "", "generate", "--file", rules, "-m", "my_module", "-o", output)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "operation cancelled")
	data, _ := os.ReadFile(output)
	assert.Equal(t, "keep me", string(data))
}

func TestGenerate_OverwriteWithYes(t *testing.T) {
	a, _ := newTestApp("node", "users", "users_log")
	dir := t.TempDir()
	rules := writeRules(t, dir, "database.sanitize.yml", coreRules)
	output := writeRules(t, dir, "notes.txt", "keep me")

	_, _, err := run(t, a, "", "generate", "--file", rules, "-m", "my_module", "-o", output, "--yes")

	require.NoError(t, err)
	data, _ := os.ReadFile(output)
	assert.Contains(t, string(data), "users_log")
}

func TestGenerate_DryRunWritesNothing(t *testing.T) {
	a, _ := newTestApp("node", "users", "users_log")
	dir := t.TempDir()
	rules := writeRules(t, dir, "database.sanitize.yml", coreRules)
	output := filepath.Join(dir, "generated.sanitize.yml")

	_, stderr, err := run(t, a, "", "generate", "--file", rules, "-m", "my_module", "-o", output, "--dry-run")

	require.NoError(t, err)
	assert.Contains(t, stderr, "DRY-RUN")
	assert.Contains(t, stderr, "TRUNCATE TABLE users_log")
	assert.NoFileExists(t, output)
}

func TestWriteOutput_ExistingRuleFileIsDestructive(t *testing.T) {
	dir := t.TempDir()
	target := writeRules(t, dir, "database.sanitize.yml", coreRules)

	var prompt bytes.Buffer
	approver := security.NewInteractiveApprover(strings.NewReader("y\n"), &prompt)

	written, err := writeOutput(target, []byte("sanitize: {}\n"), approver, false)

	require.Error(t, err)
	assert.False(t, written)
	assert.Contains(t, prompt.String(), "Destructive")
	assert.Contains(t, prompt.String(), "replaces 2 existing sanitize entries")

	approver = security.NewInteractiveApprover(strings.NewReader(security.ConfirmWord+"\n"), &prompt)
	written, err = writeOutput(target, []byte("sanitize: {}\n"), approver, false)

	require.NoError(t, err)
	assert.True(t, written)
	data, _ := os.ReadFile(target)
	assert.Equal(t, "sanitize: {}\n", string(data))
}

func TestWriteOutput_Directory(t *testing.T) {
	_, err := writeOutput(t.TempDir(), []byte("x"), security.NewAutoApprover(true), false)

	assert.True(t, domain.IsConfigurationError(err))
}

func TestConnect(t *testing.T) {
	a, db := newTestApp("node", "users", "users_log")

	stdout, _, err := run(t, a, "", "connect")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Connection successful!")
	assert.Contains(t, stdout, "Microsoft SQL Server 2022")
	assert.NotContains(t, stdout, "Copyright")
	assert.Contains(t, stdout, "drupal")
	assert.Contains(t, stdout, "3")
	assert.Contains(t, stdout, "Password=***")
	assert.NotContains(t, stdout, "secret")
	assert.Equal(t, 1, db.pinged)
	assert.Equal(t, 1, db.closed)
}

func TestConnect_PingFailure(t *testing.T) {
	a, db := newTestApp("node")
	db.pingErr = errors.New("connection reset")

	stdout, _, err := run(t, a, "", "connect")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NotContains(t, stdout, "Connection successful!")
	assert.Equal(t, 1, db.closed)
}
