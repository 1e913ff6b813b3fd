package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/amd2esm/cmd/amd2esm/commands"
	"github.com/Sumatoshi-tech/amd2esm/pkg/config"
)

const (
	amdSource    = "define(['./a'], function(a) {\n  a();\n});\n"
	amdConverted = "import a from './a';\n\n  a();\n"
	plainSource  = "var x = 1;\n"
	namedDefine  = "define('name', [], function() {});\n"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "amd2esm.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logging:\n  level: warn\n"), 0o600))

	var stdout, stderr bytes.Buffer

	cmd := commands.NewRootCommand()
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := commands.NewRootCommand()

	names := make([]string, 0, len(root.Commands()))
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}

	for _, want := range []string{"convert", "check", "diff", "mcp", "version"} {
		assert.Contains(t, names, want)
	}

	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.True(t, root.SilenceUsage)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	res := execute(t, "", "version")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "amd2esm dev"))
}

func TestConvert_Stdin(t *testing.T) {
	t.Parallel()

	res := execute(t, amdSource, "convert", "-")
	require.NoError(t, res.err)
	assert.Equal(t, amdConverted, res.stdout)
}

func TestConvert_StdinFixImportPaths(t *testing.T) {
	t.Parallel()

	src := "define(['./foo.component'], function(fooComponent) {\n  init();\n});\n"

	res := execute(t, src, "convert", "--fix-import-paths", "-")
	require.NoError(t, res.err)
	assert.Equal(t, "import FooComponent from './foo.component.js';\n\n  init();\n", res.stdout)
}

func TestConvert_StdinFailure(t *testing.T) {
	t.Parallel()

	res := execute(t, namedDefine, "convert", "-")
	require.ErrorIs(t, res.err, commands.ErrConversionFailed)
	assert.Empty(t, res.stdout)
}

func TestConvert_StdinWithPaths(t *testing.T) {
	t.Parallel()

	res := execute(t, amdSource, "convert", "-", "a.js")
	require.ErrorIs(t, res.err, commands.ErrStdinWithPaths)
}

func TestConvert_InPlace(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.js"), amdSource)
	writeFile(t, filepath.Join(root, "b.js"), plainSource)

	res := execute(t, "", "convert", "--in-place", root)
	require.NoError(t, res.err)

	assert.Equal(t, amdConverted, readFile(t, filepath.Join(root, "a.js")))
	assert.Equal(t, plainSource, readFile(t, filepath.Join(root, "b.js")))
	assert.Contains(t, res.stdout, "a.js")
	assert.Contains(t, res.stdout, "converted 1, unchanged 1, failed 0, skipped 0")
}

func TestConvert_OutDirWithJSONReport(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(root, "nested", "a.js"), amdSource)

	res := execute(t, "", "convert", "--out-dir", out, "--report", "json", root)
	require.NoError(t, res.err)

	var report struct {
		Total     int `json:"total"`
		Converted int `json:"converted"`
	}

	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Converted)

	assert.Equal(t, amdConverted, readFile(t, filepath.Join(out, "nested", "a.js")))
	assert.Equal(t, amdSource, readFile(t, filepath.Join(root, "nested", "a.js")))
}

func TestConvert_YAMLReport(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.js")
	writeFile(t, path, amdSource)

	res := execute(t, "", "convert", "--report", "yaml", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "status: converted")
	assert.Equal(t, amdSource, readFile(t, path))
}

func TestConvert_ReportsFailures(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bad.js"), namedDefine)

	res := execute(t, "", "convert", root)
	require.ErrorIs(t, res.err, commands.ErrConversionFailed)
	assert.Contains(t, res.stdout, "bad.js")
	assert.Contains(t, res.stdout, "failed 1")
}

func TestConvert_FlagErrors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.js")
	writeFile(t, path, amdSource)

	res := execute(t, "", "convert", "--in-place", "--out-dir", t.TempDir(), path)
	require.ErrorIs(t, res.err, config.ErrOutputConflict)

	res = execute(t, "", "convert", "--report", "xml", path)
	require.ErrorIs(t, res.err, commands.ErrUnknownReport)

	res = execute(t, "", "convert")
	require.Error(t, res.err)

	assert.Equal(t, amdSource, readFile(t, path))
}

func TestCheck_WouldChange(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.js"), amdSource)
	writeFile(t, filepath.Join(root, "b.js"), plainSource)

	res := execute(t, "", "check", root)
	require.ErrorIs(t, res.err, commands.ErrFilesWouldChange)
	assert.Contains(t, res.stdout, "would convert a.js")
	assert.NotContains(t, res.stdout, "b.js")
	assert.Equal(t, amdSource, readFile(t, filepath.Join(root, "a.js")))
	assert.Equal(t, 2, commands.ExitWouldChange)
}

func TestCheck_Clean(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.js"), plainSource)

	res := execute(t, "", "check", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "1 files checked, nothing to convert")
}

func TestCheck_Failure(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bad.js"), namedDefine)

	res := execute(t, "", "check", root)
	require.ErrorIs(t, res.err, commands.ErrConversionFailed)
	assert.Contains(t, res.stdout, "failed bad.js")
}

func TestDiff(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.js")
	writeFile(t, path, amdSource)

	res := execute(t, "", "diff", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "+++ "+path+" (converted)")
	assert.Contains(t, res.stdout, "-define(['./a'], function(a) {\n")
	assert.Contains(t, res.stdout, "+import a from './a';\n")
	assert.Contains(t, res.stdout, "   a();\n")
	assert.Equal(t, amdSource, readFile(t, path))
}

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "b.js")
	writeFile(t, path, plainSource)

	res := execute(t, "", "diff", path)
	require.NoError(t, res.err)
	assert.Equal(t, path+": no changes\n", res.stdout)
}

func TestDiff_RejectsDirectory(t *testing.T) {
	t.Parallel()

	res := execute(t, "", "diff", t.TempDir())
	require.ErrorIs(t, res.err, commands.ErrDirectoryPath)
}

func TestMCPCommand_Exists(t *testing.T) {
	t.Parallel()

	root := commands.NewRootCommand()

	cmd, _, err := root.Find([]string{"mcp"})
	require.NoError(t, err)
	assert.Equal(t, "mcp", cmd.Use)
	assert.Contains(t, cmd.Long, "amd_convert")
	assert.Contains(t, cmd.Long, "amd_rewrite_imports")
}
