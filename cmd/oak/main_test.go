package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `log:
  verbosity: -4
languages:
  calc:
    extensions: [".calx"]
`

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes oak with a config file in dir and files relative to dir.
func run(t *testing.T, dir, stdin string, args ...string) result {
	t.Helper()
	cmd := newRootCmd(&app{})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, ".oak.yaml")}, args...))
	err := cmd.Execute()
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func workdir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files[".oak.yaml"] = testConfig
	for name, text := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
	}
	return dir
}

func TestParseCommand(t *testing.T) {
	dir := workdir(t, map[string]string{"prog.calx": "let x = 1 + 2;"})

	res := run(t, dir, "", "parse", "--color", "never", filepath.Join(dir, "prog.calx"))
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "Program 0..14\n"), res.stdout)
	assert.Contains(t, res.stdout, "  LetStmt 0..14\n")
	assert.Empty(t, res.stderr)
}

func TestParseCommandReportsErrors(t *testing.T) {
	dir := workdir(t, map[string]string{})

	res := run(t, dir, "[1,", "parse", "--lang", "json", "--format", "json", "-")
	assert.Contains(t, res.stderr, " diagnostics\n")

	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &tree))
	assert.Equal(t, "Document", tree["kind"])
}

func TestLexCommand(t *testing.T) {
	dir := workdir(t, map[string]string{"data.json": `{"a": 1}`})

	res := run(t, dir, "", "lex", "--format", "json", filepath.Join(dir, "data.json"))
	require.NoError(t, res.err)

	var tokens []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &tokens))
	require.NotEmpty(t, tokens)
	assert.Equal(t, "'{'", tokens[0]["kind"])
	assert.Equal(t, "EOF", tokens[len(tokens)-1]["kind"])
}

func TestCheckCommand(t *testing.T) {
	dir := workdir(t, map[string]string{
		"good.calc": "let a = 1;\n",
		"bad.calc":  "let = 1;\n",
	})

	res := run(t, dir, "", "check", filepath.Join(dir, "good.calc"))
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	res = run(t, dir, "", "check", filepath.Join(dir, "good.calc"), filepath.Join(dir, "bad.calc"))
	require.Error(t, res.err)
	assert.Equal(t, "1 of 2 files have syntax errors", res.err.Error())
	assert.Contains(t, res.stdout, "bad.calc:1:")
}

func TestGrammarCommand(t *testing.T) {
	dir := workdir(t, map[string]string{
		"ok.calc":  "fn f(x) { return x * 2; }\n",
		"bad.json": "[1,]",
	})

	res := run(t, dir, "", "grammar", "json", "--productions")
	require.NoError(t, res.err)
	assert.Contains(t, strings.Split(res.stdout, "\n"), "Document")

	res = run(t, dir, "", "grammar", "calc", "--check", filepath.Join(dir, "ok.calc"))
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "conforms to the calc grammar")

	res = run(t, dir, "", "grammar", "json", "--check", filepath.Join(dir, "bad.json"))
	require.Error(t, res.err)
	assert.Contains(t, res.stdout, `unexpected "]"`)

	res = run(t, dir, "", "grammar", "cobol")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), `unknown language "cobol"`)
}

func TestLangsCommand(t *testing.T) {
	dir := workdir(t, map[string]string{})

	res := run(t, dir, "", "langs")
	require.NoError(t, res.err)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "calc")
	assert.Contains(t, lines[1], ".calx")
	assert.Contains(t, lines[2], "jsonc")
}

func TestUndetectableFile(t *testing.T) {
	dir := workdir(t, map[string]string{"notes.zzz": "hello"})

	res := run(t, dir, "", "parse", filepath.Join(dir, "notes.zzz"))
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "use --lang")
}
