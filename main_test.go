package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasya-io/kilonote/app/entity/content"
)

func writeNote(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	args = append([]string{"--log-dir", t.TempDir()}, args...)
	err := run(args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func TestHelp(t *testing.T) {
	out, err := runCLI(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "--log-dir")
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCLI(t, "", "frobnicate")
	assert.ErrorContains(t, err, "unknown command")
}

func TestClassify(t *testing.T) {
	md := writeNote(t, "note.md", "# Title\n\nbody")
	out, err := runCLI(t, "", "classify", md)
	require.NoError(t, err)
	assert.Equal(t, "markdown\n", out)

	html := writeNote(t, "note.html", "<p>hello</p>")
	out, err = runCLI(t, "", "classify", html)
	require.NoError(t, err)
	assert.Equal(t, "html\n", out)
}

func TestExport(t *testing.T) {
	md := writeNote(t, "note.md", "# Title\n\nSome **bold** text.")

	out, err := runCLI(t, "", "export", "--format", "html", md)
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<strong>bold</strong>")

	_, err = runCLI(t, "", "export", "--format", "pdf", md)
	assert.Error(t, err)

	_, err = runCLI(t, "", "export", md, "extra")
	assert.ErrorContains(t, err, "expected exactly one file")
}

func TestImportAndEnvelope(t *testing.T) {
	md := writeNote(t, "note.md", "# Title")
	target := filepath.Join(t.TempDir(), "note.json")

	_, err := runCLI(t, "", "import", md, "-o", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	stored, ok := content.Unmarshal(data)
	require.True(t, ok)
	assert.Equal(t, content.FormatJSON, stored.Format)

	out, err := runCLI(t, "", "classify", target)
	require.NoError(t, err)
	assert.Equal(t, "json\n", out)

	out, err = runCLI(t, "", "envelope", target)
	require.NoError(t, err)
	assert.Contains(t, out, "format:  json")
	assert.Contains(t, out, "schema:  1")

	_, err = runCLI(t, "", "envelope", md)
	assert.ErrorContains(t, err, "not a stored envelope")
}

func TestStreamCreatesNote(t *testing.T) {
	target := filepath.Join(t.TempDir(), "stream.json")

	out, err := runCLI(t, "first line\nsecond line\n", "stream", target)
	require.NoError(t, err)
	assert.Contains(t, out, "saved:   "+target)
	assert.Contains(t, out, "health:  healthy")

	exported, err := runCLI(t, "", "export", "--format", "markdown", target)
	require.NoError(t, err)
	assert.Contains(t, exported, "first line")
	assert.Contains(t, exported, "second line")
}
