package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"massnet.org/shasum/testutil"
)

func TestParseChecksumLine(t *testing.T) {
	tests := []struct {
		line string
		path string
		ok   bool
	}{
		{hiDigest + "  hi.txt", "hi.txt", true},
		{hiDigest + " *hi.txt", "hi.txt", true},
		{strings.ToUpper(hiDigest) + "  hi.txt", "hi.txt", true},
		{hiDigest + "  name with spaces", "name with spaces", true},
		{hiDigest + " hi.txt", "", false},
		{hiDigest + "  ", "", false},
		{hiDigest[1:] + "  hi.txt", "", false},
		{"g" + hiDigest[1:] + "  hi.txt", "", false},
		{"", "", false},
		{`\` + hiDigest + `  a\\b.txt`, `a\b.txt`, true},
		{`\` + hiDigest + ` *line\nbreak`, "line\nbreak", true},
		{`\` + hiDigest + `  plain`, "plain", true},
		{`\` + hiDigest + `  bad\tescape`, "", false},
		{`\` + hiDigest + `  trailing\`, "", false},
		{`\\` + hiDigest + `  hi.txt`, "", false},
	}

	for i, test := range tests {
		digest, path, ok := parseChecksumLine(test.line)
		if ok != test.ok || path != test.path {
			t.Errorf("%d, parseChecksumLine(%q) = %q, %v, want %q, %v", i, test.line, path, ok, test.path, test.ok)
		}
		if ok && digest.String() != hiDigest {
			t.Errorf("%d, digest = %s", i, digest)
		}
	}
}

func writeSums(t *testing.T, dir, body string) string {
	path := filepath.Join(dir, "SHA256SUMS")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestCheckOK(t *testing.T) {
	dir := testDir(t)
	hi, long := filepath.Join(dir, "hi.txt"), filepath.Join(dir, "long.txt")
	sums := writeSums(t, dir, fmt.Sprintf("# generated\n%s  %s\n\n%s *%s\n", hiDigest, hi, longDigest, long))

	stdout, stderr, err := execute(t, "--check", sums)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%s: OK\n%s: OK\n", hi, long), stdout)
	assert.Empty(t, stderr)
}

func TestCheckEscapedPath(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string][]byte{`back\slash.txt`: []byte("hi")})
	name := filepath.Join(dir, `back\slash.txt`)
	escaped := strings.ReplaceAll(name, `\`, `\\`)
	sums := writeSums(t, dir, fmt.Sprintf("\\%s  %s\n", hiDigest, escaped))

	stdout, stderr, err := execute(t, "--check", sums)
	require.NoError(t, err)
	assert.Equal(t, name+": OK\n", stdout)
	assert.Empty(t, stderr)
}

func TestCheckFailures(t *testing.T) {
	dir := testDir(t)
	hi, long, missing := filepath.Join(dir, "hi.txt"), filepath.Join(dir, "long.txt"), filepath.Join(dir, "missing")
	sums := writeSums(t, dir, fmt.Sprintf("%s  %s\n%s  %s\nnot a checksum line\n%s  %s\n", longDigest, hi, longDigest, long, hiDigest, missing))

	stdout, stderr, err := execute(t, "-c", sums)
	assert.Equal(t, errReported, err)
	assert.Equal(t, fmt.Sprintf("%s: FAILED\n%s: OK\n%s: FAILED open or read\n", hi, long, missing), stdout)
	assert.Contains(t, stderr, "1 improperly formatted")
	assert.Contains(t, stderr, "1 computed checksum(s) did NOT match")
	assert.Contains(t, stderr, "1 listed file(s) could not be read")
}

func TestCheckNoLines(t *testing.T) {
	dir := testDir(t)
	sums := writeSums(t, dir, "garbage\n")

	stdout, stderr, err := execute(t, "--check", sums, filepath.Join(dir, "absent"))
	assert.Equal(t, errReported, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no properly formatted SHA256 checksum lines found")
	assert.Contains(t, stderr, "absent")
}
