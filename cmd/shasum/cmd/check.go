package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"massnet.org/shasum/logging"
	"massnet.org/shasum/massutil"
	"massnet.org/shasum/massutil/filehash"
)

type checksumLine struct {
	digest massutil.Hash
	path   string
}

// parseChecksumLine accepts "<digest>  <path>" and the binary-mode form
// "<digest> *<path>". A leading backslash marks an escaped path in which
// `\\` is a backslash and `\n` a newline.
func parseChecksumLine(s string) (massutil.Hash, string, bool) {
	const digestLen = 64
	escaped := strings.HasPrefix(s, "\\")
	if escaped {
		s = s[1:]
	}
	if len(s) < digestLen+3 || s[digestLen] != ' ' {
		return massutil.Hash{}, "", false
	}
	if mode := s[digestLen+1]; mode != ' ' && mode != '*' {
		return massutil.Hash{}, "", false
	}
	digest, err := massutil.DecodeStringToHash(strings.ToLower(s[:digestLen]))
	if err != nil {
		return massutil.Hash{}, "", false
	}
	path := s[digestLen+2:]
	if escaped {
		var ok bool
		if path, ok = unescapePath(path); !ok {
			return massutil.Hash{}, "", false
		}
	}
	return digest, path, true
}

func unescapePath(s string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		if i++; i == len(s) {
			return "", false
		}
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		default:
			return "", false
		}
	}
	return b.String(), true
}

func readChecksumFile(name string) ([]checksumLine, int, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, 0, err
	}

	var (
		lines     []checksumLine
		malformed int
	)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		digest, path, ok := parseChecksumLine(text)
		if !ok {
			malformed++
			continue
		}
		lines = append(lines, checksumLine{digest: digest, path: path})
	}
	return lines, malformed, scanner.Err()
}

func check(ctx context.Context, hasher *filehash.Hasher, sources []string, stdout, stderr io.Writer) error {
	var (
		lines     []checksumLine
		failed    bool
		malformed int
	)
	for _, source := range sources {
		l, bad, err := readChecksumFile(source)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
			failed = true
			continue
		}
		if bad > 0 {
			fmt.Fprintf(stderr, "%s: %s: %d improperly formatted SHA256 checksum line(s)\n", appName, source, bad)
			malformed += bad
		}
		if len(l) == 0 {
			fmt.Fprintf(stderr, "%s: %s: no properly formatted SHA256 checksum lines found\n", appName, source)
			failed = true
		}
		lines = append(lines, l...)
	}

	paths := make([]string, len(lines))
	for i, l := range lines {
		paths[i] = l.path
	}

	var mismatched, unreadable int
	for i, r := range hasher.HashFiles(ctx, paths) {
		switch {
		case r.Err != nil:
			fmt.Fprintf(stderr, "%s: %v\n", appName, r.Err)
			fmt.Fprintf(stdout, "%s: FAILED open or read\n", r.Path)
			unreadable++
		case r.Digest != lines[i].digest:
			fmt.Fprintf(stdout, "%s: FAILED\n", r.Path)
			mismatched++
		default:
			fmt.Fprintf(stdout, "%s: OK\n", r.Path)
		}
	}

	if unreadable > 0 {
		fmt.Fprintf(stderr, "%s: WARNING: %d listed file(s) could not be read\n", appName, unreadable)
	}
	if mismatched > 0 {
		fmt.Fprintf(stderr, "%s: WARNING: %d computed checksum(s) did NOT match\n", appName, mismatched)
	}
	logging.VPrint(logging.INFO, "check finished", logging.LogFormat{
		"files":      len(lines),
		"mismatched": mismatched,
		"unreadable": unreadable,
		"malformed":  malformed,
	})

	if failed || malformed > 0 || mismatched > 0 || unreadable > 0 {
		return errReported
	}
	return nil
}
