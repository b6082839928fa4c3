// Package file implements local-file access for file-backed datasets: plain
// reads, atomic whole-file replacement, and line lists such as a field-name
// file passed to the CLI as "@fields.txt".
package file

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadList reads a text file and returns its non-empty, non-comment lines
// in order. Lines starting with '#' (after trimming) are comments.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read list %s: %w", path, err)
	}
	return out, nil
}
