// Command increment_version bumps the patch number of the fstree Version
// constant. Run it from the repository root before tagging a release.
package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const defaultVersionFile = "cmd/fstree/main.go"

// versionLine matches: const Version = "major.minor.patch"
var versionLine = regexp.MustCompile(`^const Version\s*=\s*"(\d+\.\d+\.)(\d+)"(.*)$`)

// bumpPatch returns content with the patch number of the Version constant
// incremented, and the new version string.
func bumpPatch(content string) (string, string, error) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		m := versionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		patch, err := strconv.Atoi(m[2])
		if err != nil {
			return "", "", fmt.Errorf("invalid patch number %q: %w", m[2], err)
		}
		version := fmt.Sprintf("%s%d", m[1], patch+1)
		lines[i] = fmt.Sprintf("const Version = %q%s", version, m[3])
		return strings.Join(lines, "\n"), version, nil
	}
	return "", "", errors.New("no Version constant found")
}

func main() {
	versionFile := defaultVersionFile
	if len(os.Args) > 1 {
		versionFile = os.Args[1]
	}

	content, err := os.ReadFile(versionFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not read '%s': %v\n", versionFile, err)
		os.Exit(1)
	}
	updated, version, err := bumpPatch(string(content))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", versionFile, err)
		os.Exit(1)
	}
	if err := os.WriteFile(versionFile, []byte(updated), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not write '%s': %v\n", versionFile, err)
		os.Exit(1)
	}
	fmt.Printf("Version updated to %s in %s\n", version, versionFile)
}
