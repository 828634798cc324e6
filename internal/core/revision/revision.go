// Package revision generates the renamed paths that preserve superseded
// files in safe mode.
//
// A revision name carries a bracketed counter prefix on the basename:
// "a.txt" becomes "[rem0]a.txt", "[rem0]a.txt" becomes "[rem1]a.txt".
// The prefix identifies which side the file was displaced from: "rem"
// for remote, "loc" for local.
package revision

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
)

const (
	// PrefixRemote marks files displaced on the remote side
	PrefixRemote = "rem"
	// PrefixLocal marks files displaced on the local side
	PrefixLocal = "loc"
)

var revPattern = regexp.MustCompile(`^\[([a-z]+)(\d+)\](.+)$`)

// Next returns the next revision name for a relative path.
// Only the basename is prefixed; parent directories are untouched,
// so "sub/a.txt" becomes "sub/[rem0]a.txt".
func Next(relPath, prefix string) string {
	dir, base := path.Split(relPath)

	if m := revPattern.FindStringSubmatch(base); m != nil && m[1] == prefix {
		n, err := strconv.Atoi(m[2])
		if err == nil {
			return dir + fmt.Sprintf("[%s%d]%s", prefix, n+1, m[3])
		}
	}
	return dir + fmt.Sprintf("[%s0]%s", prefix, base)
}

// Unique returns a revision name guaranteed not to collide with any
// path in taken. It bumps the counter until the generated name is free,
// so a safe rename never overwrites existing data.
func Unique(relPath, prefix string, taken map[string]bool) string {
	name := Next(relPath, prefix)
	for taken[name] {
		name = Next(name, prefix)
	}
	return name
}
