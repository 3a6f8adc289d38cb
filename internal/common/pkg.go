package common

import (
	"path"
	"strings"
)

// PkgAlias returns the name a package is usually imported under: the last
// element of its path, skipping a major-version element ("example.com/opt/v2"
// gives "opt"). Returns "" for an empty path.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	base := path.Base(pkgPath)
	if isMajorVersion(base) {
		if parent := path.Dir(pkgPath); parent != "." && parent != "/" {
			return path.Base(parent)
		}
	}

	return base
}

func isMajorVersion(elem string) bool {
	digits, ok := strings.CutPrefix(elem, "v")
	if !ok || digits == "" || digits[0] == '0' {
		return false
	}

	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}

	return digits != "1"
}
