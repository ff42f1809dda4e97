package report

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const maxIDLength = 100

// StableID derives a file-name-safe identifier from a test name.
// Names made only of letters, digits, '.', '_' and '-' are returned as is.
// Other names are slugged and suffixed with a short hash of the original,
// so distinct names never map to the same ID.
func StableID(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		if isIDRune(r) {
			b.WriteRune(r)
			lastUnderscore = r == '_'
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	slug := strings.Trim(b.String(), "_.")
	if slug == name && slug != "" && len(slug) <= maxIDLength {
		return slug
	}

	if len(slug) > maxIDLength {
		slug = slug[:maxIDLength]
	}
	sum := sha256.Sum256([]byte(name))
	suffix := hex.EncodeToString(sum[:4])
	if slug == "" {
		return "test-" + suffix
	}
	return slug + "-" + suffix
}

func isIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_' || r == '.':
		return true
	}
	return false
}
