package vfs

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// canonicalKey folds a name to lowercase + NFC for the kernel
// uniqueness invariant and the duplicate scanner's grouping key, so
// two differently-composed but canonically equivalent names (e.g.
// precomposed "é" vs "e" + combining acute) collide as duplicates.
func canonicalKey(name string) string {
	return strings.ToLower(norm.NFC.String(name))
}
