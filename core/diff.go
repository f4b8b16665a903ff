package core

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// GenerateDiff creates a unified diff of a unit before and after rewriting.
func GenerateDiff(original, modified, path string) string {
	if original == modified {
		return ""
	}
	if path == "" {
		path = "unit"
	}

	diff := difflib.UnifiedDiff{
		A:        strings.Split(original, "\n"),
		B:        strings.Split(modified, "\n"),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("--- a/%s\n+++ b/%s\n@@ changes @@\n%d bytes -> %d bytes",
			path, path, len(original), len(modified))
	}
	return text
}
