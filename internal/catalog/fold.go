package catalog

import "golang.org/x/text/cases"

// foldString returns the case-folded form of s for case-insensitive comparison.
// A Caser is stateful, so each call gets its own.
func foldString(s string) string {
	return cases.Fold().String(s)
}
