package vdbparam

import (
	"maps"
	"slices"
	"strings"
)

// checkNotBlank fails when target is empty or whitespace only. name describes
// the parameter in the error message.
func checkNotBlank(target, name string) error {
	if strings.TrimSpace(target) == "" {
		return newValueError("", "%s cannot be empty", name)
	}
	return nil
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
