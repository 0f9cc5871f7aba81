package commands

import "strings"

// join prefixes parts with the docker binary and separates them with spaces.
func join(parts ...string) string {
	return Binary + " " + strings.Join(parts, " ")
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// quote returns s as a single shell word. Words made only of safe
// characters are returned as-is; anything else is single-quoted, with
// embedded single quotes spliced in as "'".
func quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, func(r rune) bool { return !isSafe(r) }) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

func isSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("_@%+=:,./-", r)
}
