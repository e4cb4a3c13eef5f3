package util

import "strings"

// Ident quotes a MySQL identifier. "*" and already quoted names pass through.
func Ident(s string) string {
	s = strings.TrimSpace(s)

	if s == "" || s == "*" || strings.HasPrefix(s, "`") {
		return s
	}

	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func IdentAll(s []string) []string {
	result := make([]string, 0, len(s))

	for _, v := range s {
		result = append(result, Ident(v))
	}

	return result
}

// SplitList splits a comma separated flag value, dropping empty items.
func SplitList(s string) []string {
	var out []string

	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}
