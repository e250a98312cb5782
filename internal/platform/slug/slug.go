package slug

import (
	"regexp"
	"strings"
)

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases input and joins alphanumeric runs with dashes, for use in
// file names. Empty results become "session".
func Make(input string) string {
	s := nonAlphaNum.ReplaceAllString(strings.ToLower(strings.TrimSpace(input)), "-")
	if s = strings.Trim(s, "-"); s == "" {
		return "session"
	}
	return s
}
