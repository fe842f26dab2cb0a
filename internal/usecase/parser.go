package usecase

import "strings"

// PathSeparator joins successive entries in the gateway's accumulated text.
const PathSeparator = "*"

// ParsePath splits the accumulated input into the entries made since the
// session started. An empty string yields a single empty entry; callers treat
// blank text as "no input yet" before parsing.
func ParsePath(raw string) []string {
	return strings.Split(raw, PathSeparator)
}
