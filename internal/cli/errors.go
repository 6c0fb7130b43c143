package cli

import "fmt"

type errHeadingNotFound struct {
	file  string
	query string
}

func (e errHeadingNotFound) Error() string {
	return fmt.Sprintf("no heading matching %q in %s", e.query, e.file)
}

type errUnknownDepth struct {
	value string
}

func (e errUnknownDepth) Error() string {
	return fmt.Sprintf("unknown depth %q (want none|children|branches|entries)", e.value)
}

type errUnknownConfigKey struct {
	key string
}

func (e errUnknownConfigKey) Error() string {
	return fmt.Sprintf("unknown config key %q", e.key)
}

type errBadConfigValue struct {
	key    string
	value  string
	reason string
}

func (e errBadConfigValue) Error() string {
	return fmt.Sprintf("bad value %q for %s: %s", e.value, e.key, e.reason)
}
