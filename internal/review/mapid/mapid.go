// Package mapid converts between the public hexadecimal map identifiers and
// the numeric ids stored in the database.
package mapid

import (
	"strconv"
	"strings"
)

// Decode parses a hexadecimal map id. ok is false for anything that is not a
// positive id that fits in an int64.
func Decode(raw string) (id int64, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "-") || strings.HasPrefix(raw, "+") {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 16, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Encode renders id in the public lowercase hexadecimal form.
func Encode(id int64) string {
	return strconv.FormatInt(id, 16)
}
