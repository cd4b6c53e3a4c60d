package utils

import (
	"strconv"
	"time"
)

// GenerateID returns a time-based request identifier.
func GenerateID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}
