package utils

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// BytesMD5 returns the hex MD5 of data.
func BytesMD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// CacheKey joins non-empty parts with ':'.
func CacheKey(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ":")
}
