package util

import "github.com/dustin/go-humanize"

// FormatBytes renders a byte count for humans
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
