package utils

import "time"

// TruncateTo rounds t down to the given bucket size, e.g. time.Minute for 1m
// candles or time.Hour for 1h candles.
func TruncateTo(t time.Time, bucket time.Duration) time.Time {
	if bucket <= 0 {
		return t
	}
	return t.Truncate(bucket)
}
