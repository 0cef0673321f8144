package storage

import (
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")

func durToInterval(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs <= 0 {
		return "0 seconds"
	}
	return fmt.Sprintf("%d seconds", secs)
}
