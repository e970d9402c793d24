package acceptance

import (
	"strconv"
	"time"
)

const (
	testTimeout  = 2 * time.Second
	pollInterval = 10 * time.Millisecond
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
