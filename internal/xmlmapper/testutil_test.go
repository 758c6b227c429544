package xmlmapper

import (
	"testing"
	"time"
)

func timeoutAfterTest(t *testing.T) <-chan time.Time {
	t.Helper()
	return time.After(2 * time.Second)
}
