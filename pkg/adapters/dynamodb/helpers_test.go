package dynamodb

import (
	"testing"
	"time"
)

func mustTime(t *testing.T) time.Time {
	t.Helper()
	at, err := time.Parse(time.RFC3339, "2025-03-01T12:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	return at
}

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}
