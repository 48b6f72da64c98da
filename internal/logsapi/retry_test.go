package logsapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackoffWaitDoubles(t *testing.T) {
	p := DefaultRetryPolicy()
	require.Equal(t, time.Second, p.backoffWait(0))
	require.Equal(t, 2*time.Second, p.backoffWait(1))
	require.Equal(t, 1024*time.Second, p.backoffWait(10))
}

func TestBackoffWaitNeverOverflows(t *testing.T) {
	p := DefaultRetryPolicy()

	// past the clamp the wait plateaus instead of wrapping around
	require.Equal(t, p.backoffWait(20), p.backoffWait(63))
	require.Equal(t, p.backoffWait(20), p.backoffWait(500))
	require.Greater(t, p.backoffWait(500), time.Duration(0))
}
