package waitutil_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rudderlabs/redshift-data-go/internal/waitutil"
)

func TestExponential(t *testing.T) {
	t.Run("doubles up to the cap", func(t *testing.T) {
		var exp waitutil.Exponential
		require.Equal(t, 1*time.Second, exp.Next(time.Second, 10*time.Second))
		require.Equal(t, 2*time.Second, exp.Next(time.Second, 10*time.Second))
		require.Equal(t, 4*time.Second, exp.Next(time.Second, 10*time.Second))
		require.Equal(t, 8*time.Second, exp.Next(time.Second, 10*time.Second))
		require.Equal(t, 10*time.Second, exp.Next(time.Second, 10*time.Second))
		require.Equal(t, 10*time.Second, exp.Next(time.Second, 10*time.Second))
		exp.Reset()
		require.Equal(t, 1*time.Second, exp.Next(time.Second, 10*time.Second))
	})

	t.Run("abides by min", func(t *testing.T) {
		var exp waitutil.Exponential
		require.Equal(t, 100*time.Millisecond, exp.Next(100*time.Millisecond, time.Second))
		require.Equal(t, 200*time.Millisecond, exp.Next(100*time.Millisecond, time.Second))
	})
}

func TestSleep(t *testing.T) {
	t.Run("sleeps for the given duration", func(t *testing.T) {
		start := time.Now()
		require.NoError(t, waitutil.Sleep(context.Background(), time.Millisecond))
		require.GreaterOrEqual(t, time.Since(start), time.Millisecond)
	})

	t.Run("returns the context error when canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, waitutil.Sleep(ctx, time.Minute), context.Canceled)
	})
}
