package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/crucial707/groupchat/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCount struct {
	n   int
	err error
}

func (f fixedCount) Count(context.Context) (int, error) { return f.n, f.err }

func TestRefreshStoreSizes(t *testing.T) {
	require.NoError(t, RefreshStoreSizes(context.Background(), fixedCount{n: 3}, fixedCount{n: 42}))

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.UsersStored))
	assert.Equal(t, 42.0, testutil.ToFloat64(metrics.MessagesStored))
}

func TestRefreshStoreSizes_Error(t *testing.T) {
	err := RefreshStoreSizes(context.Background(), fixedCount{n: 1}, fixedCount{err: errors.New("db down")})
	assert.ErrorContains(t, err, "count messages")
}

func TestRun_InvalidSchedule(t *testing.T) {
	err := Run(context.Background(), "not a schedule", fixedCount{}, fixedCount{})
	assert.Error(t, err)
}

func TestRun_RefreshesBeforeWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, Run(ctx, "@every 1h", fixedCount{n: 5}, fixedCount{n: 6}))
	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.UsersStored))
	assert.Equal(t, 6.0, testutil.ToFloat64(metrics.MessagesStored))
}
