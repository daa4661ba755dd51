package enrich

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/odin-fire/odin-go/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationEnricherCachesResolvedEntries(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	fetch := func(_ context.Context, id string) (model.StationInfo, error) {
		calls.Add(1)
		return model.StationInfo{ID: id, DisplayName: "Station " + id}, nil
	}
	e := NewStationEnricher(fetch, 16)

	first, err := e.Resolve(context.Background(), "KSFO")
	require.NoError(t, err)
	assert.Equal(t, "Station KSFO", first.DisplayName)

	second, err := e.Resolve(context.Background(), "KSFO")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestStationEnricherFallsBackOnFetchError(t *testing.T) {
	t.Parallel()
	fetch := func(_ context.Context, id string) (model.StationInfo, error) {
		return model.StationInfo{}, fmt.Errorf("lookup unavailable")
	}
	e := NewStationEnricher(fetch, 16)

	info, err := e.Resolve(context.Background(), "N500")
	require.NoError(t, err)
	assert.Equal(t, "N500", info.ID)
}

func TestResolveAllFansOutConcurrently(t *testing.T) {
	t.Parallel()
	fetch := func(_ context.Context, id string) (model.StationInfo, error) {
		return model.StationInfo{ID: id}, nil
	}
	e := NewStationEnricher(fetch, 16)

	out, err := e.ResolveAll(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Equal(t, "B", out["B"].ID)
}
