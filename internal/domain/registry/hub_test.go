package registry

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/odin-fire/odin-go/internal/actor"
	"github.com/odin-fire/odin-go/internal/domain/event"
	"github.com/odin-fire/odin-go/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	sys := actor.NewActorSystem("test", slog.Default())
	require.NoError(t, sys.TimeoutStartAll(time.Second))
	return NewHub(sys, slog.Default(), WithEvictionInterval(time.Hour), WithIdleTimeout(time.Hour))
}

func TestHubDeliversToAttachedSession(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)
	defer h.Shutdown()

	conn := model.NewConnector(context.Background(), "N12345", model.ConnectMetadata{Transport: "ws"}, 8)
	require.NoError(t, h.Register("N12345", conn))
	assert.True(t, h.IsConnected("N12345"))

	ev := event.NewEnvelope("N12345", event.PositionUpdate, event.PriorityNormal, model.AircraftPosition{ICAO: "N12345"})
	assert.True(t, h.Broadcast(ev))

	select {
	case got := <-conn.Recv():
		assert.Equal(t, "N12345", got.GetSubjectID())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivered event")
	}
}

func TestHubBroadcastToUnknownSubjectIsNoop(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)
	defer h.Shutdown()

	ev := event.NewEnvelope("ghost", event.PositionUpdate, event.PriorityNormal, model.AircraftPosition{})
	assert.False(t, h.Broadcast(ev))
}

func TestHubUnregisterDetachesSession(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)
	defer h.Shutdown()

	conn := model.NewConnector(context.Background(), "N999", model.ConnectMetadata{Transport: "ws"}, 8)
	require.NoError(t, h.Register("N999", conn))
	h.Unregister("N999", conn.GetID())

	stats := h.Stats()
	assert.Equal(t, 1, stats.TotalSubjects) // cell itself persists until evicted
}
