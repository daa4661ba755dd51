package hotspot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/odin-fire/odin-go/internal/actor"
	"github.com/odin-fire/odin-go/internal/domain/event"
	"github.com/odin-fire/odin-go/internal/domain/model"
	"github.com/sony/gobreaker"
)

// tileWindow identifies one overlapping fetch: a tile polled at a given
// wall-clock minute. Overlapping pollers (e.g. a manual refresh racing the
// scheduled Timer tick) coalesce onto the same RequestProcessor.Fetch call.
type tileWindow struct {
	TileID string
	Minute int64
}

type pollTile struct{ TileID string }

type ingesterState struct {
	tiles []string
}

// Ingester periodically pulls FIRMS active-fire CSV for a fixed set of
// tiles, guarded by a circuit breaker against a flaky upstream and
// deduplicated by RequestProcessor so a slow fetch already in flight for a
// tile is never started twice.
type Ingester struct {
	handle     *actor.ActorHandle[pollTile]
	processor  *actor.RequestProcessor[tileWindow, []model.Hotspot]
	breaker    *gobreaker.CircuitBreaker[[]model.Hotspot]
	client     *http.Client
	baseURL    string
	mapKey     string
	logger     *slog.Logger
}

// Spawn starts an ingester for tiles, fetching from baseURL (a FIRMS
// area-CSV endpoint) with mapKey, repolling every interval.
func Spawn(sys *actor.ActorSystem, logger *slog.Logger, baseURL, mapKey string, tiles []string, interval time.Duration, hub interface {
	Broadcast(ev event.Eventer) bool
}) (*Ingester, error) {
	ing := &Ingester{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: baseURL,
		mapKey:  mapKey,
		logger:  logger,
	}
	ing.breaker = gobreaker.NewCircuitBreaker[[]model.Hotspot](gobreaker.Settings{
		Name:        "firms",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 3 },
	})
	ing.processor = &actor.RequestProcessor[tileWindow, []model.Hotspot]{
		SameRequest: func(a, b tileWindow) bool { return a == b },
		Fetch:       ing.fetch,
	}

	b := actor.NewActorBuilder[ingesterState](
		"ingest:hotspot", 64,
		func() (*ingesterState, error) { return &ingesterState{tiles: tiles}, nil },
	)
	actor.On(b, func(a *actor.Actor[ingesterState], s *ingesterState, m pollTile) actor.ReceiveAction {
		go ing.pollOne(context.Background(), m.TileID, hub)
		return actor.Continue
	})
	actor.On(b, func(a *actor.Actor[ingesterState], s *ingesterState, _ actor.Timer) actor.ReceiveAction {
		for _, t := range s.tiles {
			go ing.pollOne(context.Background(), t, hub)
		}
		return actor.Continue
	})

	h, err := actor.SpawnActor[ingesterState, pollTile](sys, b)
	if err != nil {
		return nil, err
	}
	if err := h.SendStartSys(); err != nil {
		return nil, err
	}
	ing.handle = h
	startTimer(h, interval)

	return ing, nil
}

func startTimer(h *actor.ActorHandle[pollTile], interval time.Duration) {
	// Timers are armed from inside an actor's own goroutine in the general
	// case (Actor.StartTimer); a top-level ingester has no such goroutine of
	// its own, so it drives its polling via the system-priority Timer
	// message directly instead, on a plain time.Ticker.
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if err := h.SendTimerSys(0); err != nil {
				return
			}
		}
	}()
}

func (ing *Ingester) pollOne(ctx context.Context, tileID string, hub interface {
	Broadcast(ev event.Eventer) bool
}) {
	win := tileWindow{TileID: tileID, Minute: time.Now().Unix() / 60}
	hotspots, err := ing.processor.Process(ctx, win)
	if err != nil {
		ing.logger.Warn("hotspot: fetch failed", "tile", tileID, "err", err)
		return
	}
	for _, hs := range hotspots {
		hub.Broadcast(event.NewEnvelope(tileID, event.HotspotDetected, event.PriorityHigh, hs))
	}
}

func (ing *Ingester) fetch(ctx context.Context, win tileWindow) ([]model.Hotspot, error) {
	return ing.breaker.Execute(func() ([]model.Hotspot, error) {
		url := fmt.Sprintf("%s/%s/%s", ing.baseURL, ing.mapKey, win.TileID)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept-Encoding", "gzip")

		resp, err := ing.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("hotspot: firms returned %d", resp.StatusCode)
		}

		gzipped := resp.Header.Get("Content-Encoding") == "gzip"
		return DecodeCSV(win.TileID, resp.Body, gzipped)
	})
}
