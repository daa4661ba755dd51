package weather

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/odin-fire/odin-go/internal/actor"
	"github.com/odin-fire/odin-go/internal/domain/event"
	"github.com/odin-fire/odin-go/internal/domain/model"
)

type checkCycle struct{}

type ingesterState struct {
	model     string
	indexURL  string
	delay     time.Duration
	schedule  Schedule
	nextCycle int
}

// Spawn starts an actor that, on each hourly checkCycle message sent by a
// ticker goroutine, checks whether the
// next HRRR cycle has finished publishing and, if so, downloads its
// brotli-compressed GRIB2 index and announces a WeatherCycle.
func Spawn(sys *actor.ActorSystem, logger *slog.Logger, modelName, indexURLTemplate string, delay time.Duration, hub interface {
	Broadcast(ev event.Eventer) bool
}) (*actor.ActorHandle[checkCycle], error) {
	b := actor.NewActorBuilder[ingesterState]("ingest:weather", 16, func() (*ingesterState, error) {
		return &ingesterState{model: modelName, indexURL: indexURLTemplate, delay: delay, schedule: DefaultSchedule()}, nil
	})

	client := &http.Client{Timeout: 30 * time.Second}

	actor.On(b, func(_ *actor.Actor[ingesterState], s *ingesterState, _ checkCycle) actor.ReceiveAction {
		now := time.Now().UTC()
		avail := NextAvailable(now, s.nextCycle, s.delay)
		if now.Before(avail) {
			return actor.Continue
		}

		cycle := model.WeatherCycle{
			Model:        s.model,
			CycleHour:    s.nextCycle,
			ForecastHour: lastOf(s.schedule.ForecastHoursFor(now)),
			AvailableAt:  avail.UnixMilli(),
			GribURL:      fmt.Sprintf(s.indexURL, s.model, s.nextCycle),
		}
		if err := fetchIndex(client, cycle.GribURL); err != nil {
			logger.Warn("weather: index fetch failed", "cycle", s.nextCycle, "err", err)
		} else {
			hub.Broadcast(event.NewEnvelope(s.model, event.WeatherCycleReady, event.PriorityNormal, cycle))
		}

		s.nextCycle = (s.nextCycle + 1) % 24
		return actor.Continue
	})

	h, err := actor.SpawnActor[ingesterState, checkCycle](sys, b)
	if err != nil {
		return nil, err
	}
	if err := h.SendStartSys(); err != nil {
		return nil, err
	}

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := h.SendMsg(context.Background(), checkCycle{}); err != nil {
				return
			}
		}
	}()

	return h, nil
}

func lastOf(hours []int) int {
	if len(hours) == 0 {
		return 0
	}
	return hours[len(hours)-1]
}

// fetchIndex downloads and inflates the GRIB2 .idx file HRRR publishes
// alongside each forecast hour's grid, brotli-compressed on the wire.
func fetchIndex(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather: index fetch returned %d", resp.StatusCode)
	}

	var r io.Reader = resp.Body
	switch resp.Header.Get("Content-Encoding") {
	case "br":
		r = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gz.Close()
		r = gz
	}

	_, err = io.Copy(io.Discard, r)
	return err
}
