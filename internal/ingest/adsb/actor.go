package adsb

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/odin-fire/odin-go/internal/actor"
	"github.com/odin-fire/odin-go/internal/domain/event"
	"github.com/odin-fire/odin-go/internal/domain/model"
	"github.com/odin-fire/odin-go/internal/service/enrich"
)

type rawLine struct{ Line string }

type subscribe struct{ Action actor.DataAction[model.AircraftPosition] }

type ingesterState struct {
	lines    *actor.ActionList[model.AircraftPosition]
	stopConn func()
}

// Spawn connects to a BaseStation-protocol feed at addr and publishes every
// decoded AircraftPosition both to hub (keyed by ICAO) and to any Go-side
// subscriber wired in afterward via Subscribe — the dynamic-subscription
// idiom (S6) applied to a real data source instead of a Timer counter.
func Spawn(sys *actor.ActorSystem, logger *slog.Logger, addr string, enricher enrich.Enricher, hub interface {
	Broadcast(ev event.Eventer) bool
}) (*actor.ActorHandle[rawLine], error) {
	b := actor.NewActorBuilder[ingesterState]("ingest:adsb", 4096, func() (*ingesterState, error) {
		return &ingesterState{lines: actor.NewActionList[model.AircraftPosition]()}, nil
	})

	actor.On(b, func(_ *actor.Actor[ingesterState], s *ingesterState, m rawLine) actor.ReceiveAction {
		pos, ok, err := ParseLine(m.Line)
		if err != nil {
			logger.Warn("adsb: parse error", "err", err, "line", m.Line)
			return actor.Continue
		}
		if !ok {
			return actor.Continue
		}
		if enricher != nil {
			if info, err := enricher.Resolve(context.Background(), pos.ICAO); err == nil {
				pos.Station = info
			}
		}
		hub.Broadcast(event.NewEnvelope(pos.ICAO, event.PositionUpdate, event.PriorityNormal, pos))
		s.lines.ExecuteAll(pos)
		return actor.Continue
	})
	actor.On(b, func(_ *actor.Actor[ingesterState], s *ingesterState, m subscribe) actor.ReceiveAction {
		s.lines.Add(m.Action)
		return actor.Continue
	})

	h, err := actor.SpawnActor[ingesterState, rawLine](sys, b)
	if err != nil {
		return nil, err
	}
	if err := h.SendStartSys(); err != nil {
		return nil, err
	}

	go dialAndRead(h, logger, addr)

	return h, nil
}

// Subscribe registers recv to be notified of every future decoded position,
// via the same DataAction mechanism internal/actor's action.go provides —
// recv never needs to know it's specifically an adsb.rawLine-handling actor.
func Subscribe[T any](h *actor.ActorHandle[rawLine], recv actor.MsgReceiver[T], wrap func(model.AircraftPosition) T) error {
	action := actor.NewDataAction[model.AircraftPosition, T](recv, wrap)
	return actor.As[subscribe](h).TrySendMsg(subscribe{Action: action})
}

// dialAndRead owns the TCP connection outside the actor's own goroutine
// (actors must never block their receive loop on network I/O) and forwards
// each decoded line in as a plain domain message, retrying the connection
// with a fixed backoff if the feed drops.
func dialAndRead(h *actor.ActorHandle[rawLine], logger *slog.Logger, addr string) {
	for {
		conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
		if err != nil {
			logger.Warn("adsb: dial failed, retrying", "addr", addr, "err", err)
			time.Sleep(5 * time.Second)
			continue
		}

		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			if err := h.SendMsg(context.Background(), rawLine{Line: scanner.Text()}); err != nil {
				_ = conn.Close()
				return
			}
		}
		_ = conn.Close()
		logger.Warn("adsb: feed connection closed, reconnecting", "addr", addr)
		time.Sleep(2 * time.Second)
	}
}
