// Package sensor ingests camera/telemetry readings published by field
// devices over MQTT, grounded on nugget-thane-ai-agent's internal/mqtt
// Publisher (the pack's only autopaho/paho.golang usage) run here in the
// inverse direction: subscribe-and-decode instead of publish-and-announce.
package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/odin-fire/odin-go/internal/actor"
	"github.com/odin-fire/odin-go/internal/domain/event"
	"github.com/odin-fire/odin-go/internal/domain/model"
)

type rawReading struct {
	Topic   string
	Payload []byte
}

type ingesterState struct{}

// Config names the broker and topic filter sensor devices publish readings
// under, e.g. "sensors/+/reading" with a device ID as the wildcard segment.
type Config struct {
	BrokerURL   string
	ClientID    string
	TopicFilter string
	Username    string
	Password    string
}

// Spawn connects to the configured MQTT broker and decodes every message on
// TopicFilter into a SensorReading, broadcasting it through hub. Readings
// that arrive as bare numeric payloads (a device with no JSON encoder) are
// accepted too, tagged with Kind "raw".
func Spawn(ctx context.Context, sys *actor.ActorSystem, logger *slog.Logger, cfg Config, hub interface {
	Broadcast(ev event.Eventer) bool
}) (*actor.ActorHandle[rawReading], error) {
	b := actor.NewActorBuilder[ingesterState]("ingest:sensor", 1024, func() (*ingesterState, error) {
		return &ingesterState{}, nil
	})
	actor.On(b, func(_ *actor.Actor[ingesterState], _ *ingesterState, m rawReading) actor.ReceiveAction {
		reading, err := decodeReading(m.Topic, m.Payload)
		if err != nil {
			logger.Warn("sensor: decode failed", "topic", m.Topic, "err", err)
			return actor.Continue
		}
		hub.Broadcast(event.NewEnvelope(reading.DeviceID, event.SensorReading, event.PriorityLow, reading))
		return actor.Continue
	})

	h, err := actor.SpawnActor[ingesterState, rawReading](sys, b)
	if err != nil {
		return nil, err
	}
	if err := h.SendStartSys(); err != nil {
		return nil, err
	}

	brokerURL, err := url.Parse(cfg.BrokerURL)
	if err != nil {
		return nil, fmt.Errorf("sensor: parse broker url: %w", err)
	}

	pahoCfg := autopaho.ClientConfig{
		ServerUrls:      []*url.URL{brokerURL},
		KeepAlive:       30,
		ConnectUsername: cfg.Username,
		ConnectPassword: []byte(cfg.Password),
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			logger.Info("sensor: mqtt connected", "broker", cfg.BrokerURL)
			subCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, err := cm.Subscribe(subCtx, &paho.Subscribe{
				Subscriptions: []paho.SubscribeOptions{{Topic: cfg.TopicFilter, QoS: 0}},
			}); err != nil {
				logger.Error("sensor: subscribe failed", "topic", cfg.TopicFilter, "err", err)
			}
		},
		OnConnectError: func(err error) {
			logger.Warn("sensor: mqtt connection error", "err", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID: cfg.ClientID,
		},
	}

	cm, err := autopaho.NewConnection(ctx, pahoCfg)
	if err != nil {
		return nil, fmt.Errorf("sensor: mqtt connect: %w", err)
	}
	cm.AddOnPublishReceived(func(pr autopaho.PublishReceived) (bool, error) {
		_ = h.SendMsg(context.Background(), rawReading{Topic: pr.Packet.Topic, Payload: pr.Packet.Payload})
		return true, nil
	})
	go func() { <-ctx.Done(); _ = cm.Disconnect(context.Background()) }()

	return h, nil
}

// deviceIDFromTopic pulls the wildcard device-ID segment out of a topic of
// the form "sensors/<device>/reading".
func deviceIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return topic
}

func decodeReading(topic string, payload []byte) (model.SensorReading, error) {
	var r model.SensorReading
	if err := json.Unmarshal(payload, &r); err == nil && r.DeviceID != "" {
		return r, nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		return model.SensorReading{}, fmt.Errorf("sensor: unrecognized payload on %s: %w", topic, err)
	}
	return model.SensorReading{
		DeviceID:   deviceIDFromTopic(topic),
		Kind:       "raw",
		Value:      v,
		RecordedAt: time.Now().UnixMilli(),
	}, nil
}
