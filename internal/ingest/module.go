// Package ingest starts every data-source actor (ADS-B, FIRMS hotspot, HRRR
// weather, MQTT sensor) against a shared Hub, grounded on the teacher's
// cmd/fx.go module-composition style.
package ingest

import (
	"context"
	"log/slog"

	"github.com/odin-fire/odin-go/config"
	"github.com/odin-fire/odin-go/internal/actor"
	"github.com/odin-fire/odin-go/internal/domain/registry"
	"github.com/odin-fire/odin-go/internal/ingest/adsb"
	"github.com/odin-fire/odin-go/internal/ingest/hotspot"
	"github.com/odin-fire/odin-go/internal/ingest/sensor"
	"github.com/odin-fire/odin-go/internal/ingest/weather"
	"github.com/odin-fire/odin-go/internal/service/enrich"
	"go.uber.org/fx"
)

var Module = fx.Module("ingest",
	enrich.Module,
	fx.Invoke(startIngesters),
)

func startIngesters(lc fx.Lifecycle, sys *actor.ActorSystem, logger *slog.Logger, cfg *config.Config, hub registry.Hubber, enricher enrich.Enricher) error {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.Ingest.ADSBAddr != "" {
				if _, err := adsb.Spawn(sys, logger, cfg.Ingest.ADSBAddr, enricher, hub); err != nil {
					return err
				}
			}
			if cfg.Ingest.FIRMSMapKey != "" {
				if _, err := hotspot.Spawn(sys, logger, "https://firms.modaps.eosdis.nasa.gov/api/area/csv",
					cfg.Ingest.FIRMSMapKey, nil, cfg.Ingest.HotspotInterval, hub); err != nil {
					return err
				}
			}
			if cfg.Ingest.HRRRModel != "" {
				if _, err := weather.Spawn(sys, logger, cfg.Ingest.HRRRModel,
					"https://nomads.ncep.noaa.gov/pub/data/nccf/com/hrrr/prod/%s.idx?cycle=%02d", 0, hub); err != nil {
					return err
				}
			}
			if cfg.Ingest.MQTTBrokerURL != "" {
				if _, err := sensor.Spawn(ctx, sys, logger, sensor.Config{
					BrokerURL:   cfg.Ingest.MQTTBrokerURL,
					ClientID:    cfg.ServiceName + "-sensor",
					TopicFilter: "sensors/+/reading",
				}, hub); err != nil {
					return err
				}
			}
			return nil
		},
	})
	return nil
}
