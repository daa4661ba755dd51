package enrich

import (
	"context"

	"github.com/odin-fire/odin-go/internal/domain/model"
	"go.uber.org/fx"
)

// Module provides an Enricher backed by a bare-identity Fetcher: ODIN ships
// with no external tail-number/registry lookup service wired in (out of
// scope), so resolution always falls back to the subject ID itself, but the
// cache-aside/errgroup machinery is exercised exactly as it would be with a
// real Fetcher plugged in.
var Module = fx.Module("enrich",
	fx.Provide(func() Enricher {
		return NewStationEnricher(identityFetcher, 4096)
	}),
)

func identityFetcher(_ context.Context, subjectID string) (model.StationInfo, error) {
	return model.StationInfo{ID: subjectID}, nil
}
