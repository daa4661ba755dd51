// Package enrich resolves station/aircraft metadata for ingested positions
// and hotspots, grounded on the teacher's internal/service/peer_enricher.go
// cache-aside + parallel-resolve shape, retargeted from chat Peer identities
// to ODIN subjects.
package enrich

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/odin-fire/odin-go/internal/domain/model"
	"golang.org/x/sync/errgroup"
)

// Fetcher resolves a single subject's metadata from whatever registry
// backs it (a static aircraft database, a tile gazetteer, ...). Swappable
// per ingester so the cache-aside logic below stays domain-agnostic.
type Fetcher func(ctx context.Context, subjectID string) (model.StationInfo, error)

// Enricher is the high-level contract ingester actors call against.
type Enricher interface {
	Resolve(ctx context.Context, subjectID string) (model.StationInfo, error)
	ResolveAll(ctx context.Context, subjectIDs []string) (map[string]model.StationInfo, error)
}

type stationEnricher struct {
	fetch Fetcher
	cache *lru.Cache[string, model.StationInfo]
}

// NewStationEnricher wraps fetch in an LRU cache holding up to capacity
// resolved entries.
func NewStationEnricher(fetch Fetcher, capacity int) Enricher {
	cache, _ := lru.New[string, model.StationInfo](capacity)
	return &stationEnricher{fetch: fetch, cache: cache}
}

func (e *stationEnricher) Resolve(ctx context.Context, subjectID string) (model.StationInfo, error) {
	if subjectID == "" {
		return model.StationInfo{}, nil
	}
	if cached, ok := e.cache.Get(subjectID); ok {
		return cached, nil
	}

	info, err := e.fetch(ctx, subjectID)
	if err != nil {
		// graceful fallback: keep the ingest pipeline moving with a bare
		// identity rather than stalling on a metadata-lookup failure
		return model.StationInfo{ID: subjectID}, nil
	}

	e.cache.Add(subjectID, info)
	return info, nil
}

// ResolveAll fans out one Resolve per subject concurrently, failing the
// whole batch only if every lookup's own internal fallback still errors
// (which Resolve never does — ResolveAll therefore effectively never fails,
// mirroring the teacher's resilience choice in enrichFromContacts).
func (e *stationEnricher) ResolveAll(ctx context.Context, subjectIDs []string) (map[string]model.StationInfo, error) {
	g, gCtx := errgroup.WithContext(ctx)
	results := make([]model.StationInfo, len(subjectIDs))

	for i, id := range subjectIDs {
		i, id := i, id
		g.Go(func() error {
			info, err := e.Resolve(gCtx, id)
			if err != nil {
				return fmt.Errorf("enrich %s: %w", id, err)
			}
			results[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]model.StationInfo, len(subjectIDs))
	for i, id := range subjectIDs {
		out[id] = results[i]
	}
	return out, nil
}
