package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cosmohub/subgridemu/cmd/emulatord/metrics"
	"github.com/cosmohub/subgridemu/pkg/artifact"
	"github.com/cosmohub/subgridemu/pkg/emulator"
	"github.com/cosmohub/subgridemu/pkg/storage"
)

// service owns the surrogate cache and serves predictions.
//
// Surrogates are loaded lazily on first use and kept resident for the
// lifetime of the process. A loaded surrogate holds its own random source
// and is not safe for concurrent sampling, so each cached emulator carries
// its own mutex and requests for the same statistic serialize on it.
// Requests for different statistics proceed in parallel.
type service struct {
	source  artifact.Source
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu   sync.Mutex
	emus map[string]*emuEntry
}

type emuEntry struct {
	mu  sync.Mutex
	emu *emulator.Emulator
}

func newService(source artifact.Source, store storage.Store, m *metrics.Metrics, logger *slog.Logger) *service {
	return &service{
		source:  source,
		store:   store,
		metrics: m,
		logger:  logger,
		emus:    make(map[string]*emuEntry),
	}
}

// Predict serves one prediction, consulting the result cache first.
//
// samples must already be resolved to a positive value by the caller.
// Cache writes are best effort: a failing cache never fails a prediction.
func (s *service) Predict(ctx context.Context, statistic string, params []float64, samples, zIndex int) (*emulator.Result, bool, error) {
	key := storage.Key(statistic, zIndex, params, samples)

	record, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache lookup failed", "statistic", statistic, "error", err)
		s.metrics.RecordError("cache", "get")
	}
	if found {
		s.metrics.RecordCacheHit()
		return &record.Result, true, nil
	}
	s.metrics.RecordCacheMiss()

	entry, err := s.getEmulator(ctx, statistic, zIndex)
	if err != nil {
		return nil, false, err
	}

	entry.mu.Lock()
	start := time.Now()
	result, err := entry.emu.Predict(params, samples)
	elapsed := time.Since(start)
	entry.mu.Unlock()

	if err != nil {
		s.metrics.RecordError("emulator", "predict")
		return nil, false, err
	}
	s.metrics.RecordPredict(statistic, elapsed.Seconds())

	putErr := s.store.Put(ctx, storage.Record{
		Key:         key,
		Statistic:   statistic,
		ZIndex:      zIndex,
		Params:      append([]float64(nil), params...),
		GeneratedAt: time.Now(),
		Result:      *result,
	})
	if putErr != nil {
		s.logger.Warn("cache store failed", "statistic", statistic, "error", putErr)
		s.metrics.RecordError("cache", "put")
	}

	return result, false, nil
}

// getEmulator returns the resident emulator for a statistic and epoch,
// loading it on first use. The map lock is held only for lookup and
// insertion; the load itself runs under the entry lock so a slow decode
// of one statistic does not block others.
func (s *service) getEmulator(ctx context.Context, statistic string, zIndex int) (*emuEntry, error) {
	cacheKey := fmt.Sprintf("%s/z%d", statistic, zIndex)

	s.mu.Lock()
	entry, ok := s.emus[cacheKey]
	if !ok {
		entry = &emuEntry{}
		s.emus[cacheKey] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.emu != nil {
		return entry, nil
	}

	start := time.Now()
	emu, err := emulator.Load(ctx, s.source, statistic, artifact.LoadOptions{ZIndex: zIndex})
	if err != nil {
		s.metrics.RecordError("loader", "load")

		// Drop the placeholder so a later request can retry the load.
		s.mu.Lock()
		delete(s.emus, cacheKey)
		s.mu.Unlock()

		return nil, err
	}

	s.logger.Info("surrogate loaded",
		"statistic", statistic,
		"z_index", zIndex,
		"grid_points", len(emu.Grid()),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	s.metrics.RecordLoad(time.Since(start).Seconds())

	entry.emu = emu

	s.mu.Lock()
	s.metrics.SetLoadedSurrogates(len(s.emus))
	s.mu.Unlock()

	return entry, nil
}
