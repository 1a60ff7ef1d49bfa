package risk

import (
	"context"
	"sync"

	"github.com/phip-project/phip/internal/service/features"
	"golang.org/x/sync/singleflight"
)

// Registry holds one model per disease and hands them to request handlers.
// The first caller for an uncached disease loads or trains it under a
// per-disease single-flight guard; latecomers block and reuse the result,
// so a cold start never trains the same disease twice concurrently.
type Registry struct {
	cfg      Config
	features *features.Service

	mu     sync.RWMutex
	models map[string]*Model
	group  singleflight.Group
}

func NewRegistry(featureSvc *features.Service, cfg Config) *Registry {
	return &Registry{
		cfg:      cfg,
		features: featureSvc,
		models:   make(map[string]*Model),
	}
}

// Get returns the cached model for the disease, loading a persisted
// artifact or training from scratch on first use.
func (r *Registry) Get(ctx context.Context, disease string) (*Model, error) {
	r.mu.RLock()
	model, ok := r.models[disease]
	r.mu.RUnlock()
	if ok {
		return model, nil
	}

	v, err, _ := r.group.Do(disease, func() (interface{}, error) {
		r.mu.RLock()
		cached, ok := r.models[disease]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		m := NewModel(disease, r.features, r.cfg)
		if err := m.Load(); err != nil {
			return nil, err
		}
		if !m.Trained() {
			if err := m.Train(ctx); err != nil {
				return nil, err
			}
		}

		r.mu.Lock()
		r.models[disease] = m
		r.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Model), nil
}

// Retrain trains a fresh model for the disease and swaps it into the cache.
// Readers keep scoring against the previous instance until the swap.
func (r *Registry) Retrain(ctx context.Context, disease string) (*Model, error) {
	m := NewModel(disease, r.features, r.cfg)
	if err := m.Train(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.models[disease] = m
	r.mu.Unlock()
	return m, nil
}
