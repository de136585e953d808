package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"media-job-service/internal/entity"
)

type memAssets struct {
	mu         sync.Mutex
	assets     map[uuid.UUID]*entity.Asset
	order      []uuid.UUID
	thumbnails map[uuid.UUID]string
	setErr     error
}

func newMemAssets(assets ...entity.Asset) *memAssets {
	m := &memAssets{assets: map[uuid.UUID]*entity.Asset{}, thumbnails: map[uuid.UUID]string{}}
	for i := range assets {
		a := assets[i]
		m.assets[a.ID] = &a
		m.order = append(m.order, a.ID)
	}
	return m
}

func (m *memAssets) GetByID(ctx context.Context, id uuid.UUID) (*entity.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAssets) ListWithoutThumbnail(ctx context.Context, limit int) ([]entity.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Asset
	for _, id := range m.order {
		a := m.assets[id]
		if a.ThumbnailURL == nil && len(out) < limit {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAssets) SetThumbnail(ctx context.Context, id uuid.UUID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	a, ok := m.assets[id]
	if !ok {
		return entity.ErrNotFound
	}
	a.ThumbnailURL = &url
	m.thumbnails[id] = url
	return nil
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failKey string
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (s *memStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key == s.failKey {
		return "", errors.New("storage: provider unavailable")
	}
	s.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type memRenditions struct {
	mu   sync.Mutex
	rows map[uuid.UUID][]entity.Rendition
}

func newMemRenditions() *memRenditions {
	return &memRenditions{rows: map[uuid.UUID][]entity.Rendition{}}
}

func (r *memRenditions) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]entity.Rendition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Rendition(nil), r.rows[assetID]...), nil
}

func (r *memRenditions) add(assetID uuid.UUID, tiers ...entity.Tier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tiers {
		r.rows[assetID] = append(r.rows[assetID], entity.Rendition{ID: uuid.New(), AssetID: assetID, Resolution: t})
	}
}

func (r *memRenditions) tiers(assetID uuid.UUID) []entity.Tier {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Tier
	for _, rd := range r.rows[assetID] {
		out = append(out, rd.Resolution)
	}
	return out
}
