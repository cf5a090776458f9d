package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

// --- Mock PlaceRepository ---

type mockPlaceRepo struct {
	queryFn       func(ctx context.Context, clientID string, filter domain.PlaceFilter) ([]domain.SourcePlace, error)
	upsertBatchFn func(ctx context.Context, places []domain.SourcePlace) error
}

func (m *mockPlaceRepo) Query(ctx context.Context, clientID string, filter domain.PlaceFilter) ([]domain.SourcePlace, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, clientID, filter)
	}
	return nil, nil
}

func (m *mockPlaceRepo) UpsertBatch(ctx context.Context, places []domain.SourcePlace) error {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, places)
	}
	return nil
}

// --- Mock ExportRepository ---

type mockExportRepo struct {
	createFn       func(ctx context.Context, rec *domain.ExportRecord) error
	getByIDFn      func(ctx context.Context, id string) (*domain.ExportRecord, error)
	listByClientFn func(ctx context.Context, clientID string, limit, offset int) ([]domain.ExportRecord, error)
	countFn        func(ctx context.Context, clientID string) (int, error)
}

func (m *mockExportRepo) Create(ctx context.Context, rec *domain.ExportRecord) error {
	if m.createFn != nil {
		return m.createFn(ctx, rec)
	}
	return nil
}

func (m *mockExportRepo) GetByID(ctx context.Context, id string) (*domain.ExportRecord, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockExportRepo) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.ExportRecord, error) {
	if m.listByClientFn != nil {
		return m.listByClientFn(ctx, clientID, limit, offset)
	}
	return nil, nil
}

func (m *mockExportRepo) CountByClient(ctx context.Context, clientID string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, clientID)
	}
	return 0, nil
}

func (m *mockExportRepo) Delete(ctx context.Context, id string) error { return nil }

// --- Mock ObjectStorage ---

type mockStorage struct {
	mu       sync.Mutex
	objects  map[string][]byte
	uploadFn func(ctx context.Context, key string, data []byte) (string, error)
	deleted  []string
}

func newMockStorage() *mockStorage { return &mockStorage{objects: make(map[string][]byte)} }

func (m *mockStorage) Upload(ctx context.Context, key string, data []byte) (string, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return "https://files.example.test/" + key, nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	requested []*domain.ExportRequest
	completed []*domain.ExportCompleted
	failed    []*domain.ExportFailed
	err       error
}

func (m *mockPublisher) PublishExportRequested(ctx context.Context, req *domain.ExportRequest) error {
	if m.err != nil {
		return m.err
	}
	m.requested = append(m.requested, req)
	return nil
}

func (m *mockPublisher) PublishExportCompleted(ctx context.Context, event *domain.ExportCompleted) error {
	if m.err != nil {
		return m.err
	}
	m.completed = append(m.completed, event)
	return nil
}

func (m *mockPublisher) PublishExportFailed(ctx context.Context, event *domain.ExportFailed) error {
	if m.err != nil {
		return m.err
	}
	m.failed = append(m.failed, event)
	return nil
}

// --- Mock CacheService ---

type mockCache struct {
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Mock SupplierRepository ---

type mockSupplierRepo struct {
	upserted  []*domain.Supplier
	getByIDFn func(ctx context.Context, id string) (*domain.Supplier, error)
}

func (m *mockSupplierRepo) Upsert(ctx context.Context, s *domain.Supplier) error {
	m.upserted = append(m.upserted, s)
	return nil
}

func (m *mockSupplierRepo) GetByID(ctx context.Context, id string) (*domain.Supplier, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockSupplierRepo) ListByClient(ctx context.Context, clientID string) ([]domain.Supplier, error) {
	return nil, nil
}
