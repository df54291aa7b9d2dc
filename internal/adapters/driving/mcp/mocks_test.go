package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error

	gotQuery string
	gotTopK  int
}

func (m *mockSearchService) Search(_ context.Context, query string, topK int) ([]domain.SearchResult, error) {
	m.gotQuery = query
	m.gotTopK = topK
	return m.results, m.err
}

// mockVersionService is a mock implementation of driving.VersionService.
type mockVersionService struct {
	versions   []domain.Version
	active     string
	listErr    error
	promoteErr error
	promoted   string
}

func (m *mockVersionService) CreateVersion(_ context.Context, id string) (*domain.Version, error) {
	return &domain.Version{Name: "docs_" + id, State: domain.VersionBuilding}, nil
}

func (m *mockVersionService) AtomicSwap(_ context.Context, name string) error {
	if m.promoteErr != nil {
		return m.promoteErr
	}
	m.active = name
	return nil
}

func (m *mockVersionService) Promote(ctx context.Context, versionID string) (bool, error) {
	if err := m.AtomicSwap(ctx, versionID); err != nil {
		return false, err
	}
	m.promoted = versionID
	return true, nil
}

func (m *mockVersionService) Rollback(_ context.Context) (*domain.Version, error) {
	return nil, domain.ErrNoRollbackTarget
}

func (m *mockVersionService) Active() string { return m.active }

func (m *mockVersionService) List(_ context.Context) ([]domain.Version, error) {
	return m.versions, m.listErr
}

func (m *mockVersionService) Namespace() string { return "docs" }

func newTestServer(search *mockSearchService, versions *mockVersionService) (*Server, error) {
	if search == nil {
		search = &mockSearchService{}
	}
	if versions == nil {
		versions = &mockVersionService{}
	}
	return NewServer(&Ports{Search: search, Versions: versions})
}
