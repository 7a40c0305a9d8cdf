package collector

import (
	"context"
	"fmt"
	"sync"

	"KursPajak/internal/model"
)

// MockFetcher serves canned pages keyed by week code, for development and testing.
// Weeks listed in Status answer with that HTTP status; unknown weeks get Default.
type MockFetcher struct {
	Pages   map[string][]byte
	Status  map[string]int
	Default []byte

	mu        sync.Mutex
	requested []model.WeekWindow
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, w model.WeekWindow) ([]byte, error) {
	m.mu.Lock()
	m.requested = append(m.requested, w)
	m.mu.Unlock()

	if code, ok := m.Status[w.Code]; ok {
		return nil, &FetchFailure{WeekCode: w.Code, StatusCode: code}
	}
	if page, ok := m.Pages[w.Code]; ok {
		return page, nil
	}
	if m.Default != nil {
		return m.Default, nil
	}
	return nil, &FetchFailure{WeekCode: w.Code, Err: fmt.Errorf("no canned page")}
}

// Requested returns the windows fetched so far, in call order.
func (m *MockFetcher) Requested() []model.WeekWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.WeekWindow(nil), m.requested...)
}
