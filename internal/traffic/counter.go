// Package traffic counts visits, page views and searches for the admin dashboard.
package traffic

import (
	"context"
	"math"
	"sync"

	"github.com/businessbook/directory/internal/models"
)

// Counter records traffic events and aggregates them.
type Counter interface {
	RecordVisit(ctx context.Context, visitorID string) error
	RecordPageView(ctx context.Context, visitorID string) error
	RecordSearch(ctx context.Context) error
	Stats(ctx context.Context) (models.TrafficStats, error)
}

// Memory is a process-local Counter.
type Memory struct {
	mu        sync.Mutex
	visits    int64
	pageViews int64
	searches  int64
	visitors  map[string]struct{}
}

// NewMemory creates an empty in-memory counter.
func NewMemory() *Memory {
	return &Memory{visitors: make(map[string]struct{})}
}

// RecordVisit counts a visit from visitorID.
func (m *Memory) RecordVisit(_ context.Context, visitorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visits++
	m.visitors[visitorID] = struct{}{}
	return nil
}

// RecordPageView counts a page view; the viewer also counts as a visitor.
func (m *Memory) RecordPageView(_ context.Context, visitorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageViews++
	m.visitors[visitorID] = struct{}{}
	return nil
}

// RecordSearch counts one search.
func (m *Memory) RecordSearch(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches++
	return nil
}

// Stats returns the current aggregate.
func (m *Memory) Stats(_ context.Context) (models.TrafficStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return aggregate(m.visits, int64(len(m.visitors)), m.pageViews, m.searches), nil
}

func aggregate(visits, unique, pageViews, searches int64) models.TrafficStats {
	return models.TrafficStats{
		TotalVisits:    visits,
		UniqueVisitors: unique,
		PagesPerVisit:  pagesPerVisit(pageViews, visits),
		SearchCount:    searches,
	}
}

// pagesPerVisit is rounded to one decimal; zero visits gives zero.
func pagesPerVisit(pageViews, visits int64) float64 {
	if visits <= 0 {
		return 0
	}
	return math.Round(float64(pageViews)/float64(visits)*10) / 10
}
