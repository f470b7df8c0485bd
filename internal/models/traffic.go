package models

// TrafficStats is the aggregate shown on the admin dashboard.
type TrafficStats struct {
	TotalVisits    int64   `json:"total_visits"`
	UniqueVisitors int64   `json:"unique_visitors"`
	PagesPerVisit  float64 `json:"pages_per_visit"`
	SearchCount    int64   `json:"search_count"`
}
