package storage

import (
	"context"
	"time"

	"threatshare/core"
	"threatshare/search"
)

// IOCStorage is implemented by every IOC backend
type IOCStorage interface {
	search.Store

	// CreateIOC inserts a new record. Returns ErrDuplicateIOC when the
	// (type, value) pair is already stored.
	CreateIOC(ctx context.Context, ioc *core.IOC) error
	GetIOC(ctx context.Context, id string) (*core.IOC, error)
	UpdateIOCStatus(ctx context.Context, id string, status core.IOCStatus) error
	// IncrementVerification atomically bumps the verification count and returns the updated record
	IncrementVerification(ctx context.Context, id string) (*core.IOC, error)
	PopularTags(ctx context.Context, limit int) ([]TagCount, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	HealthCheck(ctx context.Context) error
}

// Dashboard limits
const (
	DashboardRecentLimit = 5
	DashboardDaysLimit   = 30
	PopularTagsLimit     = 20
)

// TagCount is the number of IOCs carrying a tag
type TagCount struct {
	Name  string `json:"name" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// GroupCount is the size of one group in an aggregation
type GroupCount struct {
	ID    string `json:"_id" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// DayKey identifies a UTC calendar day
type DayKey struct {
	Year  int `json:"year" bson:"year"`
	Month int `json:"month" bson:"month"`
	Day   int `json:"day" bson:"day"`
}

// DailyCount is the number of IOCs submitted on one day
type DailyCount struct {
	ID    DayKey `json:"_id" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// RecentSubmission is the short form of an IOC shown on the dashboard
type RecentSubmission struct {
	ID          string           `json:"id" bson:"_id"`
	Type        core.IOCType     `json:"type" bson:"type"`
	Value       string           `json:"value" bson:"value"`
	ThreatLevel core.ThreatLevel `json:"threatLevel" bson:"threatLevel"`
	CreatedAt   time.Time        `json:"createdAt" bson:"createdAt"`
}

// DashboardStats summarizes the IOC collection
type DashboardStats struct {
	TotalIOCs           int64              `json:"totalIOCs"`
	IOCsByType          []GroupCount       `json:"iocsByType"`
	IOCsByThreatLevel   []GroupCount       `json:"iocsByThreatLevel"`
	RecentSubmissions   []RecentSubmission `json:"recentSubmissions"`
	SubmissionsOverTime []DailyCount       `json:"submissionsOverTime"`
}
