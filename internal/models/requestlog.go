package models

import "time"

// RequestLog records one inbound HTTP request for auditing. Rows are
// written off the critical path by the request-log worker pool.
type RequestLog struct {
	ID         uint   `gorm:"primaryKey"`
	Method     string `gorm:"size:8"`
	Path       string `gorm:"size:255"`
	Query      string `gorm:"size:512"`
	IPAddress  string `gorm:"size:50"`
	UserAgent  string `gorm:"size:255"`
	StatusCode int
	LatencyMs  int64
	Timestamp  time.Time
}

// RequestLogEvent is the lightweight event passed through the logging
// channel between the middleware and the workers.
type RequestLogEvent struct {
	Method     string
	Path       string
	Query      string
	IPAddress  string
	UserAgent  string
	StatusCode int
	Latency    time.Duration
	Timestamp  time.Time
}
