package data

import "time"

// TimeProvider abstracts time.Now so repositories can stamp rows
// deterministically in tests.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider returns the actual current time.
type RealTimeProvider struct{}

// Now implements TimeProvider.
func (*RealTimeProvider) Now() time.Time { return time.Now() }
