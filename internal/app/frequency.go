package app

import (
	"time"

	"campus_rentals/internal/domain"
)

const (
	dailyWindow  = 24 * time.Hour
	weeklyWindow = 7 * 24 * time.Hour
)

// ShouldNotify reports whether s is due for a digest at now. A search that
// was never notified is always due; an unknown frequency never is.
func ShouldNotify(s domain.SavedSearch, now time.Time) bool {
	if !s.EmailNotifications {
		return false
	}
	switch s.NotificationFrequency {
	case domain.FrequencyInstant:
		return true
	case domain.FrequencyDaily:
		return s.LastNotified == nil || s.LastNotified.Before(now.Add(-dailyWindow))
	case domain.FrequencyWeekly:
		return s.LastNotified == nil || s.LastNotified.Before(now.Add(-weeklyWindow))
	}
	return false
}
