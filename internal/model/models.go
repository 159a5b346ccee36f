package model

import "time"

// Plan is the subscription tier of a user. The authoritative value lives on
// the remote status endpoint; the local copy is a cache.
type Plan string

const (
	PlanFree Plan = "FREE"
	PlanPro  Plan = "PRO"
)

// DateLayout is the calendar-date format used for LastUsageDate.
const DateLayout = "2006-01-02"

// UserRecord is the locally cached user profile and quota state.
//
// ID is the stable identity and is never regenerated for a returning user.
// DailyUsageCount is only meaningful for the day in LastUsageDate
// (YYYY-MM-DD, local timezone).
type UserRecord struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	AvatarURL       string `json:"avatarUrl"`
	Plan            Plan   `json:"plan"`
	DailyUsageCount int    `json:"dailyUsageCount"`
	LastUsageDate   string `json:"lastUsageDate"`
}

// NutritionalData is the estimate returned by the inference service.
type NutritionalData struct {
	FoodName string  `json:"foodName"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"` // grams
	Carbs    float64 `json:"carbs"`   // grams
	Fat      float64 `json:"fat"`     // grams
	Notes    string  `json:"notes"`
}

// HistoryEntry is one completed analysis. Entries are immutable once created.
type HistoryEntry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	TextInput string          `json:"textInput,omitempty"`
	ImageURL  string          `json:"imageUrl,omitempty"` // base64 data URL or raw base64
	Data      NutritionalData `json:"data"`
}

// NotificationKind classifies a user-facing notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

// Notification is a transient message for the user. At most one is active.
type Notification struct {
	Kind      NotificationKind
	Message   string
	Details   string
	CreatedAt time.Time
}
