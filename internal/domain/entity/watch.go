package entity

import (
	"encoding/json"
	"time"
)

// WatchStatus price alarm lifecycle
type WatchStatus string

const (
	WatchActive    WatchStatus = "active"
	WatchTriggered WatchStatus = "triggered"
	WatchStopped   WatchStatus = "stopped"
	WatchFailed    WatchStatus = "failed"
)

// Watch price alarm on a product query
type Watch struct {
	ID            string        `json:"id"`
	Product       string        `json:"product"`
	TargetPrice   float64       `json:"target_price"`
	Interval      time.Duration `json:"-"`
	ChatID        int64         `json:"chat_id"`
	Status        WatchStatus   `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	LastCheckedAt time.Time     `json:"last_checked_at,omitempty"`
	LastBestPrice float64       `json:"last_best_price,omitempty"`
	Checks        int           `json:"checks"`
	Hit           *Offer        `json:"hit,omitempty"`
}

// Done reports whether the watch loop has finished
func (w Watch) Done() bool {
	return w.Status != WatchActive
}

type watchJSON Watch

// MarshalJSON reports the interval in whole minutes, like the create request
func (w Watch) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		watchJSON
		IntervalMinutes int `json:"interval_minutes"`
	}{watchJSON(w), int(w.Interval / time.Minute)})
}

func (w *Watch) UnmarshalJSON(data []byte) error {
	var v struct {
		watchJSON
		IntervalMinutes int `json:"interval_minutes"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*w = Watch(v.watchJSON)
	w.Interval = time.Duration(v.IntervalMinutes) * time.Minute
	return nil
}

// WatchRequest input for starting a watch
type WatchRequest struct {
	Product     string
	TargetPrice float64
	Interval    time.Duration
	ChatID      int64
}
