package bins

import (
	"encoding/json"
	"time"
)

// TimeLayout is the wall-clock format recorded for last-emptied timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// Bin is the live record for one provisioned waste bin. Identity, position,
// address and threshold are fixed at provisioning; only the fill level and
// the last-emptied timestamp change afterwards.
type Bin struct {
	ID           string
	Label        string
	Level        float64
	Latitude     float64
	Longitude    float64
	Address      string
	LowThreshold float64
	LastEmpty    string
}

// applyLevel records an observed fill level verbatim and derives the
// last-emptied timestamp. The timestamp is one-shot: it is stamped the first
// time the level is seen below the bin's threshold while unset, and is never
// cleared afterwards, so repeated low readings leave it untouched.
func (b *Bin) applyLevel(level float64, observedAt time.Time) {
	b.Level = level
	if level < b.LowThreshold && b.LastEmpty == "" {
		b.LastEmpty = observedAt.Format(TimeLayout)
	}
}

// MarshalJSON emits the wire shape pushed to live subscribers and served by
// the snapshot endpoint. An unset last-emptied timestamp serializes as null.
func (b Bin) MarshalJSON() ([]byte, error) {
	var lastEmpty *string
	if b.LastEmpty != "" {
		lastEmpty = &b.LastEmpty
	}
	return json.Marshal(struct {
		Bin       string  `json:"bin"`
		Level     float64 `json:"level"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Address   string  `json:"address"`
		LastEmpty *string `json:"lastEmpty"`
	}{b.Label, b.Level, b.Latitude, b.Longitude, b.Address, lastEmpty})
}
