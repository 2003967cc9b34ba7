package model

import (
	"strings"
	"time"
)

// MaxTrends is the number of trend slots in a ScrapeResult.
const MaxTrends = 5

// TimestampLayout is the layout of ScrapeResult.Timestamp ("YYYY-MM-DD HH:MM:SS").
// Records sort chronologically by comparing timestamps as strings.
const TimestampLayout = "2006-01-02 15:04:05"

// TrendEntry is one trending topic read from the trending page.
// Topic is never empty and always starts with '#'.
type TrendEntry struct {
	Category  *string `json:"category"`
	Topic     string  `json:"topic"`
	PostCount *string `json:"post_count"`
}

// Valid reports whether the entry satisfies the topic invariant.
func (e TrendEntry) Valid() bool {
	return strings.HasPrefix(e.Topic, "#")
}

// ScrapeResult is the record stored for a successful run.
// The field names in the tags are a contract with every reader of the store.
type ScrapeResult struct {
	ID        string  `json:"_id" bson:"_id"`
	Trend1    *string `json:"trend1" bson:"trend1"`
	Trend2    *string `json:"trend2" bson:"trend2"`
	Trend3    *string `json:"trend3" bson:"trend3"`
	Trend4    *string `json:"trend4" bson:"trend4"`
	Trend5    *string `json:"trend5" bson:"trend5"`
	Timestamp string  `json:"timestamp" bson:"timestamp"`
	IPAddress string  `json:"ip_address" bson:"ip_address"`
}

// NewScrapeResult builds the record for a run.
// Slots are filled left to right from entries; entries beyond MaxTrends are ignored
// and slots beyond len(entries) stay nil.
func NewScrapeResult(id string, entries []TrendEntry, at time.Time, endpoint ProxyEndpoint) *ScrapeResult {
	r := &ScrapeResult{
		ID:        id,
		Timestamp: at.Format(TimestampLayout),
		IPAddress: endpoint.String(),
	}
	slots := r.slots()
	for i, e := range entries {
		if i == MaxTrends {
			break
		}
		topic := e.Topic
		*slots[i] = &topic
	}
	return r
}

// Trends returns the populated trend slots in order.
func (r *ScrapeResult) Trends() []string {
	out := make([]string, 0, MaxTrends)
	for _, s := range r.slots() {
		if *s != nil {
			out = append(out, **s)
		}
	}
	return out
}

// Slot returns the topic in slot i (1-based) and whether it is set.
func (r *ScrapeResult) Slot(i int) (string, bool) {
	if i < 1 || i > MaxTrends {
		return "", false
	}
	p := *r.slots()[i-1]
	if p == nil {
		return "", false
	}
	return *p, true
}

func (r *ScrapeResult) slots() [MaxTrends]**string {
	return [MaxTrends]**string{&r.Trend1, &r.Trend2, &r.Trend3, &r.Trend4, &r.Trend5}
}
