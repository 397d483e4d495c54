package journal

import (
	"testing"
	"time"
)

func TestQueryMatches(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)

	exchange := &Exchange{
		RequestID:  "abc-123",
		Method:     "GET",
		StatusCode: 200,
		StartedAt:  now,
	}
	failed := &Exchange{
		RequestID:   "def-456",
		Method:      "POST",
		StatusCode:  500,
		StartedAt:   earlier,
		FailureKind: "transport",
	}

	tests := []struct {
		name     string
		query    *Query
		exchange *Exchange
		want     bool
	}{
		{"nil query", nil, exchange, true},
		{"empty query", &Query{}, exchange, true},
		{"request id match", &Query{RequestID: "abc-123"}, exchange, true},
		{"request id mismatch", &Query{RequestID: "nope"}, exchange, false},
		{"method mismatch", &Query{Method: "POST"}, exchange, false},
		{"status match", &Query{Status: 500}, failed, true},
		{"failed only excludes success", &Query{Failed: true}, exchange, false},
		{"failed only keeps failure", &Query{Failed: true}, failed, true},
		{"since excludes older", &Query{Since: &now}, failed, false},
		{"since is inclusive", &Query{Since: &now}, exchange, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(tt.exchange); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryEffectiveLimit(t *testing.T) {
	var nilQuery *Query
	if got := nilQuery.EffectiveLimit(); got != DefaultQueryLimit {
		t.Errorf("nil query limit = %d, want %d", got, DefaultQueryLimit)
	}
	if got := (&Query{Limit: 5}).EffectiveLimit(); got != 5 {
		t.Errorf("limit = %d, want 5", got)
	}
}
