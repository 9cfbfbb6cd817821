package core

import (
	"strings"
	"time"
)

// EventType classifies a raw trade-log row
type EventType string

const (
	EventEntry   EventType = "entry"
	EventExit    EventType = "exit"
	EventUnknown EventType = "unknown"
)

// ParseEventType maps a raw type label ("Entry Long", "Exit Short", "exit") to an EventType
func ParseEventType(s string) EventType {
	label := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(label, "exit"):
		return EventExit
	case strings.HasPrefix(label, "entry"):
		return EventEntry
	default:
		return EventUnknown
	}
}

// RawEvent is one row of a per-symbol trade log, before pairing
type RawEvent struct {
	Type          EventType
	Timestamp     time.Time
	ProfitPercent float64 // percentage points, e.g. 5 = +5%
}

// SymbolLog is the raw, ordered event log of one instrument
type SymbolLog struct {
	Symbol string
	Events []RawEvent
}

// TradeRecord is one closed round-trip trade
type TradeRecord struct {
	Symbol         string
	StartTime      time.Time
	EndTime        time.Time
	ProfitFraction float64 // 0.05 = +5%
}

// IsWin returns true if the trade was strictly profitable
func (t TradeRecord) IsWin() bool {
	return t.ProfitFraction > 0
}

// Duration returns how long the trade was open
func (t TradeRecord) Duration() time.Duration {
	return t.EndTime.Sub(t.StartTime)
}

// SkipReason explains why a trade was not taken
type SkipReason string

const (
	SkipNone                 SkipReason = ""
	SkipInsufficientCapacity SkipReason = "insufficient_capacity"
	SkipLossStreakExceeded   SkipReason = "loss_streak_exceeded"
)

// Skipped returns true for any reason other than SkipNone
func (r SkipReason) Skipped() bool {
	return r != SkipNone
}

// String renders SkipNone as "none" for reports
func (r SkipReason) String() string {
	if r == SkipNone {
		return "none"
	}
	return string(r)
}
