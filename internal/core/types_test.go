package core

import (
	"testing"
	"time"
)

func TestParseEventType(t *testing.T) {
	tests := []struct {
		in   string
		want EventType
	}{
		{"Exit Long", EventExit},
		{"exit short", EventExit},
		{"  EXIT", EventExit},
		{"Entry Long", EventEntry},
		{"entry", EventEntry},
		{"Open", EventUnknown},
		{"", EventUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseEventType(tt.in); got != tt.want {
				t.Errorf("ParseEventType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTradeRecord_IsWin(t *testing.T) {
	tests := []struct {
		name  string
		trade TradeRecord
		want  bool
	}{
		{"positive return", TradeRecord{ProfitFraction: 0.05}, true},
		{"negative return", TradeRecord{ProfitFraction: -0.02}, false},
		{"zero return", TradeRecord{ProfitFraction: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.trade.IsWin(); got != tt.want {
				t.Errorf("IsWin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTradeRecord_Duration(t *testing.T) {
	start := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	trade := TradeRecord{StartTime: start, EndTime: start.Add(90 * time.Minute)}
	if trade.Duration() != 90*time.Minute {
		t.Errorf("Duration() = %v, want 90m", trade.Duration())
	}
}

func TestSkipReason(t *testing.T) {
	if SkipNone.Skipped() {
		t.Error("SkipNone should not be skipped")
	}
	if !SkipInsufficientCapacity.Skipped() || !SkipLossStreakExceeded.Skipped() {
		t.Error("named reasons should be skipped")
	}
	if SkipNone.String() != "none" {
		t.Errorf("SkipNone.String() = %q, want none", SkipNone.String())
	}
	if SkipLossStreakExceeded.String() != "loss_streak_exceeded" {
		t.Errorf("unexpected string %q", SkipLossStreakExceeded.String())
	}
}
