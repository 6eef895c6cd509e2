// Package telemetry provides run statistics, decode event logging and
// performance tracking.
package telemetry

import "log/slog"

// DecodeEvent records one character leaving the bit buffer.
type DecodeEvent struct {
	Tick    int32  `csv:"tick"`
	Index   int    `csv:"index"` // Position in the message; -1 when dropped
	Code    int    `csv:"code"`  // Stored byte value
	Char    string `csv:"char"`
	Dropped bool   `csv:"dropped"`
}

// NewDecodeEvent creates an event for a character stored at index.
func NewDecodeEvent(tick int32, index int, c byte) DecodeEvent {
	return DecodeEvent{
		Tick:  tick,
		Index: index,
		Code:  int(c),
		Char:  string(rune(c)),
	}
}

// NewDropEvent creates an event for a character decoded while the message
// was already full.
func NewDropEvent(tick int32) DecodeEvent {
	return DecodeEvent{
		Tick:    tick,
		Index:   -1,
		Dropped: true,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (e DecodeEvent) LogValue() slog.Value {
	if e.Dropped {
		return slog.GroupValue(
			slog.Int("tick", int(e.Tick)),
			slog.Bool("dropped", true),
		)
	}
	return slog.GroupValue(
		slog.Int("tick", int(e.Tick)),
		slog.Int("index", e.Index),
		slog.Int("code", e.Code),
		slog.String("char", e.Char),
	)
}
