package model

import "time"

// EditEvent records one user change to a field during a tracked session.
// OriginalValue is always the extraction baseline for that field, not the
// previous edited value, so every event measures drift from the machine's
// first guess.
type EditEvent struct {
	FieldName     string    `json:"fieldName"`
	OriginalValue string    `json:"originalValue"`
	NewValue      string    `json:"newValue"`
	Timestamp     time.Time `json:"timestamp"`
}

// EditSession is one closed extraction-to-finalization lifecycle. Sessions
// are persisted wholesale when tracking stops and are immutable afterward.
type EditSession struct {
	SessionID  string      `json:"sessionId"`
	RecordedAt time.Time   `json:"timestamp"`
	Edits      []EditEvent `json:"edits"`
}

// Statistics aggregates all persisted edit sessions.
type Statistics struct {
	TotalSessions     int            `json:"totalSessions"`
	TotalEdits        int            `json:"totalEdits"`
	EditsByField      map[string]int `json:"editsByField"`
	SessionsWithEdits int            `json:"sessionsWithEdits"`
}

// Accuracy derives the extraction accuracy percentage: the share of sessions
// the user accepted without a single correction. Defined as 100 when no
// session has edits, including the zero-session case.
func (s Statistics) Accuracy() float64 {
	if s.SessionsWithEdits == 0 {
		return 100
	}
	return 100 * (1 - float64(s.SessionsWithEdits)/float64(s.TotalSessions))
}

// Aggregate folds persisted sessions into Statistics.
func Aggregate(sessions []EditSession) Statistics {
	stats := Statistics{EditsByField: map[string]int{}}
	for _, sess := range sessions {
		stats.TotalSessions++
		stats.TotalEdits += len(sess.Edits)
		if len(sess.Edits) > 0 {
			stats.SessionsWithEdits++
		}
		for _, e := range sess.Edits {
			stats.EditsByField[e.FieldName]++
		}
	}
	return stats
}
