// Package tracking records user corrections against the machine-extracted
// baseline to produce extraction accuracy telemetry.
package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/supreme-sprinklers/backflow-cli/internal/model"
)

// SessionStore persists closed edit sessions. Appends are wholesale: a
// session is written once, at stop, and is immutable afterward.
type SessionStore interface {
	AppendSession(ctx context.Context, session model.EditSession) error
	ReadSessions(ctx context.Context) ([]model.EditSession, error)
}

type trackerState int

const (
	stateIdle trackerState = iota
	stateTracking
	stateStopped
)

// Tracker observes field mutations during one extraction-to-finalization
// lifecycle. Not safe for concurrent use; the pipeline serializes record
// edits against session transitions.
type Tracker struct {
	store     SessionStore
	state     trackerState
	sessionID string
	baseline  map[string]string
	edits     []model.EditEvent
	persisted bool

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

// NewTracker creates an idle tracker backed by the given store.
func NewTracker(store SessionStore) *Tracker {
	return &Tracker{store: store, nowFunc: time.Now}
}

// StartTracking opens a new session with the extraction result as baseline.
// Allowed from Idle or Stopped; a fresh session identifier is assigned so
// persisted sessions stay distinct.
func (t *Tracker) StartTracking(baseline map[string]string) string {
	t.sessionID = newSessionID(t.nowFunc())
	t.baseline = make(map[string]string, len(baseline))
	for k, v := range baseline {
		t.baseline[k] = v
	}
	t.edits = nil
	t.persisted = false
	t.state = stateTracking

	zap.L().Info("started edit tracking", zap.String("session_id", t.sessionID))
	return t.sessionID
}

// TrackEdit records a field change. It is a no-op outside Tracking and when
// the new value equals the baseline value for that field. The recorded
// OriginalValue is always the baseline, so every event measures drift from
// the machine's first guess, not from the previous edit.
func (t *Tracker) TrackEdit(field, newValue string) {
	if t.state != stateTracking {
		return
	}

	original := t.baseline[field]
	if original == newValue {
		return
	}

	t.edits = append(t.edits, model.EditEvent{
		FieldName:     field,
		OriginalValue: original,
		NewValue:      newValue,
		Timestamp:     t.nowFunc(),
	})

	zap.L().Info("tracked edit event",
		zap.String("session_id", t.sessionID),
		zap.String("field", field),
	)
}

// StopTracking closes the session and persists the accumulated edit log.
// Persistence failures are logged and non-fatal: losing telemetry must never
// block the record workflow. Idempotent when called again with no new edits.
func (t *Tracker) StopTracking(ctx context.Context) []model.EditEvent {
	if t.state == stateIdle {
		return nil
	}
	if t.state == stateStopped && t.persisted {
		return t.edits
	}
	t.state = stateStopped

	session := model.EditSession{
		SessionID:  t.sessionID,
		RecordedAt: t.nowFunc(),
		Edits:      t.edits,
	}

	if err := t.store.AppendSession(ctx, session); err != nil {
		zap.L().Error("failed to persist edit session",
			zap.String("session_id", t.sessionID),
			zap.Error(err),
		)
	} else {
		t.persisted = true
	}

	zap.L().Info("stopped edit tracking",
		zap.String("session_id", t.sessionID),
		zap.Int("edit_count", len(t.edits)),
	)
	return t.edits
}

// SessionID returns the identifier of the current or last session.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// Statistics aggregates every persisted session into the concrete telemetry
// shape used by the admin views.
func (t *Tracker) Statistics(ctx context.Context) (model.Statistics, error) {
	sessions, err := t.store.ReadSessions(ctx)
	if err != nil {
		return model.Statistics{}, err
	}
	return model.Aggregate(sessions), nil
}

func newSessionID(now time.Time) string {
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
}
