// Package store persists edit-tracking telemetry and user settings in a
// process-local database.
package store

import (
	"context"

	"github.com/supreme-sprinklers/backflow-cli/internal/model"
)

// Setting keys.
const (
	SettingDefaultOfficeEmail = "default_office_email"
)

// Store is the persistence interface for the pipeline. The session log is
// append-only; settings are simple key-value pairs.
type Store interface {
	AppendSession(ctx context.Context, session model.EditSession) error
	ReadSessions(ctx context.Context) ([]model.EditSession, error)

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	Close() error
}
