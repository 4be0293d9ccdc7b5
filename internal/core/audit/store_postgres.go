// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embershelf/embershelf/internal/platform/database/schema"
	"github.com/embershelf/embershelf/internal/platform/dberr"
	"github.com/embershelf/embershelf/pkg/uuid"
)

// PostgresRecorder appends events to the system.auditevent table.
type PostgresRecorder struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresRecorder constructs a postgres backed [Recorder].
func NewPostgresRecorder(db *pgxpool.Pool, logger *slog.Logger) *PostgresRecorder {
	return &PostgresRecorder{db: db, logger: logger}
}

/*
Record appends one immutable audit row.

Description: The payload is marshalled to JSONB. Failures are logged and
returned, but callers treat recording as best-effort and never roll back
the originating action over it.

Parameters:
  - context: context.Context
  - event: Event (ID and CreatedAt are filled if zero)

Returns:
  - error: Marshalling or insert errors
*/
func (recorder *PostgresRecorder) Record(context context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.New()
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("audit: marshal payload: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`,
		schema.SystemAuditEvent.Table,
		schema.SystemAuditEvent.ID, schema.SystemAuditEvent.ActorID, schema.SystemAuditEvent.Action,
		schema.SystemAuditEvent.EntityType, schema.SystemAuditEvent.EntityID, schema.SystemAuditEvent.Payload,
	)

	_, err = recorder.db.Exec(context, query,
		event.ID, event.ActorID, event.Action, event.EntityType, event.EntityID, payload,
	)
	if err != nil {
		recorder.logger.Error("audit_record_failed",
			slog.String("action", event.Action),
			slog.String("entity_id", event.EntityID),
			slog.String("error", err.Error()),
		)
		return dberr.Wrap(err, "record_audit_event")
	}

	return nil
}
