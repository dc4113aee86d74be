package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
)

// PostgresStore persists audit events in the audit_logs table.
//
// Schema:
//
//	CREATE TABLE audit_logs (
//	    log_id            UUID PRIMARY KEY,
//	    user_id           UUID NOT NULL,
//	    event_type        TEXT NOT NULL,
//	    event_description TEXT NOT NULL,
//	    ai_service        TEXT,
//	    input_data        JSONB,
//	    output_data       JSONB,
//	    status            TEXT NOT NULL,
//	    request_id        TEXT,
//	    created_at        TIMESTAMPTZ NOT NULL,
//	    hash_signature    TEXT NOT NULL
//	);
//	CREATE INDEX audit_logs_user_idx ON audit_logs (user_id, created_at DESC);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	inputJSON, err := marshalNullable(event.InputData)
	if err != nil {
		return fmt.Errorf("marshal input data: %w", err)
	}
	outputJSON, err := marshalNullable(event.OutputData)
	if err != nil {
		return fmt.Errorf("marshal output data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			log_id, user_id, event_type, event_description, ai_service,
			input_data, output_data, status, request_id, created_at, hash_signature
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		event.LogID,
		uuid.UUID(event.UserID),
		event.EventType,
		event.Description,
		nullString(event.AIService),
		inputJSON,
		outputJSON,
		string(event.Status),
		nullString(event.RequestID),
		event.Timestamp,
		event.Hash,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, logID uuid.UUID) (*Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT log_id, user_id, event_type, event_description, ai_service,
		       input_data, output_data, status, request_id, created_at, hash_signature
		FROM audit_logs WHERE log_id = $1`, logID)

	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "audit log not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	return event, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID, filter Filter) ([]Event, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT log_id, user_id, event_type, event_description, ai_service,
		       input_data, output_data, status, request_id, created_at, hash_signature
		FROM audit_logs WHERE user_id = $1`)
	args := []any{uuid.UUID(userID)}

	if filter.EventType != "" {
		args = append(args, filter.EventType)
		query.WriteString(" AND event_type = $" + strconv.Itoa(len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query.WriteString(" AND created_at >= $" + strconv.Itoa(len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query.WriteString(" AND created_at <= $" + strconv.Itoa(len(args)))
	}
	query.WriteString(" ORDER BY created_at ASC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		out = append(out, *event)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var (
		event      Event
		rawUserID  uuid.UUID
		aiService  sql.NullString
		inputJSON  []byte
		outputJSON []byte
		requestID  sql.NullString
	)
	err := row.Scan(
		&event.LogID, &rawUserID, &event.EventType, &event.Description, &aiService,
		&inputJSON, &outputJSON, &event.Status, &requestID, &event.Timestamp, &event.Hash,
	)
	if err != nil {
		return nil, err
	}
	event.UserID = id.UserID(rawUserID)
	event.AIService = aiService.String
	event.RequestID = requestID.String
	if len(inputJSON) > 0 {
		if err := json.Unmarshal(inputJSON, &event.InputData); err != nil {
			return nil, fmt.Errorf("unmarshal input data: %w", err)
		}
	}
	if len(outputJSON) > 0 {
		if err := json.Unmarshal(outputJSON, &event.OutputData); err != nil {
			return nil, fmt.Errorf("unmarshal output data: %w", err)
		}
	}
	return &event, nil
}

func marshalNullable(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
