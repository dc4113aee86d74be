//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers Postgres instance with the
// application schema already applied.
type PostgresContainer struct {
	Container *tcpostgres.PostgresContainer
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a new Postgres container and bootstraps the
// schema used by the stores.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("legatum_test"),
		tcpostgres.WithUsername("legatum"),
		tcpostgres.WithPassword("legatum"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to bootstrap schema: %v", err)
	}

	// The container is shared across suites; Ryuk handles cleanup when the
	// test process exits.
	return &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}
}

// TruncateTables empties the given tables. Use between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx,
		fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", ")))
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS user_profiles (
    user_id        UUID PRIMARY KEY,
    email          TEXT NOT NULL UNIQUE,
    phone_number   TEXT,
    full_name      TEXT NOT NULL,
    date_of_birth  DATE,
    kyc_status     TEXT NOT NULL,
    phone_verified TEXT NOT NULL,
    email_verified TEXT NOT NULL,
    status         TEXT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS trusted_contacts (
    contact_id          UUID PRIMARY KEY,
    user_id             UUID NOT NULL REFERENCES user_profiles (user_id),
    full_name           TEXT NOT NULL,
    email               TEXT NOT NULL,
    relationship        TEXT,
    verification_status TEXT NOT NULL,
    created_at          TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS action_policies (
    policy_id          UUID PRIMARY KEY,
    user_id            UUID NOT NULL REFERENCES user_profiles (user_id),
    asset_type         TEXT NOT NULL,
    platform_name      TEXT NOT NULL,
    account_identifier TEXT NOT NULL,
    action_type        TEXT NOT NULL,
    priority           INT NOT NULL DEFAULT 0,
    natural_language   TEXT,
    instructions       TEXT,
    conditions         TEXT[],
    created_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_logs (
    log_id            UUID PRIMARY KEY,
    user_id           UUID NOT NULL,
    event_type        TEXT NOT NULL,
    event_description TEXT NOT NULL,
    ai_service        TEXT,
    input_data        JSONB,
    output_data       JSONB,
    status            TEXT NOT NULL,
    request_id        TEXT,
    created_at        TIMESTAMPTZ NOT NULL,
    hash_signature    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_logs_user_idx ON audit_logs (user_id, created_at DESC);
`
