package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"legatum/internal/domain"
	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
)

// PostgresUserStore persists user profiles in the user_profiles and
// trusted_contacts tables.
//
// Schema:
//
//	CREATE TABLE user_profiles (
//	    user_id        UUID PRIMARY KEY,
//	    email          TEXT NOT NULL UNIQUE,
//	    phone_number   TEXT,
//	    full_name      TEXT NOT NULL,
//	    date_of_birth  DATE,
//	    kyc_status     TEXT NOT NULL,
//	    phone_verified TEXT NOT NULL,
//	    email_verified TEXT NOT NULL,
//	    status         TEXT NOT NULL,
//	    created_at     TIMESTAMPTZ NOT NULL,
//	    updated_at     TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE trusted_contacts (
//	    contact_id          UUID PRIMARY KEY,
//	    user_id             UUID NOT NULL REFERENCES user_profiles (user_id),
//	    full_name           TEXT NOT NULL,
//	    email               TEXT NOT NULL,
//	    relationship        TEXT,
//	    verification_status TEXT NOT NULL,
//	    created_at          TIMESTAMPTZ NOT NULL
//	);
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) GetUser(ctx context.Context, userID id.UserID) (*domain.UserProfile, error) {
	var (
		user  domain.UserProfile
		rawID uuid.UUID
		dob   sql.NullTime
		phone sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, email, phone_number, full_name, date_of_birth, kyc_status,
		       phone_verified, email_verified, status, created_at, updated_at
		FROM user_profiles WHERE user_id = $1`, uuid.UUID(userID)).Scan(
		&rawID, &user.Email, &phone, &user.FullName, &dob, &user.KYCStatus,
		&user.PhoneVerified, &user.EmailVerified, &user.Status, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "user profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query user profile: %w", err)
	}
	user.UserID = id.UserID(rawID)
	user.PhoneNumber = phone.String
	if dob.Valid {
		user.DateOfBirth = dob.Time
	}
	return &user, nil
}

func (s *PostgresUserStore) SaveUser(ctx context.Context, profile *domain.UserProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (
			user_id, email, phone_number, full_name, date_of_birth, kyc_status,
			phone_verified, email_verified, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			email = EXCLUDED.email,
			phone_number = EXCLUDED.phone_number,
			full_name = EXCLUDED.full_name,
			date_of_birth = EXCLUDED.date_of_birth,
			kyc_status = EXCLUDED.kyc_status,
			phone_verified = EXCLUDED.phone_verified,
			email_verified = EXCLUDED.email_verified,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`,
		uuid.UUID(profile.UserID), profile.Email, nullString(profile.PhoneNumber),
		profile.FullName, nullTime(profile.DateOfBirth), profile.KYCStatus,
		profile.PhoneVerified, profile.EmailVerified, string(profile.Status),
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save user profile: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) UpdateUserStatus(ctx context.Context, userID id.UserID, status domain.UserStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE user_profiles SET status = $2, updated_at = NOW() WHERE user_id = $1`,
		uuid.UUID(userID), string(status),
	)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	if affected == 0 {
		return dErrors.New(dErrors.CodeNotFound, "user profile not found")
	}
	return nil
}

func (s *PostgresUserStore) ListTrustedContacts(ctx context.Context, userID id.UserID) ([]domain.TrustedContact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT contact_id, user_id, full_name, email, relationship, verification_status, created_at
		FROM trusted_contacts WHERE user_id = $1 ORDER BY created_at ASC`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("query trusted contacts: %w", err)
	}
	defer rows.Close()

	var out []domain.TrustedContact
	for rows.Next() {
		var (
			contact      domain.TrustedContact
			ownerID      uuid.UUID
			relationship sql.NullString
		)
		if err := rows.Scan(&contact.ContactID, &ownerID, &contact.FullName, &contact.Email,
			&relationship, &contact.VerificationStatus, &contact.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trusted contact: %w", err)
		}
		contact.UserID = id.UserID(ownerID)
		contact.Relationship = relationship.String
		out = append(out, contact)
	}
	return out, rows.Err()
}

func (s *PostgresUserStore) SaveTrustedContact(ctx context.Context, contact *domain.TrustedContact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trusted_contacts (
			contact_id, user_id, full_name, email, relationship, verification_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		contact.ContactID, uuid.UUID(contact.UserID), contact.FullName, contact.Email,
		nullString(contact.Relationship), string(contact.VerificationStatus), contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save trusted contact: %w", err)
	}
	return nil
}

// PostgresPolicyStore persists action policies.
//
// Schema:
//
//	CREATE TABLE action_policies (
//	    policy_id          UUID PRIMARY KEY,
//	    user_id            UUID NOT NULL REFERENCES user_profiles (user_id),
//	    asset_type         TEXT NOT NULL,
//	    platform_name      TEXT NOT NULL,
//	    account_identifier TEXT NOT NULL,
//	    action_type        TEXT NOT NULL,
//	    priority           INT NOT NULL DEFAULT 0,
//	    natural_language   TEXT,
//	    instructions       TEXT,
//	    conditions         TEXT[],
//	    created_at         TIMESTAMPTZ NOT NULL
//	);
type PostgresPolicyStore struct {
	db *sql.DB
}

func NewPostgresPolicyStore(db *sql.DB) *PostgresPolicyStore {
	return &PostgresPolicyStore{db: db}
}

const policyColumns = `policy_id, user_id, asset_type, platform_name, account_identifier,
	action_type, priority, natural_language, instructions, conditions, created_at`

func (s *PostgresPolicyStore) GetPolicy(ctx context.Context, policyID id.PolicyID) (*domain.ActionPolicy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+policyColumns+` FROM action_policies WHERE policy_id = $1`, uuid.UUID(policyID))
	policy, err := scanPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "policy not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query policy: %w", err)
	}
	return policy, nil
}

func (s *PostgresPolicyStore) ListPoliciesByUser(ctx context.Context, userID id.UserID) ([]domain.ActionPolicy, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+policyColumns+` FROM action_policies WHERE user_id = $1 ORDER BY priority DESC, created_at ASC`,
		uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("query policies: %w", err)
	}
	defer rows.Close()

	var out []domain.ActionPolicy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		out = append(out, *policy)
	}
	return out, rows.Err()
}

func (s *PostgresPolicyStore) SavePolicy(ctx context.Context, policy *domain.ActionPolicy) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_policies (`+policyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (policy_id) DO UPDATE SET
			asset_type = EXCLUDED.asset_type,
			platform_name = EXCLUDED.platform_name,
			account_identifier = EXCLUDED.account_identifier,
			action_type = EXCLUDED.action_type,
			priority = EXCLUDED.priority,
			natural_language = EXCLUDED.natural_language,
			instructions = EXCLUDED.instructions,
			conditions = EXCLUDED.conditions`,
		uuid.UUID(policy.PolicyID), uuid.UUID(policy.UserID), policy.AssetType,
		policy.PlatformName, policy.AccountIdentifier, string(policy.ActionType),
		policy.Priority, nullString(policy.NaturalLanguagePolicy),
		nullString(policy.SpecificInstructions), pq.Array(policy.Conditions), policy.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save policy: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (*domain.ActionPolicy, error) {
	var (
		policy       domain.ActionPolicy
		policyID     uuid.UUID
		userID       uuid.UUID
		natural      sql.NullString
		instructions sql.NullString
		conditions   pq.StringArray
	)
	err := row.Scan(&policyID, &userID, &policy.AssetType, &policy.PlatformName,
		&policy.AccountIdentifier, &policy.ActionType, &policy.Priority,
		&natural, &instructions, &conditions, &policy.CreatedAt)
	if err != nil {
		return nil, err
	}
	policy.PolicyID = id.PolicyID(policyID)
	policy.UserID = id.UserID(userID)
	policy.NaturalLanguagePolicy = natural.String
	policy.SpecificInstructions = instructions.String
	policy.Conditions = conditions
	return &policy, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t interface{ IsZero() bool }) any {
	if t.IsZero() {
		return nil
	}
	return t
}
