package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/RameshMYatnalli/new-claimsat/internal/ident"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
)

// SQLiteStorage implements Storage using SQLite. Each record is kept as JSON
// in a data column next to the columns it is filtered and ordered by.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	// Immediate transactions keep read-modify-write updates from deadlocking.
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS disasters (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_disasters_status ON disasters(status);

	CREATE TABLE IF NOT EXISTS claims (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		disaster_id TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);
	CREATE INDEX IF NOT EXISTS idx_claims_created_at ON claims(created_at);

	CREATE TABLE IF NOT EXISTS claim_events (
		id TEXT PRIMARY KEY,
		claim_id TEXT NOT NULL,
		data TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_claim_events_claim_id ON claim_events(claim_id);

	CREATE TABLE IF NOT EXISTS missing_persons (
		id TEXT PRIMARY KEY,
		disaster_id TEXT NOT NULL,
		status TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_missing_persons_disaster ON missing_persons(disaster_id, status);

	CREATE TABLE IF NOT EXISTS survivors (
		id TEXT PRIMARY KEY,
		disaster_id TEXT NOT NULL,
		status TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_survivors_disaster ON survivors(disaster_id, status);

	CREATE TABLE IF NOT EXISTS reunify_matches (
		id TEXT PRIMARY KEY,
		pair_key TEXT NOT NULL UNIQUE,
		disaster_id TEXT NOT NULL DEFAULT '',
		confidence REAL NOT NULL,
		verified INTEGER NOT NULL DEFAULT 0,
		data TEXT NOT NULL,
		matched_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_matches_confidence ON reunify_matches(confidence);
	`
	_, err := db.Exec(schema)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func decode[T any](row scanner) (*T, error) {
	var raw string
	if err := row.Scan(&raw); err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &v, nil
}

func encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}
	return string(raw), nil
}

func getOne[T any](ctx context.Context, db *sql.DB, table, kind, id string) (*T, error) {
	v, err := decode[T](db.QueryRowContext(ctx, `SELECT data FROM `+table+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return v, err
}

func queryAll[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		v, err := decode[T](rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// modify loads one record, applies fn, and writes it back together with the
// indexed column values fn returns, in a single transaction.
func modify[T any](ctx context.Context, db *sql.DB, table, kind, id string, fn func(*T) map[string]any) (*T, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	v, err := decode[T](tx.QueryRowContext(ctx, `SELECT data FROM `+table+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	if err != nil {
		return nil, err
	}
	cols := fn(v)
	data, err := encode(v)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)
	set := "data = ?"
	args := []any{data}
	for _, name := range names {
		set += ", " + name + " = ?"
		args = append(args, cols[name])
	}
	args = append(args, id)
	if _, err := tx.ExecContext(ctx, `UPDATE `+table+` SET `+set+` WHERE id = ?`, args...); err != nil {
		return nil, err
	}
	return v, tx.Commit()
}

func isConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}

func limitClause(query string, args []any, limit int) (string, []any) {
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return query, args
}

func statusClause(statuses []models.PersonStatus) (string, []any) {
	if len(statuses) == 0 {
		return "", nil
	}
	marks := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, st := range statuses {
		marks[i] = "?"
		args[i] = string(st)
	}
	return " AND status IN (" + strings.Join(marks, ", ") + ")", args
}

// CreateDisaster inserts a disaster. An existing id yields ErrConflict.
func (s *SQLiteStorage) CreateDisaster(ctx context.Context, d *models.Disaster) error {
	data, err := encode(d)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO disasters (id, status, data, created_at) VALUES (?, ?, ?, ?)`,
		d.ID, string(d.Status), data, d.CreatedAt.UnixNano(),
	)
	if isConstraint(err) {
		return fmt.Errorf("%w: disaster %s", ErrConflict, d.ID)
	}
	return err
}

// SaveDisaster inserts or replaces a disaster.
func (s *SQLiteStorage) SaveDisaster(ctx context.Context, d *models.Disaster) error {
	data, err := encode(d)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO disasters (id, status, data, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status = excluded.status, data = excluded.data`,
		d.ID, string(d.Status), data, d.CreatedAt.UnixNano(),
	)
	return err
}

// GetDisaster returns a disaster by ID.
func (s *SQLiteStorage) GetDisaster(ctx context.Context, id string) (*models.Disaster, error) {
	return getOne[models.Disaster](ctx, s.db, "disasters", "disaster", id)
}

// ListDisasters returns disasters ordered by id.
func (s *SQLiteStorage) ListDisasters(ctx context.Context, filter models.DisasterFilter) ([]*models.Disaster, error) {
	query := `SELECT data FROM disasters WHERE (? = '' OR status = ?) ORDER BY id`
	st := string(filter.Status)
	return queryAll[models.Disaster](ctx, s.db, query, st, st)
}

// CreateClaim inserts a claim.
func (s *SQLiteStorage) CreateClaim(ctx context.Context, c *models.Claim) error {
	data, err := encode(c)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO claims (id, status, disaster_id, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, string(c.Status), c.DisasterID, data, c.CreatedAt.UnixNano(),
	)
	if isConstraint(err) {
		return fmt.Errorf("%w: claim %s", ErrConflict, c.ID)
	}
	return err
}

// GetClaim returns a claim by ID.
func (s *SQLiteStorage) GetClaim(ctx context.Context, id string) (*models.Claim, error) {
	return getOne[models.Claim](ctx, s.db, "claims", "claim", id)
}

// ListClaims returns claims newest first.
func (s *SQLiteStorage) ListClaims(ctx context.Context, filter models.ClaimFilter) ([]*models.Claim, error) {
	st := string(filter.Status)
	query, args := limitClause(
		`SELECT data FROM claims WHERE (? = '' OR status = ?) AND (? = '' OR disaster_id = ?)
		 ORDER BY created_at DESC, id`,
		[]any{st, st, filter.DisasterID, filter.DisasterID}, filter.Limit)
	return queryAll[models.Claim](ctx, s.db, query, args...)
}

// AddEvidence appends an evidence item to a claim.
func (s *SQLiteStorage) AddEvidence(ctx context.Context, claimID string, ev *models.Evidence) error {
	_, err := modify(ctx, s.db, "claims", "claim", claimID, func(c *models.Claim) map[string]any {
		c.Evidence = append(c.Evidence, *ev)
		c.UpdatedAt = ev.UploadedAt
		return nil
	})
	return err
}

// SaveClaimScore stores the latest score and the status derived from it. A
// resolved disaster is recorded on claims that had none.
func (s *SQLiteStorage) SaveClaimScore(ctx context.Context, claimID string, score *models.ClaimScore) error {
	_, err := modify(ctx, s.db, "claims", "claim", claimID, func(c *models.Claim) map[string]any {
		sc := *score
		c.Score = &sc
		c.Status = score.Status
		c.UpdatedAt = score.ScoredAt
		if c.DisasterID == "" {
			c.DisasterID = score.DisasterID
		}
		return map[string]any{"status": string(c.Status), "disaster_id": c.DisasterID}
	})
	return err
}

// AddClaimEvent appends to a claim's audit trail.
func (s *SQLiteStorage) AddClaimEvent(ctx context.Context, ev *models.ClaimEvent) error {
	data, err := encode(ev)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO claim_events (id, claim_id, data, timestamp) VALUES (?, ?, ?, ?)`,
		ev.ID, ev.ClaimID, data, ev.Timestamp.UnixNano(),
	)
	return err
}

// ListClaimEvents returns a claim's events in the order they were recorded.
func (s *SQLiteStorage) ListClaimEvents(ctx context.Context, claimID string) ([]*models.ClaimEvent, error) {
	return queryAll[models.ClaimEvent](ctx, s.db,
		`SELECT data FROM claim_events WHERE claim_id = ? ORDER BY timestamp, rowid`, claimID)
}

// CreateMissingPerson inserts a missing-person report.
func (s *SQLiteStorage) CreateMissingPerson(ctx context.Context, p *models.MissingPerson) error {
	return s.createPerson(ctx, "missing_persons", "missing person", p.ID, p.DisasterID, p.Status, p.CreatedAt, p)
}

// GetMissingPerson returns a missing-person report by ID.
func (s *SQLiteStorage) GetMissingPerson(ctx context.Context, id string) (*models.MissingPerson, error) {
	return getOne[models.MissingPerson](ctx, s.db, "missing_persons", "missing person", id)
}

// ListMissingPersons returns reports newest first.
func (s *SQLiteStorage) ListMissingPersons(ctx context.Context, filter models.PersonFilter) ([]*models.MissingPerson, error) {
	query, args := personQuery("missing_persons", filter)
	return queryAll[models.MissingPerson](ctx, s.db, query, args...)
}

// UpdateMissingPersonStatus sets a report's status.
func (s *SQLiteStorage) UpdateMissingPersonStatus(ctx context.Context, id string, status models.PersonStatus, at time.Time) error {
	_, err := modify(ctx, s.db, "missing_persons", "missing person", id, func(p *models.MissingPerson) map[string]any {
		p.Status, p.UpdatedAt = status, at
		return map[string]any{"status": string(status)}
	})
	return err
}

// CreateSurvivor inserts a survivor.
func (s *SQLiteStorage) CreateSurvivor(ctx context.Context, sv *models.Survivor) error {
	return s.createPerson(ctx, "survivors", "survivor", sv.ID, sv.DisasterID, sv.Status, sv.CreatedAt, sv)
}

// GetSurvivor returns a survivor by ID.
func (s *SQLiteStorage) GetSurvivor(ctx context.Context, id string) (*models.Survivor, error) {
	return getOne[models.Survivor](ctx, s.db, "survivors", "survivor", id)
}

// ListSurvivors returns survivors newest first.
func (s *SQLiteStorage) ListSurvivors(ctx context.Context, filter models.PersonFilter) ([]*models.Survivor, error) {
	query, args := personQuery("survivors", filter)
	return queryAll[models.Survivor](ctx, s.db, query, args...)
}

// UpdateSurvivorStatus sets a survivor's status.
func (s *SQLiteStorage) UpdateSurvivorStatus(ctx context.Context, id string, status models.PersonStatus, at time.Time) error {
	_, err := modify(ctx, s.db, "survivors", "survivor", id, func(sv *models.Survivor) map[string]any {
		sv.Status, sv.UpdatedAt = status, at
		return map[string]any{"status": string(status)}
	})
	return err
}

func (s *SQLiteStorage) createPerson(ctx context.Context, table, kind, id, disasterID string, status models.PersonStatus, created time.Time, v any) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, disaster_id, status, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, disasterID, string(status), data, created.UnixNano(),
	)
	if isConstraint(err) {
		return fmt.Errorf("%w: %s %s", ErrConflict, kind, id)
	}
	return err
}

func personQuery(table string, filter models.PersonFilter) (string, []any) {
	query := `SELECT data FROM ` + table + ` WHERE (? = '' OR disaster_id = ?)`
	args := []any{filter.DisasterID, filter.DisasterID}
	clause, statusArgs := statusClause(filter.Statuses)
	query += clause + ` ORDER BY created_at DESC, id`
	return limitClause(query, append(args, statusArgs...), filter.Limit)
}

// UpsertMatch inserts a match or, when the pair already has one, refreshes its
// confidence and factors while keeping its id, timestamp, and verification.
func (s *SQLiteStorage) UpsertMatch(ctx context.Context, m *models.Match) (*models.Match, error) {
	key := ident.PairKey(m.MissingPersonID, m.SurvivorID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stored, err := decode[models.Match](tx.QueryRowContext(ctx,
		`SELECT data FROM reunify_matches WHERE pair_key = ?`, key))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		cp := *m
		stored = &cp
	case err != nil:
		return nil, err
	default:
		stored.ConfidenceScore = m.ConfidenceScore
		stored.Factors = m.Factors
	}

	data, err := encode(stored)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO reunify_matches (id, pair_key, disaster_id, confidence, verified, data, matched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pair_key) DO UPDATE SET confidence = excluded.confidence, data = excluded.data`,
		stored.ID, key, stored.DisasterID, stored.ConfidenceScore, stored.Verified, data, stored.MatchedAt.UnixNano(),
	)
	if err != nil {
		return nil, err
	}
	return stored, tx.Commit()
}

// GetMatch returns a match by ID.
func (s *SQLiteStorage) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	return getOne[models.Match](ctx, s.db, "reunify_matches", "match", id)
}

// ListMatches returns matches, highest confidence first.
func (s *SQLiteStorage) ListMatches(ctx context.Context, filter models.MatchFilter) ([]*models.Match, error) {
	query := `SELECT data FROM reunify_matches WHERE confidence >= ? AND (? = '' OR disaster_id = ?)`
	args := []any{filter.MinConfidence, filter.DisasterID, filter.DisasterID}
	if filter.Verified != nil {
		query += ` AND verified = ?`
		args = append(args, *filter.Verified)
	}
	query, args = limitClause(query+` ORDER BY confidence DESC, id`, args, filter.Limit)
	return queryAll[models.Match](ctx, s.db, query, args...)
}

// UpdateMatchVerification records an authority's decision on a match.
func (s *SQLiteStorage) UpdateMatchVerification(ctx context.Context, id string, v models.Verification, status models.MatchStatus, at time.Time) (*models.Match, error) {
	return modify(ctx, s.db, "reunify_matches", "match", id, func(m *models.Match) map[string]any {
		m.Verified = v.Verified
		m.VerifiedBy = v.VerifiedBy
		m.VerificationNotes = v.VerificationNotes
		m.VerifiedAt = &at
		m.Status = status
		return map[string]any{"verified": v.Verified}
	})
}

// Stats counts the stored records and reports the database size on disk.
func (s *SQLiteStorage) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	counts := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM disasters`, &st.Disasters},
		{`SELECT COUNT(*) FROM claims`, &st.Claims},
		{`SELECT COUNT(*) FROM claim_events`, &st.ClaimEvents},
		{`SELECT COUNT(*) FROM missing_persons`, &st.MissingPersons},
		{`SELECT COUNT(*) FROM survivors`, &st.Survivors},
		{`SELECT COUNT(*) FROM reunify_matches`, &st.Matches},
		{`SELECT COUNT(*) FROM reunify_matches WHERE verified = 1`, &st.VerifiedMatches},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	size, err := DiskUsageBytes(s.path, s.path+"-wal", s.path+"-shm")
	if err != nil {
		return nil, err
	}
	st.SizeBytes = size
	return &st, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
