// Package sqlite persists collections, requests, environments and history
// in a single SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hermeshq/hermes/internal/core"
)

// Common errors
var (
	ErrStoreClosed = errors.New("store is closed")
	ErrNotFound    = errors.New("record not found")
	ErrInvalidID   = errors.New("invalid id")
)

// Store implements persistence over SQLite.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// New creates a SQLite-backed store at the given path.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// NewInMemory creates an in-memory store (useful for testing).
func NewInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// A connection pool would hand each query its own empty :memory: database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS collections (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS requests (
			id TEXT PRIMARY KEY,
			collection_id TEXT,
			name TEXT NOT NULL,
			method TEXT NOT NULL,
			url TEXT NOT NULL,
			headers TEXT,
			query_params TEXT,
			body TEXT,
			body_encoding TEXT,
			auth TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_requests_collection ON requests(collection_id);

		CREATE TABLE IF NOT EXISTS environments (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			variables TEXT,
			is_active INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			request_method TEXT NOT NULL,
			request_url TEXT NOT NULL,
			request_headers TEXT,
			request_body TEXT,
			response_status INTEGER NOT NULL,
			response_status_text TEXT,
			response_headers TEXT,
			response_body TEXT,
			response_time INTEGER,
			response_size INTEGER,
			collection_id TEXT,
			request_id TEXT,
			request_name TEXT,
			environment TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the store and releases resources.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Collections

// ListCollections returns all collections ordered by creation time.
func (s *Store) ListCollections(ctx context.Context) ([]core.CollectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM collections ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var colls []core.CollectionRecord
	for rows.Next() {
		var c core.CollectionRecord
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		colls = append(colls, c)
	}
	return colls, rows.Err()
}

// GetCollection retrieves a collection by ID.
func (s *Store) GetCollection(ctx context.Context, id string) (core.CollectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return core.CollectionRecord{}, ErrStoreClosed
	}
	if id == "" {
		return core.CollectionRecord{}, ErrInvalidID
	}

	var c core.CollectionRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM collections WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return core.CollectionRecord{}, ErrNotFound
	}
	if err != nil {
		return core.CollectionRecord{}, fmt.Errorf("failed to get collection: %w", err)
	}
	return c, nil
}

// AddCollection inserts a collection, stamping timestamps and generating an
// ID when missing. The stored record is returned.
func (s *Store) AddCollection(ctx context.Context, c core.CollectionRecord) (core.CollectionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.CollectionRecord{}, ErrStoreClosed
	}

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return core.CollectionRecord{}, fmt.Errorf("failed to insert collection: %w", err)
	}
	return c, nil
}

// UpdateCollection updates an existing collection by ID.
func (s *Store) UpdateCollection(ctx context.Context, c core.CollectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE collections SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Description, time.Now().UTC(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update collection: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCollection removes a collection and cascades to its requests.
func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM requests WHERE collection_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete collection requests: %w", err)
	}

	return tx.Commit()
}

// Requests

// ListRequests returns all saved requests ordered by creation time.
func (s *Store) ListRequests(ctx context.Context) ([]core.RequestItemRecord, error) {
	return s.listRequests(ctx, "", nil)
}

// ListRequestsByCollection returns the requests belonging to one collection.
func (s *Store) ListRequestsByCollection(ctx context.Context, collectionID string) ([]core.RequestItemRecord, error) {
	return s.listRequests(ctx, " WHERE collection_id = ?", []interface{}{collectionID})
}

func (s *Store) listRequests(ctx context.Context, where string, args []interface{}) ([]core.RequestItemRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collection_id, name, method, url, headers, query_params,
			body, body_encoding, auth, created_at, updated_at
		FROM requests`+where+" ORDER BY created_at", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var recs []core.RequestItemRecord
	for rows.Next() {
		rec, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// GetRequest retrieves a saved request by ID.
func (s *Store) GetRequest(ctx context.Context, id string) (core.RequestItemRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return core.RequestItemRecord{}, ErrStoreClosed
	}
	if id == "" {
		return core.RequestItemRecord{}, ErrInvalidID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collection_id, name, method, url, headers, query_params,
			body, body_encoding, auth, created_at, updated_at
		FROM requests WHERE id = ?
	`, id)
	if err != nil {
		return core.RequestItemRecord{}, fmt.Errorf("failed to get request: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return core.RequestItemRecord{}, err
		}
		return core.RequestItemRecord{}, ErrNotFound
	}

	rec, err := scanRequest(rows)
	if err != nil {
		return core.RequestItemRecord{}, fmt.Errorf("failed to scan request: %w", err)
	}
	return rec, nil
}

// AddRequest inserts a saved request, stamping timestamps and generating an
// ID when missing. The stored record is returned.
func (s *Store) AddRequest(ctx context.Context, rec core.RequestItemRecord) (core.RequestItemRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.RequestItemRecord{}, ErrStoreClosed
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if err := s.insertRequest(ctx, s.db, rec); err != nil {
		return core.RequestItemRecord{}, err
	}
	return rec, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *Store) insertRequest(ctx context.Context, db execer, rec core.RequestItemRecord) error {
	headersJSON, _ := json.Marshal(rec.Headers)
	paramsJSON, _ := json.Marshal(rec.QueryParams)
	authJSON, _ := json.Marshal(rec.Auth)

	_, err := db.ExecContext(ctx, `
		INSERT INTO requests (
			id, collection_id, name, method, url, headers, query_params,
			body, body_encoding, auth, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.CollectionID, rec.Name, rec.Method, rec.URL,
		string(headersJSON), string(paramsJSON), rec.Body, string(rec.BodyEncoding),
		string(authJSON), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

// UpdateRequest updates an existing saved request by ID.
func (s *Store) UpdateRequest(ctx context.Context, rec core.RequestItemRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	headersJSON, _ := json.Marshal(rec.Headers)
	paramsJSON, _ := json.Marshal(rec.QueryParams)
	authJSON, _ := json.Marshal(rec.Auth)

	result, err := s.db.ExecContext(ctx, `
		UPDATE requests SET
			collection_id = ?, name = ?, method = ?, url = ?, headers = ?,
			query_params = ?, body = ?, body_encoding = ?, auth = ?, updated_at = ?
		WHERE id = ?
	`,
		rec.CollectionID, rec.Name, rec.Method, rec.URL, string(headersJSON),
		string(paramsJSON), rec.Body, string(rec.BodyEncoding), string(authJSON),
		time.Now().UTC(), rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRequest removes a saved request by ID.
func (s *Store) DeleteRequest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM requests WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRequestsByCollection removes all requests of one collection and
// returns the number removed.
func (s *Store) DeleteRequestsByCollection(ctx context.Context, collectionID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM requests WHERE collection_id = ?", collectionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete requests: %w", err)
	}
	return result.RowsAffected()
}

func scanRequest(rows *sql.Rows) (core.RequestItemRecord, error) {
	var rec core.RequestItemRecord
	var headersJSON, paramsJSON, authJSON sql.NullString
	var encoding string

	err := rows.Scan(
		&rec.ID, &rec.CollectionID, &rec.Name, &rec.Method, &rec.URL,
		&headersJSON, &paramsJSON, &rec.Body, &encoding, &authJSON,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return rec, err
	}

	rec.BodyEncoding = core.BodyEncoding(encoding)
	if headersJSON.Valid {
		json.Unmarshal([]byte(headersJSON.String), &rec.Headers)
	}
	if paramsJSON.Valid {
		json.Unmarshal([]byte(paramsJSON.String), &rec.QueryParams)
	}
	if authJSON.Valid && authJSON.String != "null" {
		json.Unmarshal([]byte(authJSON.String), &rec.Auth)
	}
	if rec.Headers == nil {
		rec.Headers = make(map[string]string)
	}
	if rec.QueryParams == nil {
		rec.QueryParams = make(map[string]string)
	}

	return rec, nil
}

// Environments

// ListEnvironments returns all environments ordered by creation time.
func (s *Store) ListEnvironments(ctx context.Context) ([]core.EnvironmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, variables, is_active, created_at, updated_at
		FROM environments ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}
	defer rows.Close()

	var envs []core.EnvironmentRecord
	for rows.Next() {
		env, err := scanEnvironment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan environment: %w", err)
		}
		envs = append(envs, env)
	}
	return envs, rows.Err()
}

// GetEnvironment retrieves an environment by ID.
func (s *Store) GetEnvironment(ctx context.Context, id string) (core.EnvironmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return core.EnvironmentRecord{}, ErrStoreClosed
	}
	if id == "" {
		return core.EnvironmentRecord{}, ErrInvalidID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, variables, is_active, created_at, updated_at
		FROM environments WHERE id = ?
	`, id)
	if err != nil {
		return core.EnvironmentRecord{}, fmt.Errorf("failed to get environment: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return core.EnvironmentRecord{}, err
		}
		return core.EnvironmentRecord{}, ErrNotFound
	}

	env, err := scanEnvironment(rows)
	if err != nil {
		return core.EnvironmentRecord{}, fmt.Errorf("failed to scan environment: %w", err)
	}
	return env, nil
}

// AddEnvironment inserts an environment, stamping timestamps and generating
// an ID when missing. The stored record is returned.
func (s *Store) AddEnvironment(ctx context.Context, env core.EnvironmentRecord) (core.EnvironmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.EnvironmentRecord{}, ErrStoreClosed
	}

	if env.ID == "" {
		env.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if env.CreatedAt.IsZero() {
		env.CreatedAt = now
	}
	env.UpdatedAt = now

	if err := s.insertEnvironment(ctx, s.db, env); err != nil {
		return core.EnvironmentRecord{}, err
	}
	return env, nil
}

func (s *Store) insertEnvironment(ctx context.Context, db execer, env core.EnvironmentRecord) error {
	varsJSON, _ := json.Marshal(env.Variables)

	_, err := db.ExecContext(ctx, `
		INSERT INTO environments (id, name, variables, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, env.ID, env.Name, string(varsJSON), env.IsActive, env.CreatedAt, env.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert environment: %w", err)
	}
	return nil
}

// UpdateEnvironment updates an existing environment by ID.
func (s *Store) UpdateEnvironment(ctx context.Context, env core.EnvironmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	varsJSON, _ := json.Marshal(env.Variables)

	result, err := s.db.ExecContext(ctx, `
		UPDATE environments SET name = ?, variables = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, env.Name, string(varsJSON), env.IsActive, time.Now().UTC(), env.ID)
	if err != nil {
		return fmt.Errorf("failed to update environment: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEnvironment removes an environment by ID.
func (s *Store) DeleteEnvironment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM environments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete environment: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActiveEnvironment marks one environment active, clearing any previously
// active one in the same transaction.
func (s *Store) SetActiveEnvironment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, "UPDATE environments SET is_active = 0, updated_at = ? WHERE is_active = 1", now); err != nil {
		return fmt.Errorf("failed to clear active environment: %w", err)
	}

	result, err := tx.ExecContext(ctx, "UPDATE environments SET is_active = 1, updated_at = ? WHERE id = ?", now, id)
	if err != nil {
		return fmt.Errorf("failed to set active environment: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// ClearActiveEnvironment deactivates any active environment.
func (s *Store) ClearActiveEnvironment(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, "UPDATE environments SET is_active = 0, updated_at = ? WHERE is_active = 1", time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to clear active environment: %w", err)
	}
	return nil
}

// ActiveEnvironment returns the active environment, or nil when none is set.
func (s *Store) ActiveEnvironment(ctx context.Context) (*core.EnvironmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, variables, is_active, created_at, updated_at
		FROM environments WHERE is_active = 1 LIMIT 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active environment: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	env, err := scanEnvironment(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan environment: %w", err)
	}
	return &env, nil
}

func scanEnvironment(rows *sql.Rows) (core.EnvironmentRecord, error) {
	var env core.EnvironmentRecord
	var varsJSON sql.NullString

	err := rows.Scan(&env.ID, &env.Name, &varsJSON, &env.IsActive, &env.CreatedAt, &env.UpdatedAt)
	if err != nil {
		return env, err
	}

	if varsJSON.Valid {
		json.Unmarshal([]byte(varsJSON.String), &env.Variables)
	}
	if env.Variables == nil {
		env.Variables = make(map[string]string)
	}
	return env, nil
}

// ReplaceAll atomically replaces every collection, request and environment
// with the given records. Either everything applies or nothing does.
func (s *Store) ReplaceAll(ctx context.Context, colls []core.CollectionRecord, reqs []core.RequestItemRecord, envs []core.EnvironmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"collections", "requests", "environments"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	now := time.Now().UTC()

	for _, c := range colls {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = now
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO collections (id, name, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert collection: %w", err)
		}
	}

	for _, rec := range reqs {
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = now
		}
		if err := s.insertRequest(ctx, tx, rec); err != nil {
			return err
		}
	}

	for _, env := range envs {
		if env.ID == "" {
			env.ID = uuid.New().String()
		}
		if env.CreatedAt.IsZero() {
			env.CreatedAt = now
		}
		if env.UpdatedAt.IsZero() {
			env.UpdatedAt = now
		}
		if err := s.insertEnvironment(ctx, tx, env); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// History

// AddHistory inserts a history entry and returns its ID.
func (s *Store) AddHistory(ctx context.Context, entry core.HistoryEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrStoreClosed
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	reqHeadersJSON, _ := json.Marshal(entry.RequestHeaders)
	respHeadersJSON, _ := json.Marshal(entry.ResponseHeaders)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (
			id, timestamp, request_method, request_url, request_headers, request_body,
			response_status, response_status_text, response_headers, response_body,
			response_time, response_size, collection_id, request_id, request_name, environment
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID, entry.Timestamp, entry.RequestMethod, entry.RequestURL,
		string(reqHeadersJSON), entry.RequestBody, entry.ResponseStatus, entry.ResponseStatusText,
		string(respHeadersJSON), entry.ResponseBody, entry.ResponseTime, entry.ResponseSize,
		entry.CollectionID, entry.RequestID, entry.RequestName, entry.Environment,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert history entry: %w", err)
	}
	return entry.ID, nil
}

// ListHistory returns entries newest first, up to limit (0 = no limit).
func (s *Store) ListHistory(ctx context.Context, limit int) ([]core.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	query := `
		SELECT id, timestamp, request_method, request_url, request_headers, request_body,
			response_status, response_status_text, response_headers, response_body,
			response_time, response_size, collection_id, request_id, request_name, environment
		FROM history ORDER BY timestamp DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []core.HistoryEntry
	for rows.Next() {
		var entry core.HistoryEntry
		var reqHeadersJSON, respHeadersJSON sql.NullString

		err := rows.Scan(
			&entry.ID, &entry.Timestamp, &entry.RequestMethod, &entry.RequestURL,
			&reqHeadersJSON, &entry.RequestBody, &entry.ResponseStatus, &entry.ResponseStatusText,
			&respHeadersJSON, &entry.ResponseBody, &entry.ResponseTime, &entry.ResponseSize,
			&entry.CollectionID, &entry.RequestID, &entry.RequestName, &entry.Environment,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		if reqHeadersJSON.Valid {
			json.Unmarshal([]byte(reqHeadersJSON.String), &entry.RequestHeaders)
		}
		if respHeadersJSON.Valid {
			json.Unmarshal([]byte(respHeadersJSON.String), &entry.ResponseHeaders)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// CountHistory returns the number of stored history entries.
func (s *Store) CountHistory(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

// ClearHistory removes all history entries.
func (s *Store) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM history"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
