package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetByLogin(ctx context.Context, login string) (int, string, error)
}

// Snapshot is a stored load-case document.
type Snapshot struct {
	ID        string    `json:"id"`
	OwnerID   int       `json:"owner_id"`
	Name      string    `json:"name"`
	Format    string    `json:"format"`
	Document  []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, s Snapshot) (string, error)
	GetSnapshot(ctx context.Context, owner int, id string) (Snapshot, error)
	ListSnapshots(ctx context.Context, owner int) ([]Snapshot, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	login TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS load_case_snapshots (
	id UUID PRIMARY KEY,
	owner_id INTEGER NOT NULL REFERENCES users(id),
	name TEXT NOT NULL,
	format TEXT NOT NULL,
	document BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Open connects to Postgres. Connection strings without sslmode get sslmode=require.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = "user=postgres dbname=postgres password=password sslmode=disable"
	}
	if !strings.Contains(dsn, "sslmode=") {
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			dsn += "?sslmode=require"
		} else {
			dsn += " sslmode=require"
		}
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database not responding: %w", err)
	}
	return db, nil
}

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

// GetByLogin returns ErrNotFound for an unknown login.
func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string
	query := "SELECT id, password FROM users WHERE login=$1"
	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrNotFound
	}
	if err != nil {
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresRepository) SaveSnapshot(ctx context.Context, s Snapshot) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	query := "INSERT INTO load_case_snapshots (id, owner_id, name, format, document) VALUES ($1, $2, $3, $4, $5)"
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.OwnerID, s.Name, s.Format, s.Document); err != nil {
		return "", err
	}
	return s.ID, nil
}

func (r *PostgresRepository) GetSnapshot(ctx context.Context, owner int, id string) (Snapshot, error) {
	s := Snapshot{ID: id, OwnerID: owner}
	query := "SELECT name, format, document, created_at FROM load_case_snapshots WHERE id=$1 AND owner_id=$2"
	err := r.db.QueryRowContext(ctx, query, id, owner).Scan(&s.Name, &s.Format, &s.Document, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// ListSnapshots returns the owner's snapshots newest first, without documents.
func (r *PostgresRepository) ListSnapshots(ctx context.Context, owner int) ([]Snapshot, error) {
	query := "SELECT id, name, format, created_at FROM load_case_snapshots WHERE owner_id=$1 ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Snapshot
	for rows.Next() {
		s := Snapshot{OwnerID: owner}
		if err := rows.Scan(&s.ID, &s.Name, &s.Format, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
