package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/parklandpickleball/ppl-playoffs/internal/bracket"
)

// BracketRecord is one stored bracket document plus its optimistic
// concurrency token. Writers read a record, transform the document through
// the engine, and write it back with Update; a version mismatch means
// somebody else got there first.
type BracketRecord struct {
	SeasonID   uuid.UUID
	DivisionID uuid.UUID
	Doc        *bracket.Bracket
	Version    int64
	UpdatedAt  time.Time
}

type bracketRow struct {
	SeasonID   uuid.UUID `db:"season_id"`
	DivisionID uuid.UUID `db:"division_id"`
	Format     string    `db:"format"`
	Doc        string    `db:"doc"`
	Version    int64     `db:"version"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r *bracketRow) record() (*BracketRecord, error) {
	var doc bracket.Bracket
	if err := json.Unmarshal([]byte(r.Doc), &doc); err != nil {
		return nil, fmt.Errorf("decode bracket doc: %w", err)
	}
	return &BracketRecord{
		SeasonID:   r.SeasonID,
		DivisionID: r.DivisionID,
		Doc:        &doc,
		Version:    r.Version,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

const (
	getBracketQuery = `SELECT * FROM brackets WHERE season_id = $1 AND division_id = $2`

	insertBracketQuery = `
		INSERT INTO brackets (season_id, division_id, format, doc, version, updated_at)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT DO NOTHING
	`

	casUpdateBracketQuery = `
		UPDATE brackets
		SET format = $1, doc = $2, version = version + 1, updated_at = $3
		WHERE season_id = $4 AND division_id = $5 AND version = $6
	`
)

type BracketStore struct {
	db *sqlx.DB
}

func NewBracketStore(db *sqlx.DB) *BracketStore {
	return &BracketStore{db: db}
}

func (s *BracketStore) Get(ctx context.Context, seasonID, divisionID uuid.UUID) (*BracketRecord, error) {
	var row bracketRow
	err := s.db.GetContext(ctx, &row, getBracketQuery, seasonID, divisionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.record()
}

// Create stores a brand-new bracket at version 1. A bracket already stored
// under the same keys is left alone and reported as ErrBracketExists.
func (s *BracketStore) Create(ctx context.Context, seasonID, divisionID uuid.UUID, doc *bracket.Bracket) (*BracketRecord, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode bracket doc: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, insertBracketQuery, seasonID, divisionID, string(doc.Format), string(raw), now)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrBracketExists
	}

	return &BracketRecord{
		SeasonID:   seasonID,
		DivisionID: divisionID,
		Doc:        doc.Clone(),
		Version:    1,
		UpdatedAt:  now,
	}, nil
}

// Update writes a transformed document on top of expectedVersion. Zero rows
// affected means the stored version moved underneath the caller, who should
// re-read and retry.
func (s *BracketStore) Update(ctx context.Context, seasonID, divisionID uuid.UUID, doc *bracket.Bracket, expectedVersion int64) (*BracketRecord, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode bracket doc: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, casUpdateBracketQuery, string(doc.Format), string(raw), now, seasonID, divisionID, expectedVersion)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrVersionConflict
	}

	return &BracketRecord{
		SeasonID:   seasonID,
		DivisionID: divisionID,
		Doc:        doc.Clone(),
		Version:    expectedVersion + 1,
		UpdatedAt:  now,
	}, nil
}
