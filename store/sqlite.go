package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // driver registration

	"github.com/MattaKruger/timbre/features"
	"github.com/MattaKruger/timbre/logging"
)

// SQLiteStore implements FeatureStore on a single SQLite database. Writes
// serialize behind a mutex, one logical writer; reads go straight to the
// pool.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	logger logging.Logger
}

var _ FeatureStore = (*SQLiteStore)(nil)

// Open creates a connection, verifies it, and runs the schema migration.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &features.StorageError{Op: "open", Err: err}
	}

	// One connection: SQLite allows a single writer anyway, and a ":memory:"
	// database only exists on the connection that created it.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &features.StorageError{Op: "open", Err: err}
	}

	s := &SQLiteStore{
		db: db,
		logger: logging.WithFields(logging.Fields{
			"component": "sqlite_store",
		}),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, &features.StorageError{Op: "migrate", Err: err}
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS audio_features (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		duration_seconds REAL NOT NULL,
		sample_rate_hz INTEGER NOT NULL,
		spectral_centroid_hz REAL NOT NULL,
		spectral_rolloff_hz REAL NOT NULL,
		zero_crossing_rate REAL NOT NULL,
		rms_energy REAL NOT NULL,
		tempo_bpm REAL NOT NULL,
		chroma_energy REAL NOT NULL,
		mfcc_00 REAL NOT NULL,
		mfcc_01 REAL NOT NULL,
		mfcc_02 REAL NOT NULL,
		mfcc_03 REAL NOT NULL,
		mfcc_04 REAL NOT NULL,
		mfcc_05 REAL NOT NULL,
		mfcc_06 REAL NOT NULL,
		mfcc_07 REAL NOT NULL,
		mfcc_08 REAL NOT NULL,
		mfcc_09 REAL NOT NULL,
		mfcc_10 REAL NOT NULL,
		mfcc_11 REAL NOT NULL,
		mfcc_12 REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audio_features_filename
		ON audio_features(filename);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close ensures the connection is closed gracefully
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const insertQuery = `
	INSERT INTO audio_features (
		id, filename, created_at, duration_seconds, sample_rate_hz,
		spectral_centroid_hz, spectral_rolloff_hz, zero_crossing_rate,
		rms_energy, tempo_bpm, chroma_energy,
		mfcc_00, mfcc_01, mfcc_02, mfcc_03, mfcc_04, mfcc_05, mfcc_06,
		mfcc_07, mfcc_08, mfcc_09, mfcc_10, mfcc_11, mfcc_12
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectColumns = `
	id, filename, created_at, duration_seconds, sample_rate_hz,
	spectral_centroid_hz, spectral_rolloff_hz, zero_crossing_rate,
	rms_energy, tempo_bpm, chroma_energy,
	mfcc_00, mfcc_01, mfcc_02, mfcc_03, mfcc_04, mfcc_05, mfcc_06,
	mfcc_07, mfcc_08, mfcc_09, mfcc_10, mfcc_11, mfcc_12
`

// assignIdentity fills ID and CreatedAt when unset. It runs at persistence
// time so re-extraction of the same file always produces a distinct row.
func assignIdentity(fv *features.AudioFeatures) {
	if fv.ID == "" {
		fv.ID = uuid.NewString()
	}
	if fv.CreatedAt.IsZero() {
		fv.CreatedAt = time.Now().UTC()
	}
}

func insertArgs(fv *features.AudioFeatures) []any {
	return []any{
		fv.ID, fv.Filename, fv.CreatedAt, fv.DurationSeconds, fv.SampleRateHz,
		fv.SpectralCentroidHz, fv.SpectralRolloffHz, fv.ZeroCrossingRate,
		fv.RMSEnergy, fv.TempoBPM, fv.ChromaEnergy,
		fv.MFCC[0], fv.MFCC[1], fv.MFCC[2], fv.MFCC[3], fv.MFCC[4],
		fv.MFCC[5], fv.MFCC[6], fv.MFCC[7], fv.MFCC[8], fv.MFCC[9],
		fv.MFCC[10], fv.MFCC[11], fv.MFCC[12],
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeature(row rowScanner) (*features.AudioFeatures, error) {
	var fv features.AudioFeatures
	err := row.Scan(
		&fv.ID, &fv.Filename, &fv.CreatedAt, &fv.DurationSeconds, &fv.SampleRateHz,
		&fv.SpectralCentroidHz, &fv.SpectralRolloffHz, &fv.ZeroCrossingRate,
		&fv.RMSEnergy, &fv.TempoBPM, &fv.ChromaEnergy,
		&fv.MFCC[0], &fv.MFCC[1], &fv.MFCC[2], &fv.MFCC[3], &fv.MFCC[4],
		&fv.MFCC[5], &fv.MFCC[6], &fv.MFCC[7], &fv.MFCC[8], &fv.MFCC[9],
		&fv.MFCC[10], &fv.MFCC[11], &fv.MFCC[12],
	)
	if err != nil {
		return nil, err
	}
	return &fv, nil
}

// Insert persists one vector unconditionally
func (s *SQLiteStore) Insert(ctx context.Context, fv *features.AudioFeatures) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignIdentity(fv)
	if _, err := s.db.ExecContext(ctx, insertQuery, insertArgs(fv)...); err != nil {
		return &features.StorageError{Op: "insert", Err: err}
	}

	s.logger.Debug("inserted vector", logging.Fields{
		"id":       fv.ID,
		"filename": fv.Filename,
	})
	return nil
}

// InsertBatch stages every accepted vector in one transaction. Under the
// skip policy a vector whose filename already exists, in the table or
// earlier in the same batch, is counted skipped rather than inserted. The
// commit is all-or-nothing: any failure rolls the whole batch back.
func (s *SQLiteStore) InsertBatch(ctx context.Context, fvs []*features.AudioFeatures, policy DuplicatePolicy) (*IngestSummary, error) {
	if policy == "" {
		policy = DuplicateSkip
	}
	if policy != DuplicateSkip && policy != DuplicateForce {
		return nil, &features.StorageError{Op: "insert_batch", Err: fmt.Errorf("unknown duplicate policy %q", policy)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &features.StorageError{Op: "insert_batch", Err: err}
	}
	defer tx.Rollback()

	insertStmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return nil, &features.StorageError{Op: "insert_batch", Err: err}
	}
	defer insertStmt.Close()

	existsStmt, err := tx.PrepareContext(ctx, "SELECT COUNT(*) FROM audio_features WHERE filename = ?")
	if err != nil {
		return nil, &features.StorageError{Op: "insert_batch", Err: err}
	}
	defer existsStmt.Close()

	summary := &IngestSummary{}
	accepted := make(map[string]bool) // filenames inserted earlier in this batch

	for _, fv := range fvs {
		if fv == nil {
			continue
		}

		if policy == DuplicateSkip {
			if accepted[fv.Filename] {
				summary.Skipped++
				continue
			}
			var existing int
			if err := existsStmt.QueryRowContext(ctx, fv.Filename).Scan(&existing); err != nil {
				return nil, &features.StorageError{Op: "insert_batch", Err: err}
			}
			if existing > 0 {
				summary.Skipped++
				continue
			}
		}

		assignIdentity(fv)
		if _, err := insertStmt.ExecContext(ctx, insertArgs(fv)...); err != nil {
			return nil, &features.StorageError{Op: "insert_batch", Err: fmt.Errorf("inserting %s: %w", fv.Filename, err)}
		}
		accepted[fv.Filename] = true
		summary.Inserted++
	}

	if err := tx.Commit(); err != nil {
		return nil, &features.StorageError{Op: "commit", Err: err}
	}

	s.logger.Info("batch committed", logging.Fields{
		"inserted": summary.Inserted,
		"skipped":  summary.Skipped,
		"policy":   string(policy),
	})
	return summary, nil
}

// FindByID returns the vector with the given id
func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*features.AudioFeatures, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM audio_features WHERE id = ?", id)

	fv, err := scanFeature(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("id %s: %w", id, features.ErrNotFound)
		}
		return nil, &features.StorageError{Op: "find_by_id", Err: err}
	}
	return fv, nil
}

// FindByFilename returns every vector stored under the filename, newest
// first. Force-ingested duplicates all show up.
func (s *SQLiteStore) FindByFilename(ctx context.Context, filename string) ([]*features.AudioFeatures, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM audio_features WHERE filename = ? ORDER BY created_at DESC, id",
		filename)
	if err != nil {
		return nil, &features.StorageError{Op: "find_by_filename", Err: err}
	}
	defer rows.Close()

	return collectFeatures(rows, "find_by_filename")
}

// List returns stored vectors newest first
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*features.AudioFeatures, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats -1 as no limit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM audio_features ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, &features.StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	return collectFeatures(rows, "list")
}

func collectFeatures(rows *sql.Rows, op string) ([]*features.AudioFeatures, error) {
	out := []*features.AudioFeatures{}
	for rows.Next() {
		fv, err := scanFeature(rows)
		if err != nil {
			return nil, &features.StorageError{Op: op, Err: err}
		}
		out = append(out, fv)
	}
	if err := rows.Err(); err != nil {
		return nil, &features.StorageError{Op: op, Err: err}
	}
	return out, nil
}

// Count returns the number of stored vectors
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audio_features").Scan(&count); err != nil {
		return 0, &features.StorageError{Op: "count", Err: err}
	}
	return count, nil
}
