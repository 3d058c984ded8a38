package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nullptr-dev/trailindex/pkg/trailerr"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

var errIncompatibleSchema = errors.New("incompatible schema")

// SQLiteStorage implements PersistentStorage over a SQLite database.
// Like the teacher's internal/storage.SQLiteStorage, it opens the
// database with a single connection (SQLite's single-writer model means
// a pool buys nothing) and serializes every statement through that one
// *sql.DB handle.
type SQLiteStorage struct {
	db *sql.DB

	modeMu         sync.Mutex
	mode           Mode
	isIncompatible bool

	cacheMu     sync.Mutex
	refByCache  *lru.Cache[string, []types.FilePath]
	refdByCache *lru.Cache[string, []types.FilePath]
}

// openDatabase opens a SQLite database with the teacher's settings:
// WAL mode for better concurrency, a single connection, foreign keys on.
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage opens (creating if necessary) the database at dbPath.
// An incompatible schema version does not fail the open: the storage
// comes up in ModeIncompatible so the caller's Project controller can
// surface PROJECT_STATE_OUTVERSIONED instead of crashing.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	refCache, _ := lru.New[string, []types.FilePath](4096)
	refdCache, _ := lru.New[string, []types.FilePath](4096)
	s := &SQLiteStorage{db: db, refByCache: refCache, refdByCache: refdCache}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		if errors.Is(err, errIncompatibleSchema) {
			s.isIncompatible = true
			s.mode = ModeIncompatible
			return s, nil
		}
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	empty, err := s.queryIsEmpty(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if empty {
		s.mode = ModeEmpty
	}

	return s, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) Mode() Mode {
	s.modeMu.Lock()
	defer s.modeMu.Unlock()
	return s.mode
}

func (s *SQLiteStorage) IsIncompatible() bool {
	s.modeMu.Lock()
	defer s.modeMu.Unlock()
	return s.isIncompatible
}

func (s *SQLiteStorage) IsEmpty() bool {
	empty, err := s.queryIsEmpty(context.Background())
	return err == nil && empty
}

func (s *SQLiteStorage) queryIsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&count); err != nil {
		return false, fmt.Errorf("count files: %w", err)
	}
	return count == 0, nil
}

// SetMode transitions the storage between Read and Write. Only one task
// at a time may hold write access (spec.md §3); callers are expected to
// serialize their own calls (TaskParseWrapper is the sole caller in the
// pipeline), so this just records the transition rather than blocking.
func (s *SQLiteStorage) SetMode(ctx context.Context, mode Mode) error {
	s.modeMu.Lock()
	defer s.modeMu.Unlock()
	if s.isIncompatible {
		return fmt.Errorf("%w: storage is incompatible", trailerr.ErrStorageWriteFailed)
	}
	s.mode = mode
	return nil
}

// BuildCaches rebuilds the reference-graph lookup caches. It must be
// called after any write phase so the delta planner's next run sees
// fresh results.
func (s *SQLiteStorage) BuildCaches(ctx context.Context) error {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.refByCache.Purge()
	s.refdByCache.Purge()
	return nil
}

func (s *SQLiteStorage) invalidateCaches() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.refByCache.Purge()
	s.refdByCache.Purge()
}

func (s *SQLiteStorage) GetInfoOnAllFiles(ctx context.Context) ([]types.FileInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, last_write_time FROM files`)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.FileInfo
	for rows.Next() {
		var path string
		var unixNano int64
		if err := rows.Scan(&path, &unixNano); err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		out = append(out, types.FileInfo{
			Path:          types.NewFilePath(path),
			LastWriteTime: time.Unix(0, unixNano),
		})
	}
	return out, rows.Err()
}

func pathSetKey(paths []types.FilePath) string {
	strs := make([]string, len(paths))
	for i, p := range paths {
		strs[i] = p.String()
	}
	return strings.Join(strs, "\x00")
}

func pathsToArgs(paths []types.FilePath) []any {
	args := make([]any, len(paths))
	for i, p := range paths {
		args[i] = p.String()
	}
	return args
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "?"
	}
	return strings.Join(parts, ",")
}

// GetReferencing returns the set of files that reference (e.g. #include
// or import) any file in paths.
func (s *SQLiteStorage) GetReferencing(ctx context.Context, paths []types.FilePath) ([]types.FilePath, error) {
	return s.queryAdjacent(ctx, paths, s.refByCache,
		`SELECT DISTINCT source_path FROM edges WHERE target_path IN (`)
}

// GetReferenced returns the set of files referenced by any file in
// paths.
func (s *SQLiteStorage) GetReferenced(ctx context.Context, paths []types.FilePath) ([]types.FilePath, error) {
	return s.queryAdjacent(ctx, paths, s.refdByCache,
		`SELECT DISTINCT target_path FROM edges WHERE source_path IN (`)
}

func (s *SQLiteStorage) queryAdjacent(ctx context.Context, paths []types.FilePath, cache *lru.Cache[string, []types.FilePath], queryPrefix string) ([]types.FilePath, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	key := pathSetKey(paths)
	s.cacheMu.Lock()
	if cached, ok := cache.Get(key); ok {
		s.cacheMu.Unlock()
		return cached, nil
	}
	s.cacheMu.Unlock()

	query := queryPrefix + placeholders(len(paths)) + ")"
	rows, err := s.db.QueryContext(ctx, query, pathsToArgs(paths)...)
	if err != nil {
		return nil, fmt.Errorf("query reference graph: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.FilePath
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan reference row: %w", err)
		}
		out = append(out, types.NewFilePath(p))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	cache.Add(key, out)
	s.cacheMu.Unlock()

	return out, nil
}

func (s *SQLiteStorage) GetProjectSettingsText(ctx context.Context) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'project_settings_text'`).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read project settings text: %w", err)
	}
	return text, nil
}

func (s *SQLiteStorage) SetProjectSettingsText(ctx context.Context, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('project_settings_text', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, text)
	if err != nil {
		return fmt.Errorf("write project settings text: %w", err)
	}
	return nil
}

// Clear wipes every file, symbol and edge record, used before a full
// refresh.
func (s *SQLiteStorage) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin clear: %v", trailerr.ErrStorageWriteFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"edges", "symbols", "files"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%w: clear %s: %v", trailerr.ErrStorageWriteFailed, table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit clear: %v", trailerr.ErrStorageWriteFailed, err)
	}

	s.invalidateCaches()
	s.modeMu.Lock()
	s.mode = ModeEmpty
	s.modeMu.Unlock()
	return nil
}

// Inject durably commits one IntermediateStorage's records, replacing
// any prior rows for its files so Inject is safe to call once per file
// per refresh. It runs inside a single transaction: on any failure
// nothing is committed, which is what keeps a canceled-mid-flight
// refresh from leaving partial file data behind (spec.md scenario S5).
func (s *SQLiteStorage) Inject(ctx context.Context, is *IntermediateStorage) error {
	if is == nil {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin inject: %v", trailerr.ErrStorageWriteFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, f := range is.Files {
		for _, table := range []string{"symbols", "edges"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE source_path = ?", f.Path.String()); err != nil {
				return fmt.Errorf("%w: replace %s: %v", trailerr.ErrStorageWriteFailed, table, err)
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO files (path, last_write_time) VALUES (?, ?)
			 ON CONFLICT(path) DO UPDATE SET last_write_time = excluded.last_write_time`,
			f.Path.String(), f.LastWriteTime.UnixNano())
		if err != nil {
			return fmt.Errorf("%w: upsert file: %v", trailerr.ErrStorageWriteFailed, err)
		}
	}

	for _, r := range is.Records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO symbols (source_path, name, kind, line) VALUES (?, ?, ?, ?)`,
			r.SourcePath.String(), r.Name, r.Kind, r.Line)
		if err != nil {
			return fmt.Errorf("%w: insert symbol: %v", trailerr.ErrStorageWriteFailed, err)
		}
	}

	for _, e := range is.Edges {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO edges (source_path, target_path) VALUES (?, ?)`,
			e.SourcePath.String(), e.TargetPath.String())
		if err != nil {
			return fmt.Errorf("%w: insert edge: %v", trailerr.ErrStorageWriteFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit inject: %v", trailerr.ErrStorageWriteFailed, err)
	}

	s.invalidateCaches()
	return nil
}

// CleanFiles deletes every symbol, edge and file record whose source is
// in paths. TaskCleanStorage calls this once per chunk so a clean step
// can yield StateRunning between chunks on a large file set.
func (s *SQLiteStorage) CleanFiles(ctx context.Context, paths []types.FilePath) error {
	if len(paths) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin clean: %v", trailerr.ErrStorageWriteFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	args := pathsToArgs(paths)
	ph := placeholders(len(paths))

	if _, err := tx.ExecContext(ctx, "DELETE FROM symbols WHERE source_path IN ("+ph+")", args...); err != nil {
		return fmt.Errorf("%w: clean symbols: %v", trailerr.ErrStorageWriteFailed, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM edges WHERE source_path IN ("+ph+") OR target_path IN ("+ph+")",
		append(append([]any{}, args...), args...)...); err != nil {
		return fmt.Errorf("%w: clean edges: %v", trailerr.ErrStorageWriteFailed, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM files WHERE path IN ("+ph+")", args...); err != nil {
		return fmt.Errorf("%w: clean files: %v", trailerr.ErrStorageWriteFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit clean: %v", trailerr.ErrStorageWriteFailed, err)
	}

	s.invalidateCaches()
	return nil
}
