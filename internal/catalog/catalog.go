// Package catalog caches the judges' problem catalogs locally.
//
// Problem selection needs tens of thousands of candidate problems;
// fetching them from the judges on every session creation would burn the
// rate budget, so the catalog persists the normalized problem lists in a
// SQLite database and refreshes them on demand. A refresh failure on one
// platform never discards the other platform's data, mirroring the poll
// orchestrator's per-platform isolation.
package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/judge"
)

//go:embed schema.sql
var schemaSQL string

// Catalog is the local problem-catalog cache.
type Catalog struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() int64

	mu       sync.Mutex
	poolGen  int64
	poolMemo []domain.NormalizedProblem
}

// Open creates or opens the cache database at path. WAL mode keeps
// reads concurrent with the single writer.
func Open(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect catalog db: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}

	return &Catalog{
		db:     db,
		logger: logger,
		now:    func() int64 { return time.Now().Unix() },
	}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error { return c.db.Close() }

// RefreshResult reports the outcome of one RefreshAll call.
type RefreshResult struct {
	Refreshed map[domain.Platform]bool
	Errors    []string
}

// OK reports whether every platform refreshed successfully.
func (r RefreshResult) OK() bool { return len(r.Errors) == 0 }

// RefreshAll fetches both catalogs and replaces the cached rows per
// platform. Failures are isolated: a platform that fails keeps its
// previous rows and refresh timestamp.
func (c *Catalog) RefreshAll(ctx context.Context, clients judge.Clients) (RefreshResult, error) {
	result := RefreshResult{Refreshed: map[domain.Platform]bool{}}

	for _, platform := range domain.Platforms {
		client := clients.For(platform)
		if client == nil {
			continue
		}
		problems, err := client.Problems(ctx)
		if err != nil {
			c.logger.Warn("catalog refresh failed", "platform", platform, "error", err)
			result.Refreshed[platform] = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", platform, err))
			continue
		}
		if err := c.replacePlatform(ctx, platform, problems); err != nil {
			return result, fmt.Errorf("store %s catalog: %w", platform, err)
		}
		result.Refreshed[platform] = true
		c.logger.Info("catalog refreshed", "platform", platform, "problems", len(problems))
	}

	c.mu.Lock()
	c.poolGen = 0 // force pool rebuild
	c.poolMemo = nil
	c.mu.Unlock()

	return result, nil
}

func (c *Catalog) replacePlatform(ctx context.Context, platform domain.Platform, problems []domain.NormalizedProblem) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM problems WHERE platform = ?`, string(platform)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO problems (platform, key, name, url, difficulty, tags)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(platform, key) DO UPDATE SET
			name = excluded.name,
			url = excluded.url,
			difficulty = excluded.difficulty,
			tags = excluded.tags
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range problems {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return err
		}
		var difficulty any
		if p.Difficulty != nil {
			difficulty = *p.Difficulty
		}
		if _, err := stmt.ExecContext(ctx, string(p.Platform), p.Key, p.Name, p.URL, difficulty, string(tagsJSON)); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO refresh_meta (platform, refreshed_at) VALUES (?, ?)
		ON CONFLICT(platform) DO UPDATE SET refreshed_at = excluded.refreshed_at
	`, string(platform), c.now()); err != nil {
		return err
	}

	return tx.Commit()
}

// RefreshedAt returns the last successful refresh time per platform.
// Platforms never refreshed are absent.
func (c *Catalog) RefreshedAt(ctx context.Context) (map[domain.Platform]int64, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT platform, refreshed_at FROM refresh_meta`)
	if err != nil {
		return nil, fmt.Errorf("read refresh meta: %w", err)
	}
	defer rows.Close()

	meta := map[domain.Platform]int64{}
	for rows.Next() {
		var platform string
		var at int64
		if err := rows.Scan(&platform, &at); err != nil {
			return nil, err
		}
		meta[domain.Platform(platform)] = at
	}
	return meta, rows.Err()
}

// Pool returns the full normalized candidate pool, sorted by key. The
// result is memoized until the next refresh; callers must not mutate it.
func (c *Catalog) Pool(ctx context.Context) ([]domain.NormalizedProblem, error) {
	meta, err := c.RefreshedAt(ctx)
	if err != nil {
		return nil, err
	}
	var gen int64
	for _, at := range meta {
		gen += at
	}

	c.mu.Lock()
	if c.poolMemo != nil && c.poolGen == gen {
		memo := c.poolMemo
		c.mu.Unlock()
		return memo, nil
	}
	c.mu.Unlock()

	pool, err := c.readPool(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.poolGen = gen
	c.poolMemo = pool
	c.mu.Unlock()
	return pool, nil
}

func (c *Catalog) readPool(ctx context.Context) ([]domain.NormalizedProblem, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT platform, key, name, url, difficulty, tags FROM problems
	`)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	defer rows.Close()

	var pool []domain.NormalizedProblem
	for rows.Next() {
		var platform, key, name, url, tagsJSON string
		var difficulty sql.NullInt64
		if err := rows.Scan(&platform, &key, &name, &url, &difficulty, &tagsJSON); err != nil {
			return nil, err
		}

		p := domain.NormalizedProblem{
			Platform: domain.Platform(platform),
			Key:      key,
			Name:     name,
			URL:      url,
		}
		if difficulty.Valid {
			d := int(difficulty.Int64)
			p.Difficulty = &d
		}
		if tagsJSON != "" && tagsJSON != "[]" {
			if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil {
				return nil, fmt.Errorf("catalog tags for %s/%s: %w", platform, key, err)
			}
		}
		pool = append(pool, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Key != pool[j].Key {
			return pool[i].Key < pool[j].Key
		}
		return pool[i].Platform < pool[j].Platform
	})
	return pool, nil
}

// FilterTags keeps only problems carrying at least one of the wanted
// tags. Empty or whitespace-only tags in want are ignored; an empty want
// list keeps everything.
func FilterTags(pool []domain.NormalizedProblem, want []string) []domain.NormalizedProblem {
	wanted := map[string]bool{}
	for _, tag := range want {
		if t := strings.TrimSpace(tag); t != "" {
			wanted[t] = true
		}
	}
	if len(wanted) == 0 {
		return pool
	}

	var out []domain.NormalizedProblem
	for _, p := range pool {
		for _, tag := range p.Tags {
			if wanted[tag] {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
