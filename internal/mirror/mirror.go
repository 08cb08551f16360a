// Package mirror writes every page of a Notion database into a local
// directory of Markdown files named after the page id.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/notionmd/internal/pageservice"
	"github.com/starford/notionmd/internal/storage"
)

// Pages converts a single page.
type Pages interface {
	GetPage(ctx context.Context, token, id string) (*pageservice.Page, error)
}

// Lister enumerates the pages of a database.
type Lister interface {
	QueryDatabase(ctx context.Context, token, databaseID string) ([]string, error)
}

// Options controls one mirror run.
type Options struct {
	DatabaseID  string
	Token       string
	Frontmatter bool
	Prune       bool
	Workers     int
}

// Result counts what a run did.
type Result struct {
	Written   int
	Unchanged int
	Pruned    int
	Failed    int
}

// Mirror syncs a database into a vault.
type Mirror struct {
	pages  Pages
	lister Lister
	store  storage.Provider
	logger *slog.Logger
}

// New creates a Mirror.
func New(pages Pages, lister Lister, store storage.Provider, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{pages: pages, lister: lister, store: store, logger: logger}
}

// FileName is the vault path of a page.
func FileName(id string) string {
	return id + ".md"
}

// Run mirrors the database once. Individual page failures are logged and
// counted; pruning is skipped when any page failed.
func (m *Mirror) Run(ctx context.Context, opts Options) (Result, error) {
	databaseID, err := pageservice.ValidateID(opts.DatabaseID)
	if err != nil {
		return Result{}, err
	}
	ids, err := m.lister.QueryDatabase(ctx, opts.Token, databaseID)
	if err != nil {
		return Result{}, fmt.Errorf("mirror: list pages: %w", err)
	}

	entries, err := m.store.List("")
	if err != nil {
		return Result{}, fmt.Errorf("mirror: list vault: %w", err)
	}
	existing := make(map[string]string, len(entries))
	for _, e := range entries {
		existing[e.Path] = e.Checksum
	}

	var written, unchanged, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for _, id := range ids {
		g.Go(func() error {
			changed, err := m.syncPage(gctx, opts, id, existing[FileName(id)])
			switch {
			case gctx.Err() != nil:
				return gctx.Err()
			case err != nil:
				failed.Add(1)
				m.logger.Error("mirror page failed", slog.String("page_id", id), slog.String("error", err.Error()))
			case changed:
				written.Add(1)
			default:
				unchanged.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("mirror: %w", err)
	}

	res := Result{
		Written:   int(written.Load()),
		Unchanged: int(unchanged.Load()),
		Failed:    int(failed.Load()),
	}
	if opts.Prune && res.Failed == 0 {
		res.Pruned = m.prune(ids, entries)
	}

	m.logger.Info("mirror complete",
		slog.String("database_id", databaseID),
		slog.Int("pages", len(ids)),
		slog.Int("written", res.Written),
		slog.Int("unchanged", res.Unchanged),
		slog.Int("pruned", res.Pruned),
		slog.Int("failed", res.Failed))

	if res.Failed > 0 {
		return res, fmt.Errorf("mirror: %d of %d pages failed", res.Failed, len(ids))
	}
	return res, nil
}

// syncPage writes one page unless the vault already holds identical bytes.
func (m *Mirror) syncPage(ctx context.Context, opts Options, id, oldSum string) (bool, error) {
	page, err := m.pages.GetPage(ctx, opts.Token, id)
	if err != nil {
		return false, err
	}
	md, err := page.Markdown(opts.Frontmatter)
	if err != nil {
		return false, err
	}
	if oldSum == storage.Checksum([]byte(md)) {
		return false, nil
	}
	if err := m.store.Write(FileName(id), []byte(md)); err != nil {
		return false, err
	}
	return true, nil
}

// prune deletes top-level page files whose page no longer exists. Files not
// named after a page id are left alone.
func (m *Mirror) prune(ids []string, entries []storage.Entry) int {
	live := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		live[FileName(id)] = struct{}{}
	}

	pruned := 0
	for _, e := range entries {
		if _, ok := live[e.Path]; ok || path.Dir(e.Path) != "." {
			continue
		}
		if _, err := uuid.Parse(strings.TrimSuffix(e.Path, ".md")); err != nil {
			continue
		}
		if err := m.store.Delete(e.Path); err != nil {
			m.logger.Warn("prune failed", slog.String("path", e.Path), slog.String("error", err.Error()))
			continue
		}
		pruned++
	}
	return pruned
}
