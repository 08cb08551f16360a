// Package pageservice fetches pages from Notion and converts them to
// Markdown, consulting the render cache when one is configured.
package pageservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/notionmd/internal/cache"
	"github.com/starford/notionmd/internal/markdown"
	"github.com/starford/notionmd/internal/metrics"
	"github.com/starford/notionmd/internal/models"
	"github.com/starford/notionmd/internal/property"
)

// Upstream is the subset of the Notion client the service needs.
type Upstream interface {
	RetrievePage(ctx context.Context, token, id string) (*models.Document, error)
	FetchBlocks(ctx context.Context, token, id string) ([]models.Block, error)
	FetchPage(ctx context.Context, token, id string) (*models.Document, error)
	ListPages(ctx context.Context, token, databaseID string, offset, limit int) (*models.PageListing, error)
}

// Page is a converted page.
type Page struct {
	ID         string
	Properties *models.PropertyMap
	Body       string
	LastEdited time.Time
}

// Markdown returns the page body, prefixed with a frontmatter header of its
// properties when frontmatter is set.
func (p *Page) Markdown(frontmatter bool) (string, error) {
	if !frontmatter {
		return p.Body, nil
	}
	header, err := property.Compose(p.Properties)
	if err != nil {
		return "", fmt.Errorf("page %s: %w", p.ID, err)
	}
	return header + p.Body, nil
}

// PropertiesJSON returns the properties as an ordered JSON object.
func (p *Page) PropertiesJSON() (json.RawMessage, error) {
	raw, err := property.MarshalProperties(p.Properties)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", p.ID, err)
	}
	return raw, nil
}

// SettleWindow is how long after a page's last edit time its rendered body
// becomes cacheable. Notion truncates last_edited_time to the minute, so a
// later edit within the same minute keeps the same timestamp.
const SettleWindow = 2 * time.Minute

// Service coordinates upstream fetches, rendering and caching.
type Service struct {
	upstream Upstream
	cache    cache.PageCache
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithCache enables the render cache.
func WithCache(c cache.PageCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics records cache and render metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source used for the settle window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new page service.
func NewService(up Upstream, opts ...Option) *Service {
	s := &Service{upstream: up, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPage fetches and converts the page with the given id.
func (s *Service) GetPage(ctx context.Context, token, id string) (*Page, error) {
	id, err := ValidateID(id)
	if err != nil {
		return nil, err
	}

	if s.cache == nil {
		doc, err := s.upstream.FetchPage(ctx, token, id)
		if err != nil {
			return nil, err
		}
		return s.convert(doc), nil
	}

	doc, err := s.upstream.RetrievePage(ctx, token, id)
	if err != nil {
		return nil, err
	}

	body, hit, err := s.cache.Lookup(ctx, doc.ID, doc.LastEdited)
	if err != nil {
		s.logger.Warn("cache lookup failed", slog.String("page_id", doc.ID), slog.String("error", err.Error()))
		hit = false
	}
	s.metrics.ObserveCache(hit)
	if hit {
		return &Page{ID: doc.ID, Properties: doc.Properties, Body: body, LastEdited: doc.LastEdited}, nil
	}

	doc.Blocks, err = s.upstream.FetchBlocks(ctx, token, id)
	if err != nil {
		return nil, err
	}
	page := s.convert(doc)
	if s.now().Sub(page.LastEdited) < SettleWindow {
		s.logger.Debug("page edited recently, not cached", slog.String("page_id", page.ID))
		return page, nil
	}
	if err := s.cache.Put(ctx, page.ID, page.LastEdited, page.Body); err != nil {
		s.logger.Warn("cache store failed", slog.String("page_id", page.ID), slog.String("error", err.Error()))
	}
	return page, nil
}

func (s *Service) convert(doc *models.Document) *Page {
	start := time.Now()
	body := markdown.Render(doc.Blocks)
	s.metrics.ObserveRender(time.Since(start))

	props := doc.Properties
	if props == nil {
		props = models.NewPropertyMap()
	}
	return &Page{ID: doc.ID, Properties: props, Body: body, LastEdited: doc.LastEdited}
}

// ListPages returns one window of the page ids in a database.
func (s *Service) ListPages(ctx context.Context, token, databaseID string, p Pagination) (*models.PageListing, error) {
	databaseID, err := ValidateID(databaseID)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.upstream.ListPages(ctx, token, databaseID, p.Offset, p.Limit)
}
