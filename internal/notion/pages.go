package notion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/starford/notionmd/internal/models"
)

const pageSize = 100

// RetrievePage fetches a page's metadata and properties. The returned
// document has no blocks.
func (c *Client) RetrievePage(ctx context.Context, token, id string) (*models.Document, error) {
	var page rawPage
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+url.PathEscape(id), token, nil, &page); err != nil {
		return nil, fmt.Errorf("retrieve page %s: %w", id, err)
	}
	props, err := decodeProperties(page.Properties)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", id, err)
	}
	docID := page.ID
	if docID == "" {
		docID = id
	}
	return &models.Document{
		ID:         docID,
		Properties: props,
		LastEdited: page.LastEditedTime.UTC(),
	}, nil
}

// FetchBlocks fetches the block tree under id. Children of nested blocks
// are fetched concurrently.
func (c *Client) FetchBlocks(ctx context.Context, token, id string) ([]models.Block, error) {
	nodes, err := c.fetchTree(ctx, token, id)
	if err != nil {
		return nil, fmt.Errorf("fetch blocks %s: %w", id, err)
	}
	return convertBlocks(nodes, c.logger), nil
}

// FetchPage fetches a page's properties and its block tree in parallel.
func (c *Client) FetchPage(ctx context.Context, token, id string) (*models.Document, error) {
	var (
		doc    *models.Document
		blocks []models.Block
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		doc, err = c.RetrievePage(gctx, token, id)
		return err
	})
	g.Go(func() error {
		var err error
		blocks, err = c.FetchBlocks(gctx, token, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	doc.Blocks = blocks
	return doc, nil
}

// ListPages queries every page of a database and returns the window
// [offset, offset+limit) of their ids.
func (c *Client) ListPages(ctx context.Context, token, databaseID string, offset, limit int) (*models.PageListing, error) {
	ids, err := c.QueryDatabase(ctx, token, databaseID)
	if err != nil {
		return nil, err
	}
	listing := models.NewPageListing(ids, offset, limit)
	return &listing, nil
}

// QueryDatabase returns the ids of every page in a database, in the order
// Notion returns them.
func (c *Client) QueryDatabase(ctx context.Context, token, databaseID string) ([]string, error) {
	path := "/v1/databases/" + url.PathEscape(databaseID) + "/query"

	ids := []string{}
	req := queryRequest{PageSize: pageSize}
	for {
		var resp listResponse[rawRef]
		if err := c.do(ctx, http.MethodPost, path, token, req, &resp); err != nil {
			return nil, fmt.Errorf("query database %s: %w", databaseID, err)
		}
		for _, r := range resp.Results {
			ids = append(ids, r.ID)
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return ids, nil
		}
		req.StartCursor = resp.NextCursor
	}
}

func (c *Client) fetchTree(ctx context.Context, token, id string) ([]*node, error) {
	raws, err := c.listChildren(ctx, token, id)
	if err != nil {
		return nil, err
	}

	nodes := make([]*node, len(raws))
	g, gctx := errgroup.WithContext(ctx)
	for i, raw := range raws {
		n := &node{raw: raw}
		nodes[i] = n
		if !raw.HasChildren || !descends(raw.Type) {
			continue
		}
		g.Go(func() error {
			kids, err := c.fetchTree(gctx, token, n.raw.ID)
			if err != nil {
				return err
			}
			n.children = kids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return nodes, nil
}

// listChildren returns the direct children of a block, following cursors.
func (c *Client) listChildren(ctx context.Context, token, id string) ([]rawBlock, error) {
	var out []rawBlock
	cursor := ""
	for {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(pageSize))
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}
		path := "/v1/blocks/" + url.PathEscape(id) + "/children?" + q.Encode()

		var resp listResponse[rawBlock]
		if err := c.do(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			return out, nil
		}
		cursor = resp.NextCursor
	}
}
