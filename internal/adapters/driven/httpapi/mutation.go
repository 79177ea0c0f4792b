package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven"
)

// Ensure Client implements MutationAPI
var _ driven.MutationAPI = (*Client)(nil)

func itemPath(itemID, action string) string {
	return "/api/items/" + url.PathEscape(itemID) + "/" + action + "/"
}

// CreateItem registers a new listing. The link is scheme-normalized and
// the source classified from it before submission; the submission-time
// classification is authoritative, the backend stores it as sent.
func (c *Client) CreateItem(ctx context.Context, input domain.CreateItemInput) (*domain.Item, error) {
	input.Link = domain.NormalizeLink(input.Link)
	if input.Source == "" {
		input.Source = domain.ClassifySource(input.Link)
	}

	var raw domain.RawItem
	if err := c.do(ctx, http.MethodPost, "/api/items/", nil, input, &raw); err != nil {
		return nil, err
	}
	item := domain.NormalizeItem(raw, 0, c.viewerID(ctx))
	// The creator owns what they just created even when the payload omits
	// the owner field.
	item.Owned = true
	return &item, nil
}

// TrackClick records a click on a listing.
func (c *Client) TrackClick(ctx context.Context, itemID string) error {
	if itemID == "" {
		return fmt.Errorf("%w: empty item id", domain.ErrInvalidInput)
	}
	return c.do(ctx, http.MethodPost, itemPath(itemID, "click"), nil, nil, nil)
}

// ExtendItem pushes out a listing's expiry.
func (c *Client) ExtendItem(ctx context.Context, itemID string) (*domain.Item, error) {
	var raw domain.RawItem
	if err := c.do(ctx, http.MethodPost, itemPath(itemID, "extend"), nil, nil, &raw); err != nil {
		return nil, err
	}
	item := domain.NormalizeItem(raw, 0, c.viewerID(ctx))
	return &item, nil
}

// ReportItem files a report against a listing.
func (c *Client) ReportItem(ctx context.Context, itemID string, input domain.ReportInput) (*domain.ReportResult, error) {
	var result domain.ReportResult
	if err := c.do(ctx, http.MethodPost, itemPath(itemID, "report"), nil, input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdatePrice sets a new price on an owned listing.
func (c *Client) UpdatePrice(ctx context.Context, itemID string, price int) (*domain.Item, error) {
	body := struct {
		Price int `json:"price"`
	}{Price: price}

	var raw domain.RawItem
	if err := c.do(ctx, http.MethodPost, itemPath(itemID, "update_price"), nil, body, &raw); err != nil {
		return nil, err
	}
	item := domain.NormalizeItem(raw, 0, c.viewerID(ctx))
	return &item, nil
}
