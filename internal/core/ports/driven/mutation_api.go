package driven

import (
	"context"

	"github.com/malcha/dagu-client/internal/core/domain"
)

// MutationAPI is the remote write surface for user listings. Every call
// maps backend failures onto the domain error taxonomy; no raw transport
// error escapes an implementation.
type MutationAPI interface {
	// CreateItem registers a new listing and returns the created record.
	CreateItem(ctx context.Context, input domain.CreateItemInput) (*domain.Item, error)

	// TrackClick records an outbound click on a listing.
	TrackClick(ctx context.Context, itemID string) error

	// ExtendItem pushes out the expiry of the caller's own listing.
	ExtendItem(ctx context.Context, itemID string) (*domain.Item, error)

	// ReportItem files a report against a listing.
	ReportItem(ctx context.Context, itemID string, input domain.ReportInput) (*domain.ReportResult, error)

	// UpdatePrice sets a new price on a listing.
	UpdatePrice(ctx context.Context, itemID string, price int) (*domain.Item, error)
}
