package domain

import "fmt"

// MaxListingPrice is the sanity bound on listing prices (100M KRW).
const MaxListingPrice = 100_000_000

// ValidatePrice rejects non-positive prices and prices above the sanity
// bound. The backend enforces the same rule; checking here saves a round
// trip for obviously malformed input.
func ValidatePrice(price int) error {
	if price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if price > MaxListingPrice {
		return fmt.Errorf("%w: price exceeds %d", ErrInvalidInput, MaxListingPrice)
	}
	return nil
}

// CreateItemInput is the payload for registering a new listing.
// InstrumentID is optional: when the listing was started from a search
// result the matched catalog record is known; otherwise the backend
// matches by title.
type CreateItemInput struct {
	InstrumentID string    `json:"instrument,omitempty"`
	Title        string    `json:"title"`
	Price        int       `json:"price"`
	Link         string    `json:"link"`
	Source       SourceTag `json:"source"`
}

// ReportReason is the closed set of report reason codes.
type ReportReason string

const (
	ReportWrongPrice    ReportReason = "wrong_price"
	ReportSoldOut       ReportReason = "sold_out"
	ReportFake          ReportReason = "fake"
	ReportInappropriate ReportReason = "inappropriate"
	ReportOther         ReportReason = "other"
)

// Valid reports whether the reason is one of the known codes.
func (r ReportReason) Valid() bool {
	switch r {
	case ReportWrongPrice, ReportSoldOut, ReportFake, ReportInappropriate, ReportOther:
		return true
	}
	return false
}

// ReportInput carries a report reason code and optional free-form detail.
type ReportInput struct {
	Reason ReportReason `json:"reason"`
	Detail string       `json:"detail,omitempty"`
}

// ReportResult is the backend's report outcome. IsDeleted means the
// listing crossed the auto-removal threshold and is gone; the refetch
// triggered by invalidation drops it from rendered results.
type ReportResult struct {
	Message       string `json:"message"`
	ReportCount   int    `json:"report_count"`
	IsUnderReview bool   `json:"is_under_review"`
	IsDeleted     bool   `json:"is_deleted"`
}
