package domain

import "time"

// ItemKind discriminates the two item families in a search result.
// It is set once at normalization time; downstream code switches on the
// tag instead of re-deriving variant identity from field presence.
type ItemKind string

const (
	// ItemKindCatalog is an externally sourced shopping result. Read-only,
	// never owned by the user, not mutable through this client.
	ItemKindCatalog ItemKind = "catalog"

	// ItemKindUser is a user-submitted listing. Identity is the ID field;
	// this is the only variant the mutation coordinator operates on.
	ItemKindUser ItemKind = "user"
)

// Item is the display-ready record both item families normalize into.
// Fields past the shared block are populated per Kind.
type Item struct {
	Kind  ItemKind `json:"kind"`
	Title string   `json:"title"`
	Link  string   `json:"link"`
	Image string   `json:"image,omitempty"`
	Price int      `json:"price"`

	// DiscountPercent is the uniformly computed discount against the
	// catalog reference price. Zero when no reference exists.
	DiscountPercent int `json:"discount_percent"`

	// Catalog variant
	ProductID string `json:"product_id,omitempty"`
	MallName  string `json:"mall_name,omitempty"`
	HighPrice int    `json:"high_price,omitempty"`

	// User variant
	ID          string     `json:"id,omitempty"`
	Source      SourceTag  `json:"source,omitempty"`
	Owned       bool       `json:"owned,omitempty"`
	ReportCount int        `json:"report_count,omitempty"`
	ExpiredAt   time.Time  `json:"expired_at,omitzero"`
	ExtendedAt  *time.Time `json:"extended_at,omitempty"`
}

// IsUser reports whether the item is a mutable user listing.
func (i *Item) IsUser() bool { return i.Kind == ItemKindUser }

// RawItem is an un-normalized search result entry as the backend sends it:
// a superset of both families' fields. The discriminant is the presence of
// an ID plus a non-catalog source tag.
type RawItem struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Image string `json:"image"`

	LowPrice  int `json:"lprice"`
	HighPrice int `json:"hprice"`

	// Catalog-origin fields
	ProductID string `json:"productId"`
	MallName  string `json:"mallName"`

	// User-listing fields
	ID           string     `json:"id"`
	Source       string     `json:"source"`
	DiscountRate *float64   `json:"discount_rate"`
	ReportCount  int        `json:"report_count"`
	OwnerID      *int64     `json:"owner_id"`
	ExpiredAt    time.Time  `json:"expired_at"`
	ExtendedAt   *time.Time `json:"extended_at"`
}

// IsUserListing reports which family a raw item belongs to.
// No item carries fields of both kinds, so ID presence plus a non-catalog
// source is the sole discriminant.
func (r *RawItem) IsUserListing() bool {
	return r.ID != "" && SourceTag(r.Source) != SourceCatalog
}

// Instrument is a catalog master record, used for autocomplete and as the
// discount reference when a listing is registered against it.
type Instrument struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Brand          string `json:"brand"`
	ImageURL       string `json:"image_url"`
	ReferencePrice int    `json:"reference_price"`
}

// AuthStatus is the authentication probe response. The session cookie is
// HttpOnly; this is the only way the client learns authentication state.
type AuthStatus struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	UserID          int64  `json:"user_id"`
	Username        string `json:"username"`
}
