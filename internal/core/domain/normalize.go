package domain

import "math"

// DiscountPercent computes how far price undercuts the catalog reference,
// as a whole percentage rounded half-away-from-zero. Zero when there is no
// reference; never negative, never extrapolated.
func DiscountPercent(price, referencePrice int) int {
	if referencePrice <= 0 {
		return 0
	}
	pct := (1 - float64(price)/float64(referencePrice)) * 100
	if pct <= 0 {
		return 0
	}
	return int(math.Round(pct))
}

// roundHalfAway rounds a server-sourced fractional rate to a whole percent,
// half away from zero.
func roundHalfAway(rate float64) int {
	if rate < 0 {
		return int(-math.Round(-rate))
	}
	return int(math.Round(rate))
}

// NormalizeItem maps either raw item family into one display-ready record.
//
// Discount rules: a server-sourced discount rate on a user listing always
// wins over client recomputation, so promotional floors and other backend
// business rules never drift. Otherwise the discount is computed against
// referencePrice, and only when that is positive. viewerID marks ownership
// on user listings; pass zero when unauthenticated.
func NormalizeItem(raw RawItem, referencePrice int, viewerID int64) Item {
	item := Item{
		Title: raw.Title,
		Link:  raw.Link,
		Image: raw.Image,
		Price: raw.LowPrice,
	}

	if raw.IsUserListing() {
		item.Kind = ItemKindUser
		item.ID = raw.ID
		item.Source = SourceTag(raw.Source)
		item.ReportCount = raw.ReportCount
		item.ExpiredAt = raw.ExpiredAt
		item.ExtendedAt = raw.ExtendedAt
		item.Owned = raw.OwnerID != nil && viewerID != 0 && *raw.OwnerID == viewerID

		if raw.DiscountRate != nil {
			item.DiscountPercent = roundHalfAway(*raw.DiscountRate)
			if item.DiscountPercent < 0 {
				item.DiscountPercent = 0
			}
		} else {
			item.DiscountPercent = DiscountPercent(raw.LowPrice, referencePrice)
		}
		return item
	}

	item.Kind = ItemKindCatalog
	item.ProductID = raw.ProductID
	item.MallName = raw.MallName
	item.HighPrice = raw.HighPrice
	item.DiscountPercent = DiscountPercent(raw.LowPrice, referencePrice)
	return item
}

// NormalizeResult normalizes every raw item of a search response against
// the response's reference price.
func NormalizeResult(query string, totalCount int, reference *ReferenceItem, raws []RawItem, viewerID int64) *SearchResult {
	result := &SearchResult{
		Query:      query,
		TotalCount: totalCount,
		Reference:  reference,
		Items:      make([]Item, 0, len(raws)),
	}
	refPrice := result.ReferencePrice()
	for _, raw := range raws {
		result.Items = append(result.Items, NormalizeItem(raw, refPrice, viewerID))
	}
	return result
}
