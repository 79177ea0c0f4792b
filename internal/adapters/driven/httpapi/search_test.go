package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/malcha/dagu-client/internal/core/domain"
)

const mixedSearchBody = `{
	"total_count": 3,
	"reference": {"name": "Fender Stratocaster", "price": 100000, "image_url": "https://img.example.com/strat.jpg"},
	"items": [
		{"title": "new strat", "link": "https://shopping.example.com/1", "lprice": 95000, "hprice": 110000, "productId": "p-1", "mallName": "guitar mall"},
		{"title": "used strat", "link": "https://m.bunjang.co.kr/products/7", "lprice": 70000, "id": "item-7", "source": "bunjang", "owner_id": 42, "report_count": 1},
		{"title": "promo strat", "link": "https://www.mule.co.kr/8", "lprice": 80000, "id": "item-8", "source": "mule", "discount_rate": 25.4}
	]
}`

func TestSearchNormalizesMixedFamilies(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "strat" {
			t.Errorf("q = %q, want %q", got, "strat")
		}
		if got := r.URL.Query().Get("display"); got != "20" {
			t.Errorf("display = %q, want %q", got, "20")
		}
		w.Write([]byte(mixedSearchBody))
	}))
	client.SetViewer(func(ctx context.Context) int64 { return 42 })

	result, err := client.Search(context.Background(), "  strat  ", domain.DefaultSearchOptions())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.TotalCount != 3 || len(result.Items) != 3 {
		t.Fatalf("result = %+v", result)
	}
	if result.ReferencePrice() != 100000 {
		t.Errorf("ReferencePrice = %d, want 100000", result.ReferencePrice())
	}

	catalog := result.Items[0]
	if catalog.Kind != domain.ItemKindCatalog || catalog.ProductID != "p-1" || catalog.HighPrice != 110000 {
		t.Errorf("catalog item = %+v", catalog)
	}
	if catalog.DiscountPercent != 5 {
		t.Errorf("catalog discount = %d, want 5", catalog.DiscountPercent)
	}

	owned := result.Items[1]
	if owned.Kind != domain.ItemKindUser || !owned.Owned || owned.Source != domain.SourceBunjang {
		t.Errorf("owned item = %+v", owned)
	}
	if owned.DiscountPercent != 30 {
		t.Errorf("owned discount = %d, want 30 (computed against reference)", owned.DiscountPercent)
	}

	promo := result.Items[2]
	if promo.Owned {
		t.Errorf("promo item marked owned: %+v", promo)
	}
	if promo.DiscountPercent != 25 {
		t.Errorf("promo discount = %d, want 25 (server rate wins over the computed 20)", promo.DiscountPercent)
	}
}

func TestSearchClampsDisplay(t *testing.T) {
	var got string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("display")
		w.Write([]byte(`{"total_count": 0, "items": []}`))
	}))

	if _, err := client.Search(context.Background(), "amp", domain.SearchOptions{Display: 500}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != "100" {
		t.Errorf("display = %q, want clamped to 100", got)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent for an empty query")
	}))
	if _, err := client.Search(context.Background(), "   ", domain.DefaultSearchOptions()); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestPopularTerms(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/popular-searches/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q, want %q", got, "5")
		}
		w.Write([]byte(`{"terms": ["stratocaster", "les paul", "telecaster"]}`))
	}))

	terms, err := client.PopularTerms(context.Background(), 5)
	if err != nil {
		t.Fatalf("PopularTerms: %v", err)
	}
	if len(terms) != 3 || terms[0] != "stratocaster" {
		t.Errorf("terms = %v", terms)
	}
}

func TestInstrumentsToleratesBothShapes(t *testing.T) {
	bodies := map[string]string{
		"bare array": `[{"id": "i-1", "name": "Fender Stratocaster", "brand": "Fender"}]`,
		"paginated":  `{"count": 1, "results": [{"id": "i-1", "name": "Fender Stratocaster", "brand": "Fender"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("search"); got != "strat" {
					t.Errorf("search = %q", got)
				}
				w.Write([]byte(body))
			}))

			instruments, err := client.Instruments(context.Background(), "strat", 10)
			if err != nil {
				t.Fatalf("Instruments: %v", err)
			}
			if len(instruments) != 1 || instruments[0].Name != "Fender Stratocaster" {
				t.Errorf("instruments = %+v", instruments)
			}
		})
	}
}

func TestListingsMarksOwnership(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/items/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("mine"); got != "1" {
			t.Errorf("mine = %q, want %q", got, "1")
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"title": "my amp", "link": "https://www.mule.co.kr/9", "lprice": 50000, "id": "item-9", "source": "mule", "owner_id": 7},
		})
	}))
	client.SetViewer(func(ctx context.Context) int64 { return 7 })

	items, err := client.Listings(context.Background(), true)
	if err != nil {
		t.Fatalf("Listings: %v", err)
	}
	if len(items) != 1 || !items[0].Owned || items[0].Kind != domain.ItemKindUser {
		t.Errorf("items = %+v", items)
	}
}
