package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/malcha/dagu-client/internal/cache"
	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven/mocks"
	"github.com/malcha/dagu-client/internal/core/ports/driving"
)

func newTestSession(t *testing.T, api *mocks.MockSearchAPI, minLoading time.Duration) (*Session, *cache.Cache) {
	t.Helper()
	c := cache.New(func(ctx context.Context, key string) (*domain.SearchResult, error) {
		return api.Search(ctx, domain.QueryFromSearchKey(key), domain.DefaultSearchOptions())
	}, cache.DefaultConfig())
	s := New(c, Config{MinLoading: minLoading})
	t.Cleanup(s.Close)
	return s, c
}

func searchResult(query string, prices ...int) *domain.SearchResult {
	items := make([]domain.Item, len(prices))
	for i, p := range prices {
		items[i] = domain.Item{Kind: domain.ItemKindCatalog, Title: query, Price: p}
	}
	return &domain.SearchResult{Query: query, TotalCount: len(items), Items: items}
}

func waitForSnapshot(t *testing.T, s *Session, cond func(driving.SessionSnapshot) bool, msg string) driving.SessionSnapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond(s.Snapshot()) {
		select {
		case <-deadline:
			t.Fatalf("%s, snapshot = %+v", msg, s.Snapshot())
		default:
			time.Sleep(time.Millisecond)
		}
	}
	return s.Snapshot()
}

func TestSubmitRejectsEmptyQuery(t *testing.T) {
	s, _ := newTestSession(t, mocks.NewMockSearchAPI(), 10*time.Millisecond)
	for _, query := range []string{"", "   "} {
		if err := s.Submit(context.Background(), query); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Submit(%q): got %v, want ErrInvalidInput", query, err)
		}
	}
}

func TestSubmitLoadsAndSettles(t *testing.T) {
	api := mocks.NewMockSearchAPI()
	api.SetResult("guitar", searchResult("guitar", 50000))
	s, _ := newTestSession(t, api, 10*time.Millisecond)

	if err := s.Submit(context.Background(), "guitar"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if snap := s.Snapshot(); !snap.Loader.Visible {
		t.Fatal("loading hidden right after Submit")
	}

	snap := waitForSnapshot(t, s, func(snap driving.SessionSnapshot) bool {
		return !snap.Loader.Visible
	}, "loading never settled")

	if snap.Query != "guitar" {
		t.Errorf("Query = %q, want %q", snap.Query, "guitar")
	}
	if snap.Entry.Status != domain.CacheSuccess || snap.Entry.Data == nil {
		t.Fatalf("Entry = %+v, want success with data", snap.Entry)
	}
	if snap.Entry.Data.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", snap.Entry.Data.TotalCount)
	}
}

func TestResubmitShowsFullLoadingPassOnCacheHit(t *testing.T) {
	api := mocks.NewMockSearchAPI()
	api.SetResult("amp", searchResult("amp", 120000))
	s, _ := newTestSession(t, api, 40*time.Millisecond)

	if err := s.Submit(context.Background(), "amp"); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	waitForSnapshot(t, s, func(snap driving.SessionSnapshot) bool {
		return !snap.Loader.Visible
	}, "first pass never settled")
	firstCalls := api.SearchCalls()

	// Resubmitting the same query answers from cache, yet the loading
	// indicator still runs its full minimum pass.
	start := time.Now()
	if err := s.Submit(context.Background(), "amp"); err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if snap := s.Snapshot(); !snap.Loader.Visible {
		t.Fatal("loading hidden on cache-hot resubmit")
	}
	waitForSnapshot(t, s, func(snap driving.SessionSnapshot) bool {
		return !snap.Loader.Visible
	}, "second pass never settled")

	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("loading pass took %v, want at least the 40ms floor", elapsed)
	}
	if got := api.SearchCalls(); got != firstCalls {
		t.Errorf("search calls = %d, want %d: cache-hot resubmit must not refetch", got, firstCalls)
	}
}

func TestSubmitSupersedesInFlightQuery(t *testing.T) {
	api := mocks.NewMockSearchAPI()
	releaseA := make(chan struct{})
	api.SearchFunc = func(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResult, error) {
		if query == "alpha" {
			<-releaseA
			return searchResult("alpha", 11000), nil
		}
		return searchResult("beta", 22000, 23000), nil
	}
	s, c := newTestSession(t, api, 5*time.Millisecond)

	if err := s.Submit(context.Background(), "alpha"); err != nil {
		t.Fatalf("Submit(alpha): %v", err)
	}
	if err := s.Submit(context.Background(), "beta"); err != nil {
		t.Fatalf("Submit(beta): %v", err)
	}

	snap := waitForSnapshot(t, s, func(snap driving.SessionSnapshot) bool {
		return !snap.Loader.Visible && snap.Entry.Status == domain.CacheSuccess
	}, "beta never settled")
	if snap.Query != "beta" || snap.Entry.Data.Query != "beta" {
		t.Fatalf("snapshot shows %q/%v, want beta", snap.Query, snap.Entry.Data)
	}

	// Let alpha's response land in the cache; the session must not pick
	// it up.
	close(releaseA)
	time.Sleep(30 * time.Millisecond)

	snap = s.Snapshot()
	if snap.Query != "beta" || snap.Entry.Data == nil || snap.Entry.Data.Query != "beta" {
		t.Errorf("superseded response leaked into the session: %+v", snap.Entry)
	}

	// The cache itself keeps alpha for a later resubmit.
	if entry, ok := c.Entry(domain.SearchKey("alpha")); !ok || entry.Status != domain.CacheSuccess {
		t.Errorf("alpha entry = %+v, want settled in cache", entry)
	}
}

func TestSubmitWithFailingFetchSettlesWithError(t *testing.T) {
	api := mocks.NewMockSearchAPI()
	api.Err = domain.ErrUnreachable
	s, _ := newTestSession(t, api, 5*time.Millisecond)

	if err := s.Submit(context.Background(), "broken"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	snap := waitForSnapshot(t, s, func(snap driving.SessionSnapshot) bool {
		return !snap.Loader.Visible
	}, "failed submission never settled")

	if snap.Entry.Status != domain.CacheError {
		t.Errorf("Status = %v, want error", snap.Entry.Status)
	}
	if !errors.Is(snap.Entry.Err, domain.ErrUnreachable) {
		t.Errorf("Err = %v, want ErrUnreachable", snap.Entry.Err)
	}
}

func TestCloseDetachesButKeepsCacheWarm(t *testing.T) {
	api := mocks.NewMockSearchAPI()
	api.SetResult("cello", searchResult("cello", 800000))
	s, c := newTestSession(t, api, 5*time.Millisecond)

	if err := s.Submit(context.Background(), "cello"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitForSnapshot(t, s, func(snap driving.SessionSnapshot) bool {
		return !snap.Loader.Visible
	}, "submission never settled")

	s.Close()
	if err := s.Submit(context.Background(), "cello"); err == nil {
		t.Error("Submit after Close: got nil error")
	}

	if entry, ok := c.Entry(domain.SearchKey("cello")); !ok || entry.Data == nil {
		t.Errorf("entry = %+v, want data retained after Close", entry)
	}
}
