package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/malcha/dagu-client/internal/adapters/driven/httpapi"
	redisadapter "github.com/malcha/dagu-client/internal/adapters/driven/redis"
	"github.com/malcha/dagu-client/internal/cache"
	"github.com/malcha/dagu-client/internal/config"
	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven"
	"github.com/malcha/dagu-client/internal/core/services"
	"github.com/malcha/dagu-client/internal/mutation"
	"github.com/malcha/dagu-client/internal/session"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("dagu-client %s, backend %s", version, cfg.APIURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ===== Backend HTTP client =====
	client, err := httpapi.New(httpapi.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}

	// ===== Auth (cookie session probe) =====
	authService := services.NewAuthService(client, cfg.AuthTTL, nil)
	client.SetViewer(authService.ViewerID)
	status := authService.Status(ctx)
	if status.IsAuthenticated {
		log.Printf("Authenticated as %s (#%d)", status.Username, status.UserID)
	} else {
		log.Println("Anonymous session")
	}

	// ===== Result store (Redis, optional) =====
	var store driven.ResultStore
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		redisStore, err := redisadapter.NewResultStoreFromURL(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
		log.Println("Redis result store enabled")
	}

	// ===== Query cache =====
	resolver := services.NewResolver(client, domain.SearchOptions{Display: cfg.SearchDisplay})
	queryCache := cache.New(resolver.Fetch, cache.Config{
		StaleAfter: cfg.CacheStaleAfter,
		RetainFor:  cfg.CacheRetainFor,
		Store:      store,
	})

	coordinator := mutation.New(client, queryCache, mutation.DefaultConfig())

	switch {
	case len(os.Args) > 2 && os.Args[1] == "search":
		runSearch(ctx, queryCache, cfg.MinLoading, strings.Join(os.Args[2:], " "))
	case len(os.Args) > 1 && os.Args[1] == "listings":
		runListings(ctx, queryCache)
	case len(os.Args) > 1 && os.Args[1] == "popular":
		runPopular(ctx, client)
	case len(os.Args) > 2 && os.Args[1] == "click":
		coordinator.TrackClick(ctx, os.Args[2])
	default:
		fmt.Println("usage: dagu-client search <query> | listings | popular | click <item-id>")
		os.Exit(2)
	}
}

func runSearch(ctx context.Context, queryCache *cache.Cache, minLoading time.Duration, query string) {
	sess := session.New(queryCache, session.Config{MinLoading: minLoading})
	defer sess.Close()

	if err := sess.Submit(ctx, query); err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	for sess.Snapshot().Loader.Visible {
		time.Sleep(20 * time.Millisecond)
	}

	snap := sess.Snapshot()
	if snap.Entry.Err != nil && snap.Entry.Data == nil {
		log.Fatalf("Search failed: %v", snap.Entry.Err)
	}
	printResult(snap.Entry.Data)
}

func runListings(ctx context.Context, queryCache *cache.Cache) {
	entry, err := queryCache.FetchOrReuse(ctx, domain.ListingKey(domain.ListingViewAll))
	if err != nil {
		log.Fatalf("Listings failed: %v", err)
	}
	if entry.Err != nil && entry.Data == nil {
		log.Fatalf("Listings failed: %v", entry.Err)
	}
	printResult(entry.Data)
}

func runPopular(ctx context.Context, client *httpapi.Client) {
	terms, err := client.PopularTerms(ctx, 10)
	if err != nil {
		log.Fatalf("Popular terms failed: %v", err)
	}
	for i, term := range terms {
		fmt.Printf("%2d. %s\n", i+1, term)
	}
}

func printResult(result *domain.SearchResult) {
	if result == nil {
		fmt.Println("no results")
		return
	}
	fmt.Printf("%d results\n", result.TotalCount)
	if result.Reference != nil {
		fmt.Printf("reference: %s (%d KRW)\n", result.Reference.Name, result.Reference.Price)
	}
	for _, item := range result.Items {
		tag := string(item.Source)
		if item.Kind == domain.ItemKindCatalog {
			tag = item.MallName
		}
		line := fmt.Sprintf("%10d KRW  %-12s %s", item.Price, tag, item.Title)
		if item.DiscountPercent > 0 {
			line += fmt.Sprintf("  (-%d%%)", item.DiscountPercent)
		}
		if item.Owned {
			line += "  [mine]"
		}
		fmt.Println(line)
	}
}
