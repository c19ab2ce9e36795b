package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"quartercache/pkg/api/quarters"
	"quartercache/pkg/core/config"
	"quartercache/pkg/core/engine"
	"quartercache/pkg/core/extract"
	"quartercache/pkg/core/filings"
	"quartercache/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cfg, err := config.Load("config/app.yaml")
	if err != nil {
		fmt.Printf("[WARNING] %v\n", err)
		fmt.Println("  Falling back to default configuration")
		cfg = config.Default()
	}

	// Durable store: Postgres when DATABASE_URL is configured, otherwise
	// an in-process store for offline operation.
	ctx := context.Background()
	var kv store.KV
	if err := store.InitDB(ctx); err != nil {
		fmt.Printf("[WARNING] Database unavailable: %v\n", err)
		fmt.Println("  Running on in-memory store; cached quarters will not survive restarts")
		kv = store.NewMemoryKV()
	} else {
		defer store.Close()
		kv = store.NewPostgresKV(store.GetPool())
	}

	quarterStore := store.NewQuarterStore(kv)
	tracker := store.NewFilingTracker(kv)
	source := filings.NewClient(cfg.UserAgent, kv)
	extractor := extract.NewGeminiExtractor(cfg.GeminiModel, cfg.RequiredMetrics)

	orchestrator := engine.NewOrchestrator(source, extractor, quarterStore, tracker, cfg.FormType, cfg.RequiredMetrics)
	fallback := engine.NewStaleFallback(orchestrator, quarterStore, tracker, cfg.FormType)

	handler := quarters.NewHandler(fallback, quarterStore, kv, cfg.RequiredMetrics, cfg.SeriesQuarters)
	http.HandleFunc("/api/quarters/summary", handler.HandleSummary)
	http.HandleFunc("/api/quarters/sparkline", handler.HandleSparkline)
	http.HandleFunc("/api/quarters/report", handler.HandleReport)

	fmt.Printf("API server starting on %s...\n", cfg.Addr)
	fmt.Println("  - GET /api/quarters/summary?symbol=&refresh=&forceReprocess=")
	fmt.Println("  - GET /api/quarters/sparkline?symbol=&metric=&refresh=")
	fmt.Println("  - GET /api/quarters/report?symbol=")

	if err := http.ListenAndServe(cfg.Addr, nil); err != nil {
		log.Printf("[FATAL] Server failed to start: %v", err)
		os.Exit(1)
	}
}
