package quarters

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"quartercache/pkg/core/engine"
	"quartercache/pkg/models"
)

// HandleReport handles GET /api/quarters/report
// Query: symbol (required)
// Renders the latest cached quarter as an HTML snippet for embedding.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	if symbol == "" {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, http.StatusBadRequest, "symbol parameter is required")
		return
	}

	result, err := h.fallback.Process(r.Context(), symbol, engine.Options{})
	if err != nil {
		log.Printf("[Handler] report failed for %s: %v", symbol, err)
		w.Header().Set("Content-Type", "application/json")
		writeError(w, statusForError(err), err.Error())
		return
	}

	markdown := reportMarkdown(result)

	var html bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &html); err != nil {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html.Bytes())
}

// reportMarkdown formats one quarter record as a markdown table. Metrics
// with neither value nor display are listed as not reported rather than
// silently filled in.
func reportMarkdown(result *engine.Result) string {
	rec := result.Record

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - %s\n\n", rec.Symbol, rec.Quarter)
	fmt.Fprintf(&b, "Accession `%s`, extracted %s.\n\n", rec.AccessionNumber, rec.ExtractedAt.Format("2006-01-02 15:04 UTC"))
	if result.CacheType == "stale" {
		fmt.Fprintf(&b, "> Served from the last known-good quarter; fresh extraction failed: %s\n\n", result.Error)
	}

	names := make([]string, 0, len(rec.Metrics))
	for name := range rec.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("| Metric | Value | Unit |\n|---|---|---|\n")
	for _, name := range names {
		point := rec.Metrics[name]
		fmt.Fprintf(&b, "| %s | %s | %s |\n", name, displayValue(point), point.Unit)
	}
	return b.String()
}

func displayValue(p models.MetricPoint) string {
	if p.Display != "" {
		return p.Display
	}
	if p.Value != nil {
		return fmt.Sprintf("%.2f", *p.Value)
	}
	return "not reported"
}
