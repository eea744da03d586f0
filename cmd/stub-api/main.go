// Command stub-api serves hardcoded fakes of the Graph API endpoints the
// relay calls, for local development without a Meta account:
//
//	META_BASE_URL=http://localhost:8090 go run ./cmd/server
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/ignite/meta-audience-relay/internal/meta"
)

func main() {
	log.Println("WARNING: this is a STUB Graph API for local testing only; all responses are hardcoded.")

	handler := middleware.Logger(newRouter())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8090"
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Stub Graph API listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

type insightsRow struct {
	CampaignName string `json:"campaign_name"`
	Impressions  string `json:"impressions"`
	Clicks       string `json:"clicks"`
	Spend        string `json:"spend"`
	CPC          string `json:"cpc"`
	CTR          string `json:"ctr"`
	DateStart    string `json:"date_start"`
	DateStop     string `json:"date_stop"`
}

func newRouter() *chi.Mux {
	var audienceSeq atomic.Int64
	audienceSeq.Store(23850000000000)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Server-Identity", "meta-graph-stub")
			w.Header().Set("Content-Type", "application/json")
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy","service":"meta-graph-stub","warning":"THIS IS A STUB - responses are hardcoded"}`))
	})

	r.Post("/{version}/{node}/customaudiences", func(w http.ResponseWriter, r *http.Request) {
		var req meta.CreateAudienceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeGraphError(w, http.StatusBadRequest, "(#100) The parameter name is required")
			return
		}
		id := audienceSeq.Add(1)
		log.Printf("created audience %d %q", id, req.Name)
		writeJSON(w, meta.CreateAudienceResponse{ID: strconv.FormatInt(id, 10)})
	})

	r.Post("/{version}/{node}/users", func(w http.ResponseWriter, r *http.Request) {
		var req meta.AddUsersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeGraphError(w, http.StatusBadRequest, "(#100) Invalid payload")
			return
		}
		p := req.Payload
		log.Printf("audience %s: session %d batch %d last=%t rows=%d schema=%v",
			chi.URLParam(r, "node"), p.Session.SessionID, p.Session.BatchSeq, p.Session.LastBatchFlag, len(p.Data), p.Schema)

		writeJSON(w, meta.AddUsersResponse{
			AudienceID:  chi.URLParam(r, "node"),
			NumReceived: len(p.Data),
		})
	})

	r.Get("/{version}/{node}/insights", func(w http.ResponseWriter, r *http.Request) {
		var tr meta.TimeRange
		if raw := r.URL.Query().Get("time_range"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &tr); err != nil {
				writeGraphError(w, http.StatusBadRequest, "(#100) time_range must be a JSON object with since and until")
				return
			}
		}
		writeJSON(w, map[string]interface{}{
			"data": []insightsRow{
				{CampaignName: "Spring Sale", Impressions: "48210", Clicks: "1312", Spend: "412.55", CPC: "0.314444", CTR: "2.721427", DateStart: tr.Since, DateStop: tr.Until},
				{CampaignName: "Retargeting", Impressions: "15022", Clicks: "604", Spend: "150.10", CPC: "0.248510", CTR: "4.020769", DateStart: tr.Since, DateStop: tr.Until},
			},
			"paging": map[string]interface{}{
				"cursors": map[string]string{"before": "MAZDZD", "after": "MQZDZD"},
			},
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeGraphError(w http.ResponseWriter, status int, message string) {
	body, err := json.Marshal(map[string]*meta.APIError{
		"error": {Message: message, Type: "OAuthException", Code: 100, FBTraceID: "stub"},
	})
	if err != nil {
		http.Error(w, `{"error":{"message":"stub encoding failure"}}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	w.Write(body)
}
