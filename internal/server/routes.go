package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hazemfarra/argus/internal/convlog"
	"github.com/hazemfarra/argus/internal/engine"
	"github.com/hazemfarra/argus/internal/records"
)

// RegisterRoutes mounts the intelligence API routes.
func RegisterRoutes(r chi.Router, eng *engine.Engine) {
	r.Route("/api/intel", func(r chi.Router) {
		r.Post("/reports/threat", handleIngestThreat(eng))
		r.Post("/reports/summary", handleIngestSummary(eng))
		r.Post("/classifier", handleIngestClassifier(eng))
		r.Get("/search", handleSearch(eng))
		r.Get("/context", handleContext(eng))
		r.Get("/status", handleStatus(eng))
	})
	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/ask", handleAsk(eng))
		r.Get("/history", handleHistory(eng))
	})
}

type ingestThreatRequest struct {
	Owner  string               `json:"owner"`
	Source string               `json:"source"`
	Report records.ThreatReport `json:"report"`
}

func handleIngestThreat(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ingestThreatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Report.Title == "" && req.Report.Description == "" {
			http.Error(w, `{"error":"report is required"}`, http.StatusBadRequest)
			return
		}

		rec, err := eng.IngestThreatReport(r.Context(), req.Owner, req.Report, req.Source)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": rec.ID})
	}
}

type ingestSummaryRequest struct {
	Owner  string                `json:"owner"`
	Source string                `json:"source"`
	Report records.SummaryReport `json:"report"`
}

func handleIngestSummary(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ingestSummaryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Report.Title == "" && req.Report.ExecutiveSummary == "" {
			http.Error(w, `{"error":"report is required"}`, http.StatusBadRequest)
			return
		}

		rec, err := eng.IngestSummaryReport(r.Context(), req.Owner, req.Report, req.Source)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": rec.ID})
	}
}

type ingestClassifierRequest struct {
	Owner    string                     `json:"owner"`
	Source   string                     `json:"source"`
	Analysis records.ClassifierAnalysis `json:"analysis"`
}

func handleIngestClassifier(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ingestClassifierRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Analysis.Text == "" {
			http.Error(w, `{"error":"analysis text is required"}`, http.StatusBadRequest)
			return
		}

		rec, err := eng.IngestClassifierResult(r.Context(), req.Owner, req.Analysis, req.Source)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if rec == nil {
			// Benign classifications are acknowledged but not stored.
			json.NewEncoder(w).Encode(map[string]any{"stored": false})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"stored": true, "id": rec.ID})
	}
}

type searchHit struct {
	ID    string       `json:"id"`
	Owner string       `json:"owner"`
	Kind  records.Kind `json:"kind"`
	Text  string       `json:"text"`
	Score float64      `json:"score"`
}

func handleSearch(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			http.Error(w, `{"error":"q parameter is required"}`, http.StatusBadRequest)
			return
		}
		owner := r.URL.Query().Get("owner")

		results, err := eng.Search(r.Context(), query, owner)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		hits := []searchHit{}
		for _, res := range results {
			hits = append(hits, searchHit{
				ID:    res.Record.ID,
				Owner: res.Record.Owner,
				Kind:  res.Record.Kind,
				Text:  res.Record.SearchableText,
				Score: res.Score,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(hits)
	}
}

func handleContext(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			http.Error(w, `{"error":"q parameter is required"}`, http.StatusBadRequest)
			return
		}
		owner := r.URL.Query().Get("owner")

		contextBlock, hits := eng.GetContext(r.Context(), query, owner)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"context": contextBlock,
			"hits":    hits,
		})
	}
}

type askRequest struct {
	Owner    string `json:"owner"`
	Question string `json:"question"`
}

func handleAsk(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Question == "" {
			http.Error(w, `{"error":"question is required"}`, http.StatusBadRequest)
			return
		}

		answer, err := eng.Answer(r.Context(), req.Owner, req.Question)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"answer": answer})
	}
}

func handleHistory(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := r.URL.Query().Get("owner")
		limit := 20
		if l := r.URL.Query().Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		history, err := eng.History(r.Context(), owner, limit)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if history == nil {
			history = []convlog.Exchange{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(history)
	}
}

func handleStatus(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := eng.Status()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"records": st.RecordCount,
			"vectors": st.VectorCount,
			"kinds":   st.Kinds,
			"owners":  st.Owners,
		})
	}
}
