package web

import (
	"encoding/json"
	"net/http"

	"inventory-costing/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler wires the chi router over the ApplicationService.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsPolicy(allowedOrigins))
	r.Use(bodyLimit(1 << 20))

	r.Get("/api/health", h.health)
	r.Get("/api/goods", h.listGoods)
	r.Post("/api/goods/{accountID}/calculate", h.calculate)
	r.Post("/api/goods/{accountID}/reset", h.reset)

	// Ledger platform webhook: events are routed by type.
	r.Post("/api/events", h.handleEvent)

	// AI operator assistant.
	r.Post("/api/ai/interpret", h.interpret)
	r.Post("/api/ai/execute", h.execute)

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) listGoods(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListGoods(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "LIST_GOODS_FAILED", http.StatusBadGateway)
		return
	}
	writeJSON(w, result.Goods)
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	var body struct {
		AsOfDate string `json:"as_of_date"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.CalculateCostOfSales(r.Context(), accountID, body.AsOfDate)
	if err != nil {
		writeError(w, r, err.Error(), "CALCULATION_FAILED", http.StatusBadGateway)
		return
	}
	writeJSON(w, result.Summary)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	result, err := h.svc.ResetCostOfSales(r.Context(), accountID)
	if err != nil {
		writeError(w, r, err.Error(), "RESET_FAILED", http.StatusBadGateway)
		return
	}
	writeJSON(w, result.Summary)
}

func (h *Handler) interpret(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
		writeError(w, r, "expected JSON body with non-empty 'text'", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.InterpretOperatorRequest(r.Context(), body.Text)
	if err != nil {
		writeError(w, r, err.Error(), "AI_ERROR", http.StatusBadGateway)
		return
	}
	if result.IsQuestion {
		writeJSON(w, map[string]any{"question": result.Question})
		return
	}
	writeJSON(w, map[string]any{"proposal": result.Proposal})
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tool      string `json:"tool"`
		AccountID string `json:"account_id"`
		AsOfDate  string `json:"as_of_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Tool == "" || body.AccountID == "" {
		writeError(w, r, "expected JSON body with 'tool' and 'account_id'", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ExecuteAction(r.Context(), body.Tool, body.AccountID, body.AsOfDate)
	if err != nil {
		writeError(w, r, err.Error(), "EXECUTION_FAILED", http.StatusBadGateway)
		return
	}
	writeJSON(w, result.Summary)
}
