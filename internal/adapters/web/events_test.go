package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	web "inventory-costing/internal/adapters/web"
	"inventory-costing/internal/app"
	"inventory-costing/internal/costing"
)

// stubService records which application operations the router invoked.
type stubService struct {
	calculated []string
	reset      []string
	flagged    []string
}

func (s *stubService) CalculateCostOfSales(_ context.Context, accountID, asOfDate string) (*app.CalculationResult, error) {
	s.calculated = append(s.calculated, accountID+"|"+asOfDate)
	return &app.CalculationResult{Summary: costing.Summary{AccountID: accountID, Message: "Calculated"}}, nil
}

func (s *stubService) ResetCostOfSales(_ context.Context, accountID string) (*app.CalculationResult, error) {
	s.reset = append(s.reset, accountID)
	return &app.CalculationResult{Summary: costing.Summary{AccountID: accountID, Message: "Reseted"}}, nil
}

func (s *stubService) ListGoods(context.Context) (*app.GoodListResult, error) {
	return &app.GoodListResult{Goods: []app.GoodInfo{{AccountID: "acc-1", Name: "Widget"}}}, nil
}

func (s *stubService) FlagGoodForRebuild(_ context.Context, accountID string) error {
	s.flagged = append(s.flagged, accountID)
	return nil
}

func (s *stubService) InterpretOperatorRequest(context.Context, string) (*app.ActionResult, error) {
	return &app.ActionResult{IsQuestion: true, Question: "which good?"}, nil
}

func (s *stubService) ExecuteAction(ctx context.Context, tool, accountID, asOfDate string) (*app.CalculationResult, error) {
	return s.CalculateCostOfSales(ctx, accountID, asOfDate)
}

func serve(t *testing.T, svc app.ApplicationService, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := web.NewHandler(svc, "")
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestEvents_CheckedTriggersCalculation(t *testing.T) {
	svc := &stubService{}
	rec := serve(t, svc, http.MethodPost, "/api/events",
		`{"type":"TRANSACTION_CHECKED","book_id":"inv-book","account_id":"acc-1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	if len(svc.calculated) != 1 || svc.calculated[0] != "acc-1|" {
		t.Errorf("calculated = %v, want one call for acc-1", svc.calculated)
	}
	var sum costing.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("response is not a summary: %v", err)
	}
	if sum.Message != "Calculated" {
		t.Errorf("message = %q, want Calculated", sum.Message)
	}
}

func TestEvents_EditsFlagRebuild(t *testing.T) {
	for _, eventType := range []string{"TRANSACTION_UPDATED", "TRANSACTION_TRASHED"} {
		t.Run(eventType, func(t *testing.T) {
			svc := &stubService{}
			rec := serve(t, svc, http.MethodPost, "/api/events",
				`{"type":"`+eventType+`","account_id":"acc-1"}`)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if len(svc.flagged) != 1 || svc.flagged[0] != "acc-1" {
				t.Errorf("flagged = %v, want one call for acc-1", svc.flagged)
			}
			if len(svc.calculated) != 0 {
				t.Errorf("edit events must not trigger calculation: %v", svc.calculated)
			}
		})
	}
}

func TestEvents_UnknownTypeAcknowledged(t *testing.T) {
	svc := &stubService{}
	rec := serve(t, svc, http.MethodPost, "/api/events",
		`{"type":"ACCOUNT_CREATED","account_id":"acc-1"}`)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(svc.calculated) != 0 || len(svc.flagged) != 0 {
		t.Error("unknown event types must be ignored")
	}
}

func TestEvents_MissingAccountRejected(t *testing.T) {
	svc := &stubService{}
	rec := serve(t, svc, http.MethodPost, "/api/events", `{"type":"TRANSACTION_CHECKED"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCalculateRoute_PassesAsOfDate(t *testing.T) {
	svc := &stubService{}
	rec := serve(t, svc, http.MethodPost, "/api/goods/acc-9/calculate", `{"as_of_date":"2024-06-30"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	if len(svc.calculated) != 1 || svc.calculated[0] != "acc-9|2024-06-30" {
		t.Errorf("calculated = %v, want acc-9 as of 2024-06-30", svc.calculated)
	}
}

func TestResetRoute(t *testing.T) {
	svc := &stubService{}
	rec := serve(t, svc, http.MethodPost, "/api/goods/acc-9/reset", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	if len(svc.reset) != 1 || svc.reset[0] != "acc-9" {
		t.Errorf("reset = %v, want one call for acc-9", svc.reset)
	}
}

func TestCORSPolicy(t *testing.T) {
	handler := web.NewHandler(&stubService{}, "https://ops.example.com, https://staging.example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://ops.example.com" {
		t.Errorf("allowed origin not echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin must get no CORS headers, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/goods", nil)
	req.Header.Set("Origin", "https://staging.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
}

func TestCORSPolicy_DisabledByDefault(t *testing.T) {
	rec := serve(t, &stubService{}, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("CORS must be off with no configured origins, got %q", got)
	}
}

func TestListGoodsRoute(t *testing.T) {
	svc := &stubService{}
	rec := serve(t, svc, http.MethodGet, "/api/goods", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var goods []app.GoodInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &goods); err != nil {
		t.Fatalf("response is not a goods list: %v", err)
	}
	if len(goods) != 1 || goods[0].Name != "Widget" {
		t.Errorf("goods = %+v", goods)
	}
}
