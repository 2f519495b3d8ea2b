package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
	"walletwhisper/internal/services"
	"walletwhisper/internal/store"
	"walletwhisper/internal/store/memory"
)

var refNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New(store.DefaultSeed())
	wallet := services.NewWallet(services.Deps{
		Store:        st,
		Clock:        core.FixedClock(refNow),
		WeeklyBudget: core.NewMoney(15000),
	})
	srv, err := NewServer(":0", Options{Wallet: wallet, Store: st})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, st
}

func get(srv *Server, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func postForm(srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestNewServerRequiresWallet(t *testing.T) {
	if _, err := NewServer(":0", Options{}); err == nil {
		t.Fatal("expected an error without a wallet")
	}
}

func TestPagesRender(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		path string
		want string
	}{
		{"/", "Welcome back"},
		{"/transactions", "Bus fare to school"},
		{"/savings", "Power Bank"},
		{"/reminders", "Lecturer Airtime"},
		{"/analytics", "Insights"},
		{"/analytics?timeframe=monthly", "Week 1"},
		{"/settings", "John Doe"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(srv, tt.path, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			body := rec.Body.String()
			if !strings.Contains(body, "<!doctype html>") {
				t.Error("full page expected")
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body does not contain %q", tt.want)
			}
		})
	}
}

func TestPartialNavigation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(srv, "/savings", map[string]string{"HX-Request": "true"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<!doctype html>") {
		t.Error("htmx navigation should get the content block only")
	}
	if rec.Header().Get("Vary") != "HX-Request" {
		t.Errorf("Vary = %q", rec.Header().Get("Vary"))
	}

	boosted := get(srv, "/savings", map[string]string{"HX-Request": "true", "HX-Boosted": "true"})
	if !strings.Contains(boosted.Body.String(), "<!doctype html>") {
		t.Error("boosted navigation should get the full page")
	}
}

func TestPiggyGoalHidesProgress(t *testing.T) {
	srv, _ := newTestServer(t)

	body := get(srv, "/savings", nil).Body.String()
	if !strings.Contains(body, "Piggy mode is on") {
		t.Error("piggy goal should hide its progress")
	}
	if !strings.Contains(body, "₦8,500") {
		t.Error("regular goal should show its saved amount")
	}
	if n := strings.Count(body, `class="bar"`); n != 3 {
		t.Errorf("every goal should render a progress bar, got %d", n)
	}
	if !strings.Contains(body, "width: 0%") {
		t.Error("piggy goal bar should render empty")
	}
	if strings.Contains(body, "width: 24%") {
		t.Error("piggy goal bar must not leak its real progress")
	}
}

func TestTransactionSearchReturnsListOnly(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(srv, "/transactions?q=lunch", map[string]string{
		"HX-Request": "true",
		"HX-Target":  "transaction-list",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "Add expense") {
		t.Error("search should only replace the list")
	}
	if !strings.Contains(body, "Lunch") || strings.Contains(body, "Bus fare") {
		t.Errorf("unexpected search result: %s", body)
	}
}

func TestCreateTransaction(t *testing.T) {
	srv, st := newTestServer(t)

	rec := postForm(srv, "/transactions", url.Values{
		"amount":   {"1200"},
		"category": {"Food"},
		"note":     {"Jollof rice"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	n := decodeNotification(t, rec)
	if n.Title != "Transaction Added" || n.Variant != string(core.VariantDefault) {
		t.Errorf("notification = %+v", n)
	}
	triggers := decodeTriggers(t, rec)
	for _, ev := range []string{EventWalletChanged, EventFormReset} {
		if _, ok := triggers[ev]; !ok {
			t.Errorf("missing %s trigger", ev)
		}
	}
	if !strings.Contains(rec.Body.String(), "Jollof rice") {
		t.Error("refreshed content should list the new transaction")
	}

	list, _ := st.ListTransactions(context.Background())
	if len(list) != 5 || list[0].Note != "Jollof rice" {
		t.Errorf("ledger head = %+v", list[0])
	}
}

func TestCreateTransactionRejectsInvalidInput(t *testing.T) {
	srv, st := newTestServer(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing amount", url.Values{"category": {"Food"}}},
		{"bad amount", url.Values{"amount": {"abc"}, "category": {"Food"}}},
		{"unknown category", url.Values{"amount": {"100"}, "category": {"Rent"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(srv, "/transactions", tt.form)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d", rec.Code)
			}
			if rec.Body.Len() != 0 {
				t.Error("error responses carry no body")
			}
			n := decodeNotification(t, rec)
			if n.Variant != string(core.VariantDestructive) || n.Title != "Error" {
				t.Errorf("notification = %+v", n)
			}
		})
	}

	list, _ := st.ListTransactions(context.Background())
	if len(list) != 4 {
		t.Errorf("ledger changed: %d entries", len(list))
	}
}

func TestGoalRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	if rec := postForm(srv, "/goals/1/contribute", url.Values{"amount": {"500"}}); rec.Code != http.StatusOK {
		t.Fatalf("contribute status = %d", rec.Code)
	} else if n := decodeNotification(t, rec); n.Title != "Savings Added" {
		t.Errorf("notification = %+v", n)
	}

	// Goal 2 starts locked.
	if rec := postForm(srv, "/goals/2/contribute", url.Values{"amount": {"500"}}); rec.Code != http.StatusConflict {
		t.Errorf("locked contribute status = %d", rec.Code)
	}
	if rec := postForm(srv, "/goals/99/contribute", url.Values{"amount": {"500"}}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown goal status = %d", rec.Code)
	}

	if rec := postForm(srv, "/goals/2/lock", nil); rec.Code != http.StatusOK {
		t.Fatalf("unlock status = %d", rec.Code)
	}
	if rec := postForm(srv, "/goals/2/contribute", url.Values{"amount": {"500"}}); rec.Code != http.StatusOK {
		t.Errorf("contribute after unlock status = %d", rec.Code)
	}

	rec := postForm(srv, "/goals", url.Values{"title": {"Laptop"}, "target": {"250000"}, "piggy_mode": {"on"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Laptop") {
		t.Error("new goal should be listed")
	}
}

func TestReminderRoutes(t *testing.T) {
	srv, st := newTestServer(t)

	if rec := postForm(srv, "/reminders/1/notification", nil); rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rec.Code)
	} else if n := decodeNotification(t, rec); n.Title != "Notifications Off" {
		t.Errorf("notification = %+v", n)
	}

	if rec := postForm(srv, "/reminders/1/paid", nil); rec.Code != http.StatusOK {
		t.Fatalf("paid status = %d", rec.Code)
	}
	if rec := postForm(srv, "/reminders/1/paid", nil); rec.Code != http.StatusNotFound {
		t.Errorf("second paid status = %d", rec.Code)
	}
	if rec := postForm(srv, "/reminders/42/notification", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown reminder status = %d", rec.Code)
	}

	rec := postForm(srv, "/reminders", url.Values{
		"title":    {"Hostel fee"},
		"amount":   {"40000"},
		"due_date": {"2024-01-25"},
		"category": {"School"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d", rec.Code)
	}
	list, _ := st.ListReminders(context.Background())
	if len(list) != 3 || list[len(list)-1].Title != "Hostel fee" {
		t.Errorf("reminders = %+v", list)
	}

	if rec := postForm(srv, "/reminders", url.Values{"title": {"No date"}, "amount": {"10"}}); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing due date status = %d", rec.Code)
	}
}

func TestBalanceRoutes(t *testing.T) {
	srv, st := newTestServer(t)

	rec := get(srv, "/balance/edit", map[string]string{"HX-Request": "true"})
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `name="balance"`) {
		t.Error("edit card should show the balance input")
	}

	if rec := postForm(srv, "/balance", url.Values{"balance": {"52000.50"}}); rec.Code != http.StatusOK {
		t.Fatalf("commit status = %d", rec.Code)
	}
	balance, _ := st.Balance(context.Background())
	if balance.Minor != 5200050 {
		t.Errorf("balance = %d", balance.Minor)
	}

	// Input that does not parse resets the balance.
	if rec := postForm(srv, "/balance", url.Values{"balance": {"12abc"}}); rec.Code != http.StatusOK {
		t.Errorf("bad balance status = %d", rec.Code)
	}
	if balance, _ := st.Balance(context.Background()); !balance.IsZero() {
		t.Errorf("balance = %d, want 0", balance.Minor)
	}

	if rec := postForm(srv, "/priorities/4/toggle", nil); rec.Code != http.StatusOK {
		t.Errorf("toggle priority status = %d", rec.Code)
	}
	if rec := postForm(srv, "/priorities/9/toggle", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown priority status = %d", rec.Code)
	}
}

func TestSettingsRoutes(t *testing.T) {
	srv, st := newTestServer(t)

	if rec := postForm(srv, "/settings/currency", url.Values{"currency": {"USD"}}); rec.Code != http.StatusOK {
		t.Fatalf("currency status = %d", rec.Code)
	}
	if rec := postForm(srv, "/settings/theme", url.Values{"dark_mode": {"on"}}); rec.Code != http.StatusOK {
		t.Fatalf("theme status = %d", rec.Code)
	} else if !strings.Contains(rec.Body.String(), `data-dark="true"`) {
		t.Error("settings content should carry the new theme")
	}
	if rec := postForm(srv, "/settings/profile", url.Values{"name": {""}}); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty name status = %d", rec.Code)
	}
	if rec := postForm(srv, "/settings/clear-transactions", nil); rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}

	settings, _ := st.Settings(context.Background())
	if settings.Currency != core.CurrencyUSD || !settings.DarkMode() {
		t.Errorf("settings = %+v", settings)
	}
	list, _ := st.ListTransactions(context.Background())
	if len(list) != 0 {
		t.Errorf("transactions left: %d", len(list))
	}

	page := get(srv, "/", nil).Body.String()
	if !strings.Contains(page, `class="dark"`) {
		t.Error("layout should switch to the dark theme")
	}
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(srv, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}

	rec = get(srv, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", rec.Code)
	}
	var body struct {
		Status string         `json:"status"`
		Checks map[string]any `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ready" || body.Checks["store"] != "ok" {
		t.Errorf("readyz = %+v", body)
	}
}

type downStore struct{}

func (downStore) Ping(_ context.Context) error { return errors.New("connection refused") }

func TestReadyReportsStoreFailure(t *testing.T) {
	wallet := services.NewWallet(services.Deps{Store: memory.NewSeeded()})
	srv, err := NewServer(":0", Options{Wallet: wallet, Store: downStore{}})
	if err != nil {
		t.Fatal(err)
	}
	if rec := get(srv, "/readyz", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestSecurityHeadersAndScanners(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(srv, "/settings", nil)
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("request id missing")
	}

	if rec := get(srv, "/wp-admin/setup.php", nil); rec.Code != http.StatusNotFound {
		t.Errorf("scanner request status = %d", rec.Code)
	}
}

func TestMutationsAreRateLimited(t *testing.T) {
	wallet := services.NewWallet(services.Deps{Store: memory.NewSeeded(), Clock: core.FixedClock(refNow)})
	srv, err := NewServer(":0", Options{Wallet: wallet, RateLimitRPM: 2})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if rec := postForm(srv, "/reminders/3/notification", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := postForm(srv, "/reminders/3/notification", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After missing")
	}
	if n := decodeNotification(t, rec); n.Variant != string(core.VariantDestructive) {
		t.Errorf("notification = %+v", n)
	}

	// Reads are never limited.
	if rec := get(srv, "/reminders", nil); rec.Code != http.StatusOK {
		t.Errorf("read status = %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.NewValidationError("bad", core.ErrInvalidAmount), http.StatusUnprocessableEntity},
		{core.ErrGoalNotFound, http.StatusNotFound},
		{core.ErrReminderNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", core.ErrPriorityNotFound), http.StatusNotFound},
		{errBadID, http.StatusNotFound},
		{core.ErrGoalLocked, http.StatusConflict},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestTrendBars(t *testing.T) {
	bars := trendBars([]core.TrendPoint{
		{Label: "Mon", Amount: core.NewMoney(1000)},
		{Label: "Tue", Amount: core.NewMoney(10)},
		{Label: "Wed"},
		{Label: "Thu", Amount: core.NewMoney(500)},
	})
	want := []int{100, 4, 0, 50}
	for i, b := range bars {
		if b.Height != want[i] {
			t.Errorf("bar %s height = %d, want %d", b.Label, b.Height, want[i])
		}
	}

	for _, b := range trendBars([]core.TrendPoint{{Label: "Mon"}, {Label: "Tue"}}) {
		if b.Height != 0 {
			t.Errorf("empty trend bar %s height = %d", b.Label, b.Height)
		}
	}
}

func TestMutationLogCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Component: log.ComponentApp, Output: &buf})
	st := memory.New(store.DefaultSeed())
	wallet := services.NewWallet(services.Deps{
		Store:  st,
		Clock:  core.FixedClock(refNow),
		Logger: log.Discard(),
	})
	srv, err := NewServer(":0", Options{Wallet: wallet, Store: st, Logger: logger})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	const requestID = "3f6c2a9e-1b4d-4c8e-9a7f-2d5b6e8c1a0f"
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(url.Values{
		"amount":   {"1200"},
		"category": {"Food"},
	}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-Request-ID", requestID)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var mutation string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, `msg="Wallet updated"`) {
			mutation = line
		}
	}
	if mutation == "" {
		t.Fatalf("no mutation record in %q", buf.String())
	}
	for _, want := range []string{"request_id=" + requestID, "component=ledger", "amount_minor=120000"} {
		if !strings.Contains(mutation, want) {
			t.Errorf("mutation record %q lacks %q", mutation, want)
		}
	}
}
