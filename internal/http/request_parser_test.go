package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func newBodyRequest(body, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestParseRequestBody(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantJSON    bool
		amount      string
		recurring   bool
	}{
		{"form", "amount=1500&category=Transport&recurring=on", "application/x-www-form-urlencoded", false, "1500", true},
		{"form unchecked", "amount=12.5&category=Food", "application/x-www-form-urlencoded", false, "12.5", false},
		{"json", `{"amount":"2000","category":"Data","recurring":true}`, "application/json", true, "2000", true},
		{"json number", `{"amount":750}`, "", true, "750", false},
		{"empty form", "", "", false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseRequestBody(newBodyRequest(tt.body, tt.contentType))
			if err != nil {
				t.Fatalf("ParseRequestBody() error = %v", err)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v", p.IsJSON())
			}
			if got := p.Get("amount"); got != tt.amount {
				t.Errorf("Get(amount) = %q, want %q", got, tt.amount)
			}
			if got := p.Bool("recurring"); got != tt.recurring {
				t.Errorf("Bool(recurring) = %v, want %v", got, tt.recurring)
			}
		})
	}
}

func TestParseRequestBody_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		ct   string
	}{
		{"broken json", `{"amount":`, "application/json"},
		{"oversized", "note=" + strings.Repeat("a", maxBodyBytes+1), "application/x-www-form-urlencoded"},
		{"bad escape", "note=%zz", "application/x-www-form-urlencoded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRequestBody(newBodyRequest(tt.body, tt.ct)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Lunch  ", "Lunch"},
		{"Bus\x00fare", "Busfare"},
		{"line\nbreak", "line\nbreak"},
		{"\x07bell", "bell"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		id      string
		want    int64
		wantErr bool
	}{
		{"3", 3, false},
		{"0", 0, true},
		{"abc", 0, true},
		{"99999999999999999999", 0, true},
	}
	for _, tt := range tests {
		r := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/", nil), map[string]string{"id": tt.id})
		got, err := pathID(r)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("pathID(%q) = %d, %v", tt.id, got, err)
		}
	}
}
