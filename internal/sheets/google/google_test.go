package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"walletwhisper/internal/core"
	ports "walletwhisper/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{CredentialsJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet-id"})
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{"inline json wins", Config{CredentialsJSON: `{"inline":true}`, CredentialsFile: path}, `{"inline":true}`, false},
		{"file", Config{CredentialsFile: path}, `{"type":"service_account"}`, false},
		{"missing file", Config{CredentialsFile: filepath.Join(dir, "nope.json")}, "", true},
		{"nothing", Config{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := credentials(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("credentials() error = %v, wantErr %v", err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Errorf("credentials() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_RequiresService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Transactions"} // svc is nil
	list := []core.Transaction{{ID: 1, Amount: core.NewMoney(5), Category: core.CategoryData, Date: core.NewDate(2024, 1, 1)}}

	if err := c.ExportTransactions(context.Background(), list); err == nil {
		t.Error("expected error without a service")
	}
	if err := c.ReplaceTransactions(context.Background(), list); err == nil {
		t.Error("expected error without a service")
	}
}

func TestPendingRows(t *testing.T) {
	list := []core.Transaction{
		{ID: 1, Amount: core.NewMoney(100), Category: core.CategoryFood, Date: core.NewDate(2024, 1, 10)},
		{ID: 2, Amount: core.Money{Minor: 1250}, Category: core.CategoryData, Note: "Bundle", Date: core.NewDate(2024, 1, 11), Recurring: true},
	}

	t.Run("empty sheet gets header", func(t *testing.T) {
		rows := pendingRows(nil, list)
		if len(rows) != 3 {
			t.Fatalf("rows = %d, want 3", len(rows))
		}
		if rows[0][0] != "Date" || rows[0][ports.IDColumn] != "ID" {
			t.Errorf("header = %v", rows[0])
		}
		want := []any{"2024-01-11", "Data", 12.5, "Bundle", true, false, int64(2)}
		for i := range want {
			if rows[2][i] != want[i] {
				t.Errorf("cell %d = %v, want %v", i, rows[2][i], want[i])
			}
		}
	})

	t.Run("existing ids are skipped", func(t *testing.T) {
		existing := [][]any{
			{"Date", "Category", "Amount", "Note", "Recurring", "Repayment", "ID"},
			{"2024-01-10", "Food", "100", "", "FALSE", "FALSE", "1"},
		}
		rows := pendingRows(existing, list)
		if len(rows) != 1 {
			t.Fatalf("rows = %d, want 1", len(rows))
		}
		if id, _ := ports.RowID(rows[0]); id != 2 {
			t.Errorf("appended id = %d, want 2", id)
		}
	})

	t.Run("nothing new", func(t *testing.T) {
		existing := [][]any{{"Date"}, {"", "", "", "", "", "", "1"}, {"", "", "", "", "", "", "2"}}
		if rows := pendingRows(existing, list); len(rows) != 0 {
			t.Errorf("rows = %v, want none", rows)
		}
	})
}
