package money

import "testing"

func TestNew(t *testing.T) {
	m, err := New(10000, "eur")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", m.Currency)
	}
	if _, err := New(100, "EURO"); err == nil {
		t.Error("expected error for four-letter currency")
	}
	if _, err := New(100, ""); err == nil {
		t.Error("expected error for empty currency")
	}
}

func TestMultiply(t *testing.T) {
	m := Must(10000, "EUR")
	got := m.Multiply(3)
	if got.Amount != 30000 {
		t.Errorf("Amount = %d, want 30000", got.Amount)
	}
	if got.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", got.Currency)
	}
}

func TestAddCurrencyMismatch(t *testing.T) {
	if _, err := Must(100, "EUR").Add(Must(100, "USD")); err == nil {
		t.Error("expected currency mismatch error")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		amount   int64
		currency string
		want     string
	}{
		{30000, "EUR", "300.00 EUR"},
		{10050, "EUR", "100.50 EUR"},
		{5, "USD", "0.05 USD"},
		{0, "EUR", "0.00 EUR"},
		{-1234, "EUR", "-12.34 EUR"},
	}
	for _, tt := range tests {
		m := Must(tt.amount, tt.currency)
		if got := m.Format(); got != tt.want {
			t.Errorf("Format(%d %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}
