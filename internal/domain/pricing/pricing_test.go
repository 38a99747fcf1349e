package pricing

import (
	"errors"
	"testing"
	"time"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestForStay(t *testing.T) {
	dr, err := daterange.New(day("2024-06-01"), day("2024-06-04"))
	if err != nil {
		t.Fatalf("daterange.New: %v", err)
	}

	quote, err := ForStay(dr, money.Must(10000, "EUR"))
	if err != nil {
		t.Fatalf("ForStay: %v", err)
	}
	if quote.Nights != 3 {
		t.Errorf("Nights = %d, want 3", quote.Nights)
	}
	if quote.Total.Amount != 30000 {
		t.Errorf("Total = %d, want 30000", quote.Total.Amount)
	}
	if got := quote.FormattedTotal(); got != "300.00 EUR" {
		t.Errorf("FormattedTotal = %q, want %q", got, "300.00 EUR")
	}
}

func TestForStayInvalidRange(t *testing.T) {
	dr := daterange.DateRange{CheckIn: day("2024-06-05"), CheckOut: day("2024-06-05")}
	if _, err := ForStay(dr, money.Must(10000, "EUR")); !errors.Is(err, daterange.ErrInvalidRange) {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
}

func TestForStayMissingCurrency(t *testing.T) {
	dr, _ := daterange.New(day("2024-06-01"), day("2024-06-04"))
	if _, err := ForStay(dr, money.Money{Amount: 100}); !errors.Is(err, ErrCurrencyUnset) {
		t.Errorf("err = %v, want ErrCurrencyUnset", err)
	}
}
