package charts

import (
	"bytes"
	"errors"
	"testing"
	"unicode/utf8"

	"storefront-bot/internal/store"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestSalesChart(t *testing.T) {
	if _, err := SalesChart(nil, 30, "₽"); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData for empty input", err)
	}

	rows := []store.DailySales{
		{Day: "2026-08-01", Orders: 3, Revenue: 450},
		{Day: "2026-08-02", Orders: 1, Revenue: 100},
		{Day: "2026-08-03", Orders: 5, Revenue: 900},
	}
	png, err := SalesChart(rows, 30, "₽")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestRegistrationsChart(t *testing.T) {
	if _, err := RegistrationsChart(nil, 30); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}

	rows := []store.DailyCount{
		{Day: "2026-08-01", Count: 2},
		{Day: "2026-08-02", Count: 7},
	}
	png, err := RegistrationsChart(rows, 30)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestTopProductsChart(t *testing.T) {
	if _, err := TopProductsChart(nil); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}

	rows := []store.ProductSales{
		{Name: "Товар А", Sales: 10, Revenue: 1000},
		{Name: "Товар Б", Sales: 4, Revenue: 800},
	}
	png, err := TopProductsChart(rows)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestTruncateLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"short", "short"},
		{"ровно двадцать букв.", "ровно двадцать букв."},
		{"очень длинное название товара из каталога", "очень длинное назван..."},
		{"latin name that is way too long", "latin name that is w..."},
	}
	for _, c := range cases {
		got := truncateLabel(c.in, 20)
		if got != c.want {
			t.Errorf("truncateLabel(%q) = %q, want %q", c.in, got, c.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncateLabel(%q) produced invalid UTF-8", c.in)
		}
	}
}

func TestTopProductsChartCyrillicNames(t *testing.T) {
	rows := []store.ProductSales{
		{Name: "Безлимитная подписка на целый год со скидкой", Sales: 6, Revenue: 600},
		{Name: "Подарочный сертификат", Sales: 2, Revenue: 200},
	}
	png, err := TopProductsChart(rows)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("output is not a PNG")
	}
}
