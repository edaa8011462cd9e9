// Package charts renders admin statistics as PNG images. Renderers are
// pure functions over rows handed in by the caller; no storage access and
// no locks are held here.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"storefront-bot/internal/store"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("недостаточно данных для графика")

const dayLayout = "2006-01-02"

// SalesChart plots completed orders and revenue per day.
func SalesChart(rows []store.DailySales, days int, currency string) ([]byte, error) {
	if len(rows) < 2 {
		return nil, ErrNoData
	}

	dates := make([]time.Time, 0, len(rows))
	orders := make([]float64, 0, len(rows))
	revenue := make([]float64, 0, len(rows))
	for _, r := range rows {
		day, err := time.Parse(dayLayout, r.Day)
		if err != nil {
			continue
		}
		dates = append(dates, day)
		orders = append(orders, float64(r.Orders))
		revenue = append(revenue, float64(r.Revenue))
	}
	if len(dates) < 2 {
		return nil, ErrNoData
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Продажи за %d дн.", days),
		Width:  1200,
		Height: 600,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: fmt.Sprintf("Выручка (%s)", currency),
		},
		YAxisSecondary: chart.YAxis{
			Name: "Заказы",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Выручка",
				XValues: dates,
				YValues: revenue,
			},
			chart.TimeSeries{
				Name:    "Заказы",
				YAxis:   chart.YAxisSecondary,
				XValues: dates,
				YValues: orders,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render sales chart: %w", err)
	}
	return buf.Bytes(), nil
}

// RegistrationsChart plots new users per day.
func RegistrationsChart(rows []store.DailyCount, days int) ([]byte, error) {
	if len(rows) < 2 {
		return nil, ErrNoData
	}

	dates := make([]time.Time, 0, len(rows))
	counts := make([]float64, 0, len(rows))
	for _, r := range rows {
		day, err := time.Parse(dayLayout, r.Day)
		if err != nil {
			continue
		}
		dates = append(dates, day)
		counts = append(counts, float64(r.Count))
	}
	if len(dates) < 2 {
		return nil, ErrNoData
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Регистрации за %d дн.", days),
		Width:  1200,
		Height: 500,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Пользователи",
				XValues: dates,
				YValues: counts,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render registrations chart: %w", err)
	}
	return buf.Bytes(), nil
}

// truncateLabel shortens s to at most max runes. Cutting on bytes would
// split multibyte product names mid-rune.
func truncateLabel(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// TopProductsChart plots sales counts of the best-selling products.
func TopProductsChart(rows []store.ProductSales) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	bars := make([]chart.Value, 0, len(rows))
	for _, r := range rows {
		bars = append(bars, chart.Value{Label: truncateLabel(r.Name, 20), Value: float64(r.Sales)})
	}

	graph := chart.BarChart{
		Title:    "Топ товаров по продажам",
		Width:    1200,
		Height:   600,
		BarWidth: 60,
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render top products chart: %w", err)
	}
	return buf.Bytes(), nil
}
