package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "tablepos/internal/errors"
)

// DateLayout is the calendar date format used by every report.
const DateLayout = "2006-01-02"

// DefaultTopItems is how many best sellers a daily summary lists.
const DefaultTopItems = 10

type TopItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Revenue  int64  `json:"revenue"`
}

type DailySummary struct {
	Date       string           `json:"date"`
	Count      int              `json:"count"`
	TotalSales int64            `json:"totalSales"`
	ByPayment  map[string]int64 `json:"byPayment"`
	TopItems   []TopItem        `json:"topItems"`
}

type RangeSummary struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Count      int    `json:"count"`
	TotalSales int64  `json:"totalSales"`
}

type OperatorSummary struct {
	Operator   string `json:"operator"`
	TotalSales int64  `json:"totalSales"`
	OrderCount int    `json:"orderCount"`
}

// CountsAsRevenue reports whether an order contributes to sales figures.
// Only settled payments do; open carts and voided orders never count.
func (o Order) CountsAsRevenue() bool {
	return o.Status == OrderStatusPaid
}

// ParseReportDate parses a YYYY-MM-DD date as midnight in loc. A blank value
// means today in loc. field names the input in validation errors.
func ParseReportDate(field, s string, loc *time.Location, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}

	day, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("invalid date", apperrors.ValidationDetail{
			Field:   field,
			Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", s),
		})
	}
	return day, nil
}

// DayBounds returns the half-open range [start of first, start of the day
// after last) for inclusive calendar dates first and last.
func DayBounds(first, last time.Time) (time.Time, time.Time) {
	return first, last.AddDate(0, 0, 1)
}

// SummarizeDay aggregates the revenue orders of one day. orders must be sorted
// by order number ascending with items in insertion order so that ties in the
// best seller list keep first-encountered order.
func SummarizeDay(date string, orders []Order) DailySummary {
	summary := DailySummary{
		Date:      date,
		ByPayment: make(map[string]int64, len(PaymentMethods)),
	}
	for _, m := range PaymentMethods {
		summary.ByPayment[string(m)] = 0
	}

	for _, o := range orders {
		if !o.CountsAsRevenue() {
			continue
		}
		summary.Count++
		summary.TotalSales += o.Total

		method := DefaultPaymentMethod
		if o.PaymentMethod != nil {
			method = *o.PaymentMethod
		}
		summary.ByPayment[string(method)] += o.Total
	}

	summary.TopItems = TopItemsByRevenue(orders, DefaultTopItems)
	return summary
}

// TopItemsByRevenue groups item snapshots of revenue orders by name and
// returns the limit best sellers by line total revenue, highest first.
func TopItemsByRevenue(orders []Order, limit int) []TopItem {
	index := make(map[string]int)
	items := []TopItem{}

	for _, o := range orders {
		if !o.CountsAsRevenue() {
			continue
		}
		for _, it := range o.Items {
			i, ok := index[it.Name]
			if !ok {
				i = len(items)
				index[it.Name] = i
				items = append(items, TopItem{Name: it.Name})
			}
			items[i].Quantity += it.Quantity
			items[i].Revenue += it.LineTotal
		}
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Revenue > items[b].Revenue
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// SortOperatorSummaries orders by total sales descending, then operator name.
func SortOperatorSummaries(rows []OperatorSummary) {
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].TotalSales != rows[b].TotalSales {
			return rows[a].TotalSales > rows[b].TotalSales
		}
		return rows[a].Operator < rows[b].Operator
	})
}
