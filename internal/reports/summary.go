package reports

import "github.com/shopspring/decimal"

// DailySummary condenses a month of daily rows.
type DailySummary struct {
	Total         decimal.Decimal `json:"total"`
	SaleCount     int             `json:"saleCount"`
	AverageTicket decimal.Decimal `json:"averageTicket"`
	BestDay       *DailyTotalRow  `json:"bestDay,omitempty"`
}

// SummarizeDaily totals rows. BestDay is the first row with the highest total.
func SummarizeDaily(rows []DailyTotalRow) DailySummary {
	var sum DailySummary
	for i := range rows {
		sum.Total = sum.Total.Add(rows[i].Total)
		sum.SaleCount += rows[i].SaleCount
		if sum.BestDay == nil || rows[i].Total.GreaterThan(sum.BestDay.Total) {
			best := rows[i]
			sum.BestDay = &best
		}
	}
	sum.AverageTicket = averageOf(sum.Total, decimal.NewFromInt(int64(sum.SaleCount)))
	return sum
}

// ProductSummary totals the product rows.
type ProductSummary struct {
	Quantity decimal.Decimal `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
	Products int             `json:"products"`
}

// SummarizeProducts totals rows.
func SummarizeProducts(rows []ProductTotalRow) ProductSummary {
	sum := ProductSummary{Products: len(rows)}
	for _, r := range rows {
		sum.Quantity = sum.Quantity.Add(r.Quantity)
		sum.Total = sum.Total.Add(r.Total)
	}
	return sum
}

// UserSummary totals the cashier rows.
type UserSummary struct {
	SaleCount int             `json:"saleCount"`
	Total     decimal.Decimal `json:"total"`
	Users     int             `json:"users"`
}

// SummarizeUsers totals rows.
func SummarizeUsers(rows []UserTotalRow) UserSummary {
	sum := UserSummary{Users: len(rows)}
	for _, r := range rows {
		sum.SaleCount += r.SaleCount
		sum.Total = sum.Total.Add(r.Total)
	}
	return sum
}
