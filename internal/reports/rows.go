package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyTotalRow is one calendar day of the daily sales report.
type DailyTotalRow struct {
	Date          string          `json:"date"`
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	Day           int             `json:"day"`
	Total         decimal.Decimal `json:"total"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	SaleCount     int             `json:"saleCount"`
	AverageTicket decimal.Decimal `json:"averageTicket"`
}

// ProductTotalRow is one product of the product sales report.
type ProductTotalRow struct {
	ProductID        string          `json:"productId"`
	Name             *string         `json:"name,omitempty"`
	Barcode          *string         `json:"barcode,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	Total            decimal.Decimal `json:"total"`
	AverageUnitPrice decimal.Decimal `json:"averageUnitPrice"`
	LastSaleAt       *time.Time      `json:"lastSaleAt,omitempty"`
}

// UserTotalRow is one cashier of the user sales report.
type UserTotalRow struct {
	UserID        string          `json:"userId"`
	Name          string          `json:"name"`
	Lastname      string          `json:"lastname"`
	Email         *string         `json:"email,omitempty"`
	SaleCount     int             `json:"saleCount"`
	Total         decimal.Decimal `json:"total"`
	AverageTicket decimal.Decimal `json:"averageTicket"`
	LastSaleAt    *time.Time      `json:"lastSaleAt,omitempty"`
}

// DailyAggregate is the raw output of the daily staged query.
type DailyAggregate struct {
	Year     int
	Month    int
	Day      int
	Total    decimal.Decimal
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Count    int
}

// ProductAggregate is the raw output of the product staged query. Name and
// Barcode stay nil when the product record is missing.
type ProductAggregate struct {
	ProductID    string
	Name         *string
	Barcode      *string
	Quantity     decimal.Decimal
	Total        decimal.Decimal
	AvgUnitPrice decimal.Decimal
	LastSaleAt   *time.Time
}

// UserAggregate is the raw output of the user staged query.
type UserAggregate struct {
	UserID     string
	Name       string
	Lastname   string
	Email      *string
	Total      decimal.Decimal
	Count      int
	LastSaleAt *time.Time
}

// averageOf divides total by count, returning zero for an empty group.
func averageOf(total decimal.Decimal, count decimal.Decimal) decimal.Decimal {
	if !count.IsPositive() {
		return decimal.Zero
	}
	return total.Div(count)
}
