package pos

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentBreakdown sums the movements of one payment method.
type PaymentBreakdown struct {
	Method  PaymentMethod   `json:"method"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
	Count   int             `json:"count"`
}

// CashRegisterDetail is the flattened close-out view of a register session.
type CashRegisterDetail struct {
	ID             string             `json:"id"`
	Checkout       string             `json:"checkout"`
	Status         RegisterStatus     `json:"status"`
	OpenedBy       PartyRef           `json:"openedBy"`
	ClosedBy       *PartyRef          `json:"closedBy,omitempty"`
	OpenedAt       time.Time          `json:"openedAt"`
	ClosedAt       *time.Time         `json:"closedAt,omitempty"`
	InitialCash    decimal.Decimal    `json:"initialCash"`
	FinalCash      *decimal.Decimal   `json:"finalCash,omitempty"`
	TotalSales     decimal.Decimal    `json:"totalSales"`
	TotalCash      decimal.Decimal    `json:"totalCash"`
	TotalCard      decimal.Decimal    `json:"totalCard"`
	TotalOther     decimal.Decimal    `json:"totalOther"`
	ExpectedCash   decimal.Decimal    `json:"expectedCash"`
	CashDifference *decimal.Decimal   `json:"cashDifference,omitempty"`
	OpeningNotes   string             `json:"openingNotes,omitempty"`
	ClosingNotes   string             `json:"closingNotes,omitempty"`
	Breakdown      []PaymentBreakdown `json:"breakdown"`
}

// MapCashRegisterDetail derives the close-out figures from the session's
// transactions. Stored totals, when present, take precedence over the
// derived ones.
func MapCashRegisterDetail(r CashRegister) CashRegisterDetail {
	detail := CashRegisterDetail{
		ID:           r.ID,
		Checkout:     checkoutName(r.Checkout),
		Status:       r.Status,
		OpenedBy:     cashierRef(r.OpenedBy, ""),
		OpenedAt:     normalizeTime(r.OpenedAt),
		ClosedAt:     normalizeTimePtr(r.ClosedAt),
		InitialCash:  r.InitialCash,
		FinalCash:    r.FinalCash,
		OpeningNotes: strings.TrimSpace(r.OpeningNotes),
		ClosingNotes: strings.TrimSpace(r.ClosingNotes),
		Breakdown:    BreakdownByMethod(r.Transactions),
	}
	if detail.Status == "" {
		detail.Status = RegisterOpen
		if r.ClosedAt != nil {
			detail.Status = RegisterClosed
		}
	}
	if r.ClosedBy != nil {
		ref := cashierRef(r.ClosedBy, "")
		detail.ClosedBy = &ref
	}

	cashIncome, cashExpense := decimal.Zero, decimal.Zero
	for _, b := range detail.Breakdown {
		detail.TotalSales = detail.TotalSales.Add(b.Income)
		switch {
		case b.Method == PaymentCash:
			cashIncome = b.Income
			cashExpense = b.Expense
			detail.TotalCash = b.Income
		case b.Method.IsCard():
			detail.TotalCard = detail.TotalCard.Add(b.Income)
		default:
			detail.TotalOther = detail.TotalOther.Add(b.Income)
		}
	}
	detail.ExpectedCash = r.InitialCash.Add(cashIncome).Sub(cashExpense)
	if r.FinalCash != nil {
		diff := r.FinalCash.Sub(detail.ExpectedCash)
		detail.CashDifference = &diff
	}

	if t := r.Totals; t != nil {
		detail.TotalSales = t.TotalSales
		detail.TotalCash = t.TotalCash
		detail.TotalCard = t.TotalCard
		detail.TotalOther = t.TotalOther
		detail.ExpectedCash = t.ExpectedCash
		diff := t.CashDifference
		detail.CashDifference = &diff
	}
	return detail
}

// BreakdownByMethod groups transactions per payment method. Methods without
// movements are omitted; unknown methods are reported under PaymentOther.
func BreakdownByMethod(txs []Transaction) []PaymentBreakdown {
	byMethod := make(map[PaymentMethod]*PaymentBreakdown)
	for _, tx := range txs {
		method := tx.PaymentMethod
		if !knownMethod(method) {
			method = PaymentOther
		}
		b, ok := byMethod[method]
		if !ok {
			b = &PaymentBreakdown{Method: method}
			byMethod[method] = b
		}
		b.Count++
		if tx.Movement == MovementExpense {
			b.Expense = b.Expense.Add(tx.Amount.Abs())
		} else {
			b.Income = b.Income.Add(tx.Amount.Abs())
		}
	}
	out := make([]PaymentBreakdown, 0, len(byMethod))
	for _, method := range paymentMethods {
		b, ok := byMethod[method]
		if !ok {
			continue
		}
		b.Net = b.Income.Sub(b.Expense)
		out = append(out, *b)
	}
	return out
}

func knownMethod(m PaymentMethod) bool {
	for _, known := range paymentMethods {
		if m == known {
			return true
		}
	}
	return false
}
