// Package pos holds the point-of-sale records the reporting core reads:
// sales with their line items, cashiers, customers, checkouts and
// cash-register sessions.
package pos

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus is the lifecycle state of a sale.
type SaleStatus string

const (
	StatusCompleted SaleStatus = "COMPLETED"
	StatusPending   SaleStatus = "PENDING"
	StatusCancelled SaleStatus = "CANCELLED"
	StatusRefunded  SaleStatus = "REFUNDED"
)

var saleStatuses = []SaleStatus{StatusCompleted, StatusPending, StatusCancelled, StatusRefunded}

// SaleStatuses lists every known status in display order.
func SaleStatuses() []SaleStatus {
	out := make([]SaleStatus, len(saleStatuses))
	copy(out, saleStatuses)
	return out
}

// ParseStatus trims and upper-cases raw input, reporting whether it names a
// known status.
func ParseStatus(raw string) (SaleStatus, bool) {
	candidate := SaleStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return candidate, candidate.Valid()
}

// Valid reports whether s is a known status.
func (s SaleStatus) Valid() bool {
	for _, known := range saleStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatuses keeps the valid entries of raw, deduplicated and in input
// order. The result is nil when nothing valid remains.
func ParseStatuses(raw []string) []SaleStatus {
	var out []SaleStatus
	seen := make(map[SaleStatus]struct{}, len(raw))
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			status, ok := ParseStatus(part)
			if !ok {
				continue
			}
			if _, dup := seen[status]; dup {
				continue
			}
			seen[status] = struct{}{}
			out = append(out, status)
		}
	}
	return out
}

// PaymentMethod identifies how money moved through a register.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentDebitCard    PaymentMethod = "debitCard"
	PaymentCreditCard   PaymentMethod = "creditCard"
	PaymentTigoMoney    PaymentMethod = "tigoMoney"
	PaymentPersonalPay  PaymentMethod = "personalPay"
	PaymentBankTransfer PaymentMethod = "bankTransfer"
	PaymentQR           PaymentMethod = "qrPayment"
	PaymentCrypto       PaymentMethod = "crypto"
	PaymentCheque       PaymentMethod = "cheque"
	PaymentOther        PaymentMethod = "other"
)

var paymentMethods = []PaymentMethod{
	PaymentCash, PaymentDebitCard, PaymentCreditCard, PaymentTigoMoney, PaymentPersonalPay,
	PaymentBankTransfer, PaymentQR, PaymentCrypto, PaymentCheque, PaymentOther,
}

// PaymentMethods lists every known method in display order.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}

// IsCard reports whether the method settles through a card terminal.
func (m PaymentMethod) IsCard() bool {
	return m == PaymentDebitCard || m == PaymentCreditCard
}

// Movement is the direction of a register transaction.
type Movement string

const (
	MovementIncome  Movement = "INCOME"
	MovementExpense Movement = "EXPENSE"
)

// RegisterStatus is the state of a cash-register session.
type RegisterStatus string

const (
	RegisterOpen   RegisterStatus = "OPEN"
	RegisterClosed RegisterStatus = "CLOSED"
)

// User is a cashier or any other operator that can ring up sales.
type User struct {
	ID       string
	Name     string
	Lastname string
	Email    string
}

// FullName joins name and lastname, skipping blanks.
func (u User) FullName() string {
	return strings.TrimSpace(strings.Join([]string{strings.TrimSpace(u.Name), strings.TrimSpace(u.Lastname)}, " "))
}

// Customer is the invoiced party of a sale.
type Customer struct {
	ID   string
	Name string
	RUC  string
}

// Checkout is a physical point of sale.
type Checkout struct {
	ID   string
	Name string
}

// Product is catalog metadata attached to line items.
type Product struct {
	ID      string
	Name    string
	Barcode string
}

// Sale is an invoice header with optional resolved relations.
type Sale struct {
	ID         string
	SaleNumber string
	Status     SaleStatus
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Discount   decimal.Decimal
	Total      decimal.Decimal
	Notes      string
	CheckoutID string
	UserID     string
	CustomerID string
	CreatedAt  time.Time
	DeletedAt  *time.Time

	User     *User
	Customer *Customer
	Checkout *Checkout
	Items    []SaleItem
}

// SaleItem is a single line of a sale.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
	DeletedAt *time.Time

	Product *Product
}

// CashRegister is one opening-to-closing session of a checkout drawer.
type CashRegister struct {
	ID           string
	CheckoutID   string
	Status       RegisterStatus
	InitialCash  decimal.Decimal
	FinalCash    *decimal.Decimal
	OpeningNotes string
	ClosingNotes string
	OpenedAt     time.Time
	ClosedAt     *time.Time
	Totals       *RegisterTotals

	Checkout     *Checkout
	OpenedBy     *User
	ClosedBy     *User
	Transactions []Transaction
}

// RegisterTotals are the figures stored when a session is closed.
type RegisterTotals struct {
	TotalSales     decimal.Decimal
	TotalCash      decimal.Decimal
	TotalCard      decimal.Decimal
	TotalOther     decimal.Decimal
	ExpectedCash   decimal.Decimal
	CashDifference decimal.Decimal
}

// Transaction is a money movement recorded against a register session.
type Transaction struct {
	ID                string
	PaymentMethod     PaymentMethod
	Movement          Movement
	Amount            decimal.Decimal
	Description       string
	VoucherIdentifier string
	CreatedAt         time.Time
}
