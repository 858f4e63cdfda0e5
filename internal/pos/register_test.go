package pos

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestMapCashRegisterDetailDerivesMoneySummary(t *testing.T) {
	final := dec(148000)
	closed := time.Date(2024, 8, 10, 22, 0, 0, 0, time.UTC)
	detail := MapCashRegisterDetail(CashRegister{
		ID:          "r1",
		InitialCash: dec(50000),
		FinalCash:   &final,
		ClosedAt:    &closed,
		OpenedBy:    &User{ID: "u1", Name: "Ana"},
		Transactions: []Transaction{
			{PaymentMethod: PaymentCash, Movement: MovementIncome, Amount: dec(100000)},
			{PaymentMethod: PaymentCash, Movement: MovementExpense, Amount: dec(-2000)},
			{PaymentMethod: PaymentDebitCard, Movement: MovementIncome, Amount: dec(30000)},
			{PaymentMethod: PaymentCreditCard, Movement: MovementIncome, Amount: dec(20000)},
			{PaymentMethod: PaymentTigoMoney, Movement: MovementIncome, Amount: dec(5000)},
			{PaymentMethod: "voucher", Movement: MovementIncome, Amount: dec(1000)},
		},
	})

	assert.Equal(t, RegisterClosed, detail.Status)
	assert.True(t, detail.TotalSales.Equal(dec(156000)))
	assert.True(t, detail.TotalCash.Equal(dec(100000)))
	assert.True(t, detail.TotalCard.Equal(dec(50000)))
	assert.True(t, detail.TotalOther.Equal(dec(6000)))
	assert.True(t, detail.ExpectedCash.Equal(dec(148000)))
	require.NotNil(t, detail.CashDifference)
	assert.True(t, detail.CashDifference.IsZero())

	methods := make([]PaymentMethod, 0, len(detail.Breakdown))
	for _, b := range detail.Breakdown {
		methods = append(methods, b.Method)
	}
	assert.Equal(t, []PaymentMethod{PaymentCash, PaymentDebitCard, PaymentCreditCard, PaymentTigoMoney, PaymentOther}, methods)
	assert.True(t, detail.Breakdown[0].Net.Equal(dec(98000)))
	assert.Equal(t, 2, detail.Breakdown[0].Count)
}

func TestMapCashRegisterDetailPrefersStoredTotals(t *testing.T) {
	detail := MapCashRegisterDetail(CashRegister{
		Status:      RegisterClosed,
		InitialCash: dec(10000),
		Totals:      &RegisterTotals{TotalSales: dec(1), TotalCash: dec(2), TotalCard: dec(3), TotalOther: dec(4), ExpectedCash: dec(5), CashDifference: dec(-6)},
		Transactions: []Transaction{
			{PaymentMethod: PaymentCash, Movement: MovementIncome, Amount: dec(999)},
		},
	})

	assert.True(t, detail.TotalSales.Equal(dec(1)))
	assert.True(t, detail.ExpectedCash.Equal(dec(5)))
	require.NotNil(t, detail.CashDifference)
	assert.True(t, detail.CashDifference.Equal(dec(-6)))
	assert.Equal(t, "Sin cajero", detail.OpenedBy.Name)
}

func TestMapCashRegisterDetailOpenSessionHasNoDifference(t *testing.T) {
	detail := MapCashRegisterDetail(CashRegister{InitialCash: dec(10000)})
	assert.Equal(t, RegisterOpen, detail.Status)
	assert.Nil(t, detail.CashDifference)
	assert.True(t, detail.ExpectedCash.Equal(dec(10000)))
	assert.Empty(t, detail.Breakdown)
}
