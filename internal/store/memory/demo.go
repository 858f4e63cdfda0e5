package memory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/pos"
)

// DemoID derives a stable identifier for demo records.
func DemoID(kind string, n int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("odyssey-pos/%s/%d", kind, n))).String()
}

// Demo builds a deterministic dataset covering the 60 days before now.
func Demo(now time.Time, loc *time.Location) Dataset {
	if loc == nil {
		loc = time.UTC
	}
	ds := Dataset{
		Users: []pos.User{
			{ID: DemoID("user", 1), Name: "Ana", Lastname: "Benítez", Email: "ana@example.com"},
			{ID: DemoID("user", 2), Name: "Carlos", Lastname: "Giménez", Email: "carlos@example.com"},
			{ID: DemoID("user", 3), Name: "Lucía", Lastname: "Ortiz"},
		},
		Customers: []pos.Customer{
			{ID: DemoID("customer", 1), Name: "Comercial Asunción SA", RUC: "80012345-6"},
			{ID: DemoID("customer", 2), Name: "María Fernández", RUC: "4567890-1"},
		},
		Checkouts: []pos.Checkout{
			{ID: DemoID("checkout", 1), Name: "Caja 1"},
			{ID: DemoID("checkout", 2), Name: "Caja 2"},
		},
	}
	names := []string{"Yerba mate 500 g", "Chipa x 6", "Gaseosa 2 L", "Leche entera 1 L", "Pan felipe", "Queso paraguay kg", "Azúcar 1 kg", "Aceite 900 ml"}
	prices := []int64{12500, 10000, 11000, 7500, 2500, 38000, 6800, 15900}
	for i, name := range names {
		ds.Products = append(ds.Products, pos.Product{
			ID:      DemoID("product", i+1),
			Name:    name,
			Barcode: fmt.Sprintf("78400%07d", 1000+i),
		})
	}

	statuses := []pos.SaleStatus{pos.StatusCompleted, pos.StatusCompleted, pos.StatusCompleted, pos.StatusPending, pos.StatusCompleted, pos.StatusCancelled, pos.StatusCompleted, pos.StatusRefunded}
	start := pos.StartOfDay(now, loc).AddDate(0, 0, -60)
	n := 0
	for day := 0; day < 60; day++ {
		perDay := 2 + day%4
		for k := 0; k < perDay; k++ {
			n++
			created := start.AddDate(0, 0, day).Add(time.Duration(8+k*3)*time.Hour + time.Duration(n%50)*time.Minute)
			sale := pos.Sale{
				ID:         DemoID("sale", n),
				SaleNumber: fmt.Sprintf("001-001-%07d", n),
				Status:     statuses[n%len(statuses)],
				CheckoutID: ds.Checkouts[n%len(ds.Checkouts)].ID,
				UserID:     ds.Users[n%len(ds.Users)].ID,
				CreatedAt:  created,
			}
			if n%3 == 0 {
				sale.CustomerID = ds.Customers[n%len(ds.Customers)].ID
			}
			lines := 1 + n%3
			for l := 0; l < lines; l++ {
				p := (n + l*3) % len(ds.Products)
				qty := decimal.NewFromInt(int64(1 + (n+l)%4))
				price := decimal.NewFromInt(prices[p])
				total := price.Mul(qty)
				sale.Items = append(sale.Items, pos.SaleItem{
					ID:        DemoID("item", n*10+l),
					SaleID:    sale.ID,
					ProductID: ds.Products[p].ID,
					Quantity:  qty,
					UnitPrice: price,
					Total:     total,
				})
				sale.Subtotal = sale.Subtotal.Add(total)
			}
			if n%7 == 0 {
				sale.Discount = decimal.NewFromInt(1000)
			}
			sale.Total = sale.Subtotal.Sub(sale.Discount)
			sale.Tax = sale.Total.Div(decimal.NewFromInt(11)).Round(0)
			ds.Sales = append(ds.Sales, sale)
		}
	}

	opened := pos.StartOfDay(now, loc).AddDate(0, 0, -1).Add(7 * time.Hour)
	closed := opened.Add(14 * time.Hour)
	final := decimal.NewFromInt(1_353_500)
	ds.Registers = append(ds.Registers, pos.CashRegister{
		ID:           DemoID("register", 1),
		CheckoutID:   ds.Checkouts[0].ID,
		Status:       pos.RegisterClosed,
		InitialCash:  decimal.NewFromInt(300_000),
		FinalCash:    &final,
		OpeningNotes: "Apertura con fondo fijo.",
		ClosingNotes: "Diferencia por vuelto entregado de más.",
		OpenedAt:     opened,
		ClosedAt:     &closed,
		OpenedBy:     &ds.Users[0],
		ClosedBy:     &ds.Users[0],
		Transactions: []pos.Transaction{
			{ID: DemoID("tx", 1), PaymentMethod: pos.PaymentCash, Movement: pos.MovementIncome, Amount: decimal.NewFromInt(1_080_000), Description: "Ventas en efectivo", CreatedAt: opened.Add(time.Hour)},
			{ID: DemoID("tx", 2), PaymentMethod: pos.PaymentCash, Movement: pos.MovementExpense, Amount: decimal.NewFromInt(25_000), Description: "Compra de bolsas", CreatedAt: opened.Add(2 * time.Hour)},
			{ID: DemoID("tx", 3), PaymentMethod: pos.PaymentDebitCard, Movement: pos.MovementIncome, Amount: decimal.NewFromInt(420_000), VoucherIdentifier: "POS-7781", CreatedAt: opened.Add(3 * time.Hour)},
			{ID: DemoID("tx", 4), PaymentMethod: pos.PaymentCreditCard, Movement: pos.MovementIncome, Amount: decimal.NewFromInt(310_000), VoucherIdentifier: "POS-7790", CreatedAt: opened.Add(4 * time.Hour)},
			{ID: DemoID("tx", 5), PaymentMethod: pos.PaymentTigoMoney, Movement: pos.MovementIncome, Amount: decimal.NewFromInt(95_000), CreatedAt: opened.Add(5 * time.Hour)},
			{ID: DemoID("tx", 6), PaymentMethod: pos.PaymentQR, Movement: pos.MovementIncome, Amount: decimal.NewFromInt(64_500), CreatedAt: opened.Add(6 * time.Hour)},
		},
	})
	return ds
}
