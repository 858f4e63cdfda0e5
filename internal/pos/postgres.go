package pos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresRepository reads sales records from PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// NewPostgresRepository constructs a repository. loc is the business time zone
// used to widen invoice date filters to whole days.
func NewPostgresRepository(pool *pgxpool.Pool, loc *time.Location) *PostgresRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &PostgresRepository{pool: pool, loc: loc}
}

const saleColumns = `s.id::text, s.sale_number, s.status, s.subtotal, s.tax, s.discount, s.total, s.notes,
	s.checkout_id::text, s.user_id::text, s.customer_id::text, s.created_at, s.deleted_at,
	u.id::text, u.name, u.lastname, u.email,
	c.id::text, c.name, c.ruc,
	k.id::text, k.name`

const saleJoins = `FROM sales s
	LEFT JOIN users u ON u.id = s.user_id
	LEFT JOIN customers c ON c.id = s.customer_id
	LEFT JOIN checkouts k ON k.id = s.checkout_id`

// SaleByNumber loads a sale with cashier, customer, checkout and line items.
func (r *PostgresRepository) SaleByNumber(ctx context.Context, saleNumber string) (Sale, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+saleColumns+` `+saleJoins+`
		WHERE s.sale_number = $1 AND s.deleted_at IS NULL`, saleNumber)
	sale, err := scanSale(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, fmt.Errorf("sale %q: %w", saleNumber, ErrNotFound)
	}
	if err != nil {
		return Sale{}, err
	}
	items, err := r.saleItems(ctx, sale.ID)
	if err != nil {
		return Sale{}, err
	}
	sale.Items = items
	return sale, nil
}

func (r *PostgresRepository) saleItems(ctx context.Context, saleID string) ([]SaleItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT si.id::text, si.sale_id::text, si.product_id::text, si.quantity, si.unit_price, si.total,
			si.deleted_at, p.id::text, p.name, p.barcode
		FROM sale_items si
		LEFT JOIN products p ON p.id = si.product_id
		WHERE si.sale_id = $1 AND si.deleted_at IS NULL
		ORDER BY si.id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SaleItem
	for rows.Next() {
		var (
			item                     SaleItem
			productID, name, barcode *string
		)
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Total,
			&item.DeletedAt, &productID, &name, &barcode); err != nil {
			return nil, err
		}
		if productID != nil {
			item.Product = &Product{ID: *productID, Name: deref(name), Barcode: deref(barcode)}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListInvoices returns one page of sales ordered by creation time descending
// together with the unpaged match count.
func (r *PostgresRepository) ListInvoices(ctx context.Context, query InvoiceQuery) (InvoicePage, error) {
	q := query.Normalize(r.loc)
	where, args := invoiceWhere(q)

	var page InvoicePage
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) `+saleJoins+` WHERE `+where, args...).Scan(&page.Total); err != nil {
		return InvoicePage{}, err
	}

	args = append(args, q.Limit, q.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d`,
		saleColumns, saleJoins, where, len(args)-1, len(args)), args...)
	if err != nil {
		return InvoicePage{}, err
	}
	defer rows.Close()
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return InvoicePage{}, err
		}
		page.Sales = append(page.Sales, sale)
	}
	if err := rows.Err(); err != nil {
		return InvoicePage{}, err
	}
	return page, nil
}

func invoiceWhere(q InvoiceQuery) (string, []any) {
	conds := []string{"s.deleted_at IS NULL"}
	var args []any
	add := func(format string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}
	if q.CashierID != "" {
		add("s.user_id::text = $%d", q.CashierID)
	}
	if len(q.Statuses) > 0 {
		statuses := make([]string, 0, len(q.Statuses))
		for _, s := range q.Statuses {
			statuses = append(statuses, string(s))
		}
		add("s.status = ANY($%d)", statuses)
	}
	if q.From != nil {
		add("s.created_at >= $%d", *q.From)
	}
	if q.To != nil {
		add("s.created_at <= $%d", *q.To)
	}
	if q.MinTotal != nil {
		add("s.total >= $%d", *q.MinTotal)
	}
	if q.MaxTotal != nil {
		add("s.total <= $%d", *q.MaxTotal)
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(s.sale_number ILIKE $%[1]d OR u.name ILIKE $%[1]d OR u.lastname ILIKE $%[1]d
			OR c.name ILIKE $%[1]d OR c.ruc ILIKE $%[1]d)`, n))
	}
	return strings.Join(conds, " AND "), args
}

// CashRegister loads a register session with its people and transactions.
func (r *PostgresRepository) CashRegister(ctx context.Context, id string) (CashRegister, error) {
	var (
		reg                                        CashRegister
		checkoutID, checkoutName                   *string
		openedID, openedName, openedLast, openedEm *string
		closedID, closedName, closedLast, closedEm *string
		status                                     string
		finalCash                                  decimal.NullDecimal
		totals                                     [6]decimal.NullDecimal
	)
	err := r.pool.QueryRow(ctx, `SELECT r.id::text, r.status, r.initial_cash, r.final_cash, r.opening_notes, r.closing_notes,
			r.opened_at, r.closed_at,
			r.total_sales, r.total_cash, r.total_card, r.total_other, r.expected_cash, r.cash_difference,
			k.id::text, k.name,
			o.id::text, o.name, o.lastname, o.email,
			c.id::text, c.name, c.lastname, c.email
		FROM cash_registers r
		LEFT JOIN checkouts k ON k.id = r.checkout_id
		LEFT JOIN users o ON o.id = r.opened_by_id
		LEFT JOIN users c ON c.id = r.closed_by_id
		WHERE r.id::text = $1`, id).Scan(
		&reg.ID, &status, &reg.InitialCash, &finalCash, &reg.OpeningNotes, &reg.ClosingNotes,
		&reg.OpenedAt, &reg.ClosedAt,
		&totals[0], &totals[1], &totals[2], &totals[3], &totals[4], &totals[5],
		&checkoutID, &checkoutName,
		&openedID, &openedName, &openedLast, &openedEm,
		&closedID, &closedName, &closedLast, &closedEm,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return CashRegister{}, fmt.Errorf("cash register %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return CashRegister{}, err
	}
	reg.Status = RegisterStatus(status)
	if finalCash.Valid {
		v := finalCash.Decimal
		reg.FinalCash = &v
	}
	if totals[0].Valid {
		reg.Totals = &RegisterTotals{
			TotalSales:     totals[0].Decimal,
			TotalCash:      totals[1].Decimal,
			TotalCard:      totals[2].Decimal,
			TotalOther:     totals[3].Decimal,
			ExpectedCash:   totals[4].Decimal,
			CashDifference: totals[5].Decimal,
		}
	}
	if checkoutID != nil {
		reg.CheckoutID = *checkoutID
		reg.Checkout = &Checkout{ID: *checkoutID, Name: deref(checkoutName)}
	}
	if openedID != nil {
		reg.OpenedBy = &User{ID: *openedID, Name: deref(openedName), Lastname: deref(openedLast), Email: deref(openedEm)}
	}
	if closedID != nil {
		reg.ClosedBy = &User{ID: *closedID, Name: deref(closedName), Lastname: deref(closedLast), Email: deref(closedEm)}
	}

	rows, err := r.pool.Query(ctx, `SELECT id::text, payment_method, movement, amount, description, voucher_identifier, created_at
		FROM cash_register_transactions WHERE cash_register_id::text = $1 ORDER BY created_at`, id)
	if err != nil {
		return CashRegister{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			tx               Transaction
			method, movement string
		)
		if err := rows.Scan(&tx.ID, &method, &movement, &tx.Amount, &tx.Description, &tx.VoucherIdentifier, &tx.CreatedAt); err != nil {
			return CashRegister{}, err
		}
		tx.PaymentMethod = PaymentMethod(method)
		tx.Movement = Movement(movement)
		reg.Transactions = append(reg.Transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return CashRegister{}, err
	}
	return reg, nil
}

// UserByID loads a single user.
func (r *PostgresRepository) UserByID(ctx context.Context, id string) (User, error) {
	var (
		u     User
		email *string
	)
	err := r.pool.QueryRow(ctx, `SELECT id::text, name, lastname, email FROM users WHERE id::text = $1 AND deleted_at IS NULL`, id).
		Scan(&u.ID, &u.Name, &u.Lastname, &email)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("user %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return User{}, err
	}
	u.Email = deref(email)
	return u, nil
}

func scanSale(row pgx.Row) (Sale, error) {
	var (
		s                              Sale
		status                         string
		checkoutID, userID, customerID *string
		uID, uName, uLast, uEmail      *string
		cID, cName, cRUC, kID, kName   *string
	)
	if err := row.Scan(&s.ID, &s.SaleNumber, &status, &s.Subtotal, &s.Tax, &s.Discount, &s.Total, &s.Notes,
		&checkoutID, &userID, &customerID, &s.CreatedAt, &s.DeletedAt,
		&uID, &uName, &uLast, &uEmail,
		&cID, &cName, &cRUC,
		&kID, &kName); err != nil {
		return Sale{}, err
	}
	s.Status = SaleStatus(status)
	s.CheckoutID = deref(checkoutID)
	s.UserID = deref(userID)
	s.CustomerID = deref(customerID)
	if uID != nil {
		s.User = &User{ID: *uID, Name: deref(uName), Lastname: deref(uLast), Email: deref(uEmail)}
	}
	if cID != nil {
		s.Customer = &Customer{ID: *cID, Name: deref(cName), RUC: deref(cRUC)}
	}
	if kID != nil {
		s.Checkout = &Checkout{ID: *kID, Name: deref(kName)}
	}
	return s, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
