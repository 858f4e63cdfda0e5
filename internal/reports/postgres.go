package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository runs the staged report queries in SQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// NewPostgresRepository constructs a repository grouping days in loc.
func NewPostgresRepository(pool *pgxpool.Pool, loc *time.Location) *PostgresRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &PostgresRepository{pool: pool, loc: loc}
}

// AggregateDaily groups matching sales by local calendar day.
func (r *PostgresRepository) AggregateDaily(ctx context.Context, p Predicate) ([]DailyAggregate, error) {
	args := []any{r.loc.String()}
	where, args := p.sqlWhere("s", args)
	rows, err := r.pool.Query(ctx, `SELECT
			EXTRACT(YEAR FROM s.created_at AT TIME ZONE $1)::int AS y,
			EXTRACT(MONTH FROM s.created_at AT TIME ZONE $1)::int AS m,
			EXTRACT(DAY FROM s.created_at AT TIME ZONE $1)::int AS d,
			COALESCE(SUM(s.total), 0), COALESCE(SUM(s.subtotal), 0),
			COALESCE(SUM(s.tax), 0), COALESCE(SUM(s.discount), 0),
			COUNT(*)
		FROM sales s
		WHERE `+where+`
		GROUP BY y, m, d
		ORDER BY y, m, d`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailyAggregate
	for rows.Next() {
		var a DailyAggregate
		if err := rows.Scan(&a.Year, &a.Month, &a.Day, &a.Total, &a.Subtotal, &a.Tax, &a.Discount, &a.Count); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AggregateProducts groups live line items of matching sales by product.
// Items whose product record is gone still count, with no name or barcode.
func (r *PostgresRepository) AggregateProducts(ctx context.Context, p Predicate, limit int) ([]ProductAggregate, error) {
	where, args := p.sqlWhere("s", nil)
	where = "si.deleted_at IS NULL AND " + where
	if p.ProductID != "" {
		args = append(args, p.ProductID)
		where += fmt.Sprintf(" AND si.product_id::text = $%d", len(args))
	}
	args = append(args, limit)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT si.product_id::text, MIN(pr.name), MIN(pr.barcode),
			COALESCE(SUM(si.quantity), 0), COALESCE(SUM(si.total), 0), COALESCE(AVG(si.unit_price), 0),
			MAX(s.created_at)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		LEFT JOIN products pr ON pr.id = si.product_id
		WHERE %s
		GROUP BY si.product_id
		ORDER BY 5 DESC, 1
		LIMIT $%d`, where, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ProductAggregate
	for rows.Next() {
		var a ProductAggregate
		if err := rows.Scan(&a.ProductID, &a.Name, &a.Barcode, &a.Quantity, &a.Total, &a.AvgUnitPrice, &a.LastSaleAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AggregateUsers groups matching sales by cashier. Sales without a user
// record are excluded by the inner join.
func (r *PostgresRepository) AggregateUsers(ctx context.Context, p Predicate, limit int) ([]UserAggregate, error) {
	where, args := p.sqlWhere("s", nil)
	args = append(args, limit)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT u.id::text, MIN(u.name), MIN(u.lastname), MIN(u.email),
			COALESCE(SUM(s.total), 0), COUNT(*), MAX(s.created_at)
		FROM sales s
		JOIN users u ON u.id = s.user_id
		WHERE %s
		GROUP BY u.id
		ORDER BY 5 DESC, 1
		LIMIT $%d`, where, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []UserAggregate
	for rows.Next() {
		var a UserAggregate
		if err := rows.Scan(&a.UserID, &a.Name, &a.Lastname, &a.Email, &a.Total, &a.Count, &a.LastSaleAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
