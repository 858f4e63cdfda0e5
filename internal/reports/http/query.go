package reporthttp

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/reports"
)

const dateLayout = "2006-01-02"

type filterQuery struct {
	From       string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	CheckoutID string `query:"checkoutId" validate:"omitempty,uuid"`
	UserID     string `query:"userId" validate:"omitempty,uuid"`
	CustomerID string `query:"customerId" validate:"omitempty,uuid"`
	ProductID  string `query:"productId" validate:"omitempty,uuid"`
	Limit      string `query:"limit" validate:"omitempty,numeric"`
}

type periodQuery struct {
	Year  string `query:"year" validate:"required,number"`
	Month string `query:"month" validate:"required,number"`
}

// Parser reads report filters from query strings. Dates are calendar days
// in the business time zone.
type Parser struct {
	validate *validator.Validate
	loc      *time.Location
}

// NewParser builds a parser for loc.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}
		return f.Name
	})
	return &Parser{validate: v, loc: loc}
}

// Location returns the parser time zone.
func (p *Parser) Location() *time.Location { return p.loc }

// Struct validates v and reports the offending query parameters.
func (p *Parser) Struct(v any) error {
	err := p.validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("%w: parámetros inválidos: %s", httpx.ErrValidation, strings.Join(fields, ", "))
}

// Filters parses the shared report filters.
func (p *Parser) Filters(r *http.Request) (reports.FilterSet, error) {
	q := r.URL.Query()
	raw := filterQuery{
		From:       strings.TrimSpace(q.Get("from")),
		To:         strings.TrimSpace(q.Get("to")),
		CheckoutID: strings.TrimSpace(q.Get("checkoutId")),
		UserID:     strings.TrimSpace(q.Get("userId")),
		CustomerID: strings.TrimSpace(q.Get("customerId")),
		ProductID:  strings.TrimSpace(q.Get("productId")),
		Limit:      strings.TrimSpace(q.Get("limit")),
	}
	if err := p.Struct(raw); err != nil {
		return reports.FilterSet{}, err
	}
	f := reports.FilterSet{
		Statuses:   q["status"],
		CheckoutID: raw.CheckoutID,
		UserID:     raw.UserID,
		CustomerID: raw.CustomerID,
		ProductID:  raw.ProductID,
	}
	var err error
	if f.From, err = p.Date(raw.From); err != nil {
		return reports.FilterSet{}, err
	}
	if f.To, err = p.Date(raw.To); err != nil {
		return reports.FilterSet{}, err
	}
	if raw.Limit != "" {
		limit, err := strconv.Atoi(raw.Limit)
		if err != nil {
			return reports.FilterSet{}, fmt.Errorf("%w: parámetros inválidos: limit", httpx.ErrValidation)
		}
		f.Limit = &limit
	}
	return f, nil
}

// Date parses a YYYY-MM-DD value; empty input yields nil.
func (p *Parser) Date(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, p.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha inválida %q", httpx.ErrValidation, v)
	}
	return &t, nil
}

// Period parses the required year and month. Range checks belong to the
// report service.
func (p *Parser) Period(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	raw := periodQuery{Year: strings.TrimSpace(q.Get("year")), Month: strings.TrimSpace(q.Get("month"))}
	if err := p.Struct(raw); err != nil {
		return 0, 0, err
	}
	year, err := strconv.Atoi(raw.Year)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: parámetros inválidos: year", httpx.ErrValidation)
	}
	month, err := strconv.Atoi(raw.Month)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: parámetros inválidos: month", httpx.ErrValidation)
	}
	return year, month, nil
}
