// Package format renders money, quantities, dates and labels for printed
// documents. A Formatter is built once at startup and shared read-only.
package format

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/odyssey-pos/internal/pos"
)

// Config describes locale rules. Zero fields fall back to DefaultConfig.
type Config struct {
	Locale         string            `yaml:"locale"`
	CurrencySymbol string            `yaml:"currency_symbol"`
	DateLayout     string            `yaml:"date_layout"`
	DateTimeLayout string            `yaml:"datetime_layout"`
	StatusLabels   map[string]string `yaml:"status_labels"`
	PaymentLabels  map[string]string `yaml:"payment_labels"`
	MonthNames     []string          `yaml:"month_names"`
}

// DefaultConfig is the Paraguayan guaraní setup.
func DefaultConfig() Config {
	return Config{
		Locale:         "es-PY",
		CurrencySymbol: "Gs.",
		DateLayout:     "02/01/2006",
		DateTimeLayout: "02/01/2006 15:04",
		StatusLabels: map[string]string{
			string(pos.StatusCompleted): "Completada",
			string(pos.StatusPending):   "Pendiente",
			string(pos.StatusCancelled): "Cancelada",
			string(pos.StatusRefunded):  "Reembolsada",
		},
		PaymentLabels: map[string]string{
			string(pos.PaymentCash):         "Efectivo",
			string(pos.PaymentDebitCard):    "Tarjeta débito",
			string(pos.PaymentCreditCard):   "Tarjeta crédito",
			string(pos.PaymentTigoMoney):    "Tigo Money",
			string(pos.PaymentPersonalPay):  "Personal Pay",
			string(pos.PaymentBankTransfer): "Transferencia bancaria",
			string(pos.PaymentQR):           "Pago QR",
			string(pos.PaymentCrypto):       "Cripto",
			string(pos.PaymentCheque):       "Cheque",
			string(pos.PaymentOther):        "Otro",
		},
		MonthNames: []string{"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio", "Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre"},
	}
}

// LoadConfig reads YAML overrides from path on top of DefaultConfig. An
// empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("format: read %s: %w", path, err)
	}
	var override Config
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return Config{}, fmt.Errorf("format: parse %s: %w", path, err)
	}
	return cfg.merge(override), nil
}

func (c Config) merge(o Config) Config {
	if o.Locale != "" {
		c.Locale = o.Locale
	}
	if o.CurrencySymbol != "" {
		c.CurrencySymbol = o.CurrencySymbol
	}
	if o.DateLayout != "" {
		c.DateLayout = o.DateLayout
	}
	if o.DateTimeLayout != "" {
		c.DateTimeLayout = o.DateTimeLayout
	}
	c.StatusLabels = mergeLabels(c.StatusLabels, o.StatusLabels)
	c.PaymentLabels = mergeLabels(c.PaymentLabels, o.PaymentLabels)
	if len(o.MonthNames) == 12 {
		c.MonthNames = o.MonthNames
	}
	return c
}

func mergeLabels(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Formatter is immutable after New.
type Formatter struct {
	cfg     Config
	printer *message.Printer
	loc     *time.Location
}

// New validates cfg and binds it to the business time zone.
func New(cfg Config, loc *time.Location) (*Formatter, error) {
	cfg = DefaultConfig().merge(cfg)
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("format: locale %q: %w", cfg.Locale, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{cfg: cfg, printer: message.NewPrinter(tag), loc: loc}, nil
}

// MustDefault returns a formatter with DefaultConfig in UTC.
func MustDefault() *Formatter {
	f, err := New(DefaultConfig(), time.UTC)
	if err != nil {
		panic(err)
	}
	return f
}

// Location is the zone dates are printed in.
func (f *Formatter) Location() *time.Location { return f.loc }

// Currency prints v rounded to whole units with locale grouping.
func (f *Formatter) Currency(v decimal.Decimal) string {
	rounded := v.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	digits := f.printer.Sprint(number.Decimal(rounded.IntPart(), number.MaxFractionDigits(0)))
	return sign + f.cfg.CurrencySymbol + " " + digits
}

// Quantity prints v with at most two decimals.
func (f *Formatter) Quantity(v decimal.Decimal) string {
	value, _ := v.Round(2).Float64()
	return f.printer.Sprint(number.Decimal(value, number.MinFractionDigits(0), number.MaxFractionDigits(2)))
}

// Integer prints a count with locale grouping.
func (f *Formatter) Integer(v int) string {
	return f.printer.Sprint(number.Decimal(v))
}

// Date prints the calendar day of t.
func (f *Formatter) Date(t time.Time) string {
	return t.In(f.loc).Format(f.cfg.DateLayout)
}

// DateTime prints t with hours and minutes.
func (f *Formatter) DateTime(t time.Time) string {
	return t.In(f.loc).Format(f.cfg.DateTimeLayout)
}

// OptionalDateTime prints t or a dash when absent.
func (f *Formatter) OptionalDateTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return f.DateTime(*t)
}

// Status returns the display label of s.
func (f *Formatter) Status(s pos.SaleStatus) string {
	if label, ok := f.cfg.StatusLabels[string(s)]; ok {
		return label
	}
	return string(s)
}

// PaymentMethod returns the display label of m.
func (f *Formatter) PaymentMethod(m pos.PaymentMethod) string {
	if label, ok := f.cfg.PaymentLabels[string(m)]; ok {
		return label
	}
	return string(m)
}

// Month returns the display name of m.
func (f *Formatter) Month(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return f.cfg.MonthNames[m-1]
}

// Timestamp renders t for file names: RFC 3339 in UTC with ':' replaced.
func Timestamp(t time.Time) string {
	return strings.ReplaceAll(t.UTC().Format("2006-01-02T15:04:05.000Z"), ":", "-")
}
