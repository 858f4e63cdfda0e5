package reports

// LimitPolicy bounds the number of rows a ranked report returns.
type LimitPolicy struct {
	Default int
	Max     int
}

var (
	ProductLimit = LimitPolicy{Default: 50, Max: 500}
	UserLimit    = LimitPolicy{Default: 25, Max: 200}
)

// Sanitize clamps limit to [1, Max], using Default when limit is nil.
func (p LimitPolicy) Sanitize(limit *int) int {
	if limit == nil {
		return p.Default
	}
	v := *limit
	if v > p.Max {
		v = p.Max
	}
	if v < 1 {
		v = 1
	}
	return v
}
