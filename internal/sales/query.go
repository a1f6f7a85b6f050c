package sales

import (
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort orders a listing by a single field.
type Sort struct {
	Field     Field
	Direction Direction
}

// DefaultSort returns the listing order used when none is requested: newest
// first.
func DefaultSort() Sort {
	return Sort{Field: FieldDate, Direction: Desc}
}

func (s Sort) String() string {
	return string(s.Field) + ":" + string(s.Direction)
}

// Query is the validated form of a listing request: which records match,
// in what order, and which window of them to return.
type Query struct {
	Filter Predicate
	Sort   Sort
	Page   int
	Limit  int
}

// Offset is the number of matching records that precede the requested page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// listParams maps comma-separated request parameters onto the field each one
// constrains, in the order predicates are emitted.
var listParams = []struct {
	param string
	field Field
}{
	{"regions", FieldCustomerRegion},
	{"genders", FieldGender},
	{"categories", FieldProductCategory},
	{"paymentMethods", FieldPaymentMethod},
	{"tags", FieldTags},
}

// BuildQuery translates request parameters into a Query. Absent or empty
// parameters add no constraint. Malformed values fail with a
// *ValidationError naming the first offending parameter.
func BuildQuery(params url.Values) (Query, error) {
	var preds []Predicate

	if search := strings.TrimSpace(params.Get("search")); search != "" {
		preds = append(preds, Or{Predicates: []Predicate{
			SubstringMatch{Field: FieldCustomerName, Substring: search},
			SubstringMatch{Field: FieldPhoneNumber, Substring: search},
		}})
	}

	for _, lp := range listParams {
		if values := splitList(params.Get(lp.param)); len(values) > 0 {
			preds = append(preds, InSet{Field: lp.field, Values: values})
		}
	}

	age, err := ageRange(params.Get("minAge"), params.Get("maxAge"))
	if err != nil {
		return Query{}, err
	}
	if age != nil {
		preds = append(preds, *age)
	}

	dates, err := dateRange(params.Get("startDate"), params.Get("endDate"))
	if err != nil {
		return Query{}, err
	}
	if dates != nil {
		preds = append(preds, *dates)
	}

	if expr := strings.TrimSpace(params.Get("filter")); expr != "" {
		p, err := ParseFilter(expr)
		if err != nil {
			return Query{}, err
		}
		preds = append(preds, p)
	}

	sort, err := parseSort(params.Get("sortBy"), params.Get("sortOrder"))
	if err != nil {
		return Query{}, err
	}

	page, err := positiveInt("page", params.Get("page"), 1)
	if err != nil {
		return Query{}, err
	}
	limit, err := positiveInt("limit", params.Get("limit"), DefaultLimit)
	if err != nil {
		return Query{}, err
	}
	if limit > MaxLimit {
		return Query{}, invalid("limit", "must be at most %d", MaxLimit)
	}
	if page-1 > math.MaxInt/limit {
		return Query{}, invalid("page", "must be at most %d for limit %d", math.MaxInt/limit+1, limit)
	}

	return Query{
		Filter: And{Predicates: preds},
		Sort:   sort,
		Page:   page,
		Limit:  limit,
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || slices.Contains(out, tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func ageRange(rawMin, rawMax string) (*Range, error) {
	rawMin, rawMax = strings.TrimSpace(rawMin), strings.TrimSpace(rawMax)
	if rawMin == "" && rawMax == "" {
		return nil, nil
	}
	r := Range{Field: FieldAge}
	var lo, hi int64
	if rawMin != "" {
		v, err := nonNegativeInt("minAge", rawMin)
		if err != nil {
			return nil, err
		}
		lo, r.Min = v, v
	}
	if rawMax != "" {
		v, err := nonNegativeInt("maxAge", rawMax)
		if err != nil {
			return nil, err
		}
		hi, r.Max = v, v
	}
	if r.Min != nil && r.Max != nil && lo > hi {
		return nil, invalid("minAge", "must not exceed maxAge")
	}
	return &r, nil
}

func nonNegativeInt(field, raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalid(field, "%q is not an integer", raw)
	}
	if v < 0 {
		return 0, invalid(field, "must not be negative")
	}
	return v, nil
}

func dateRange(rawStart, rawEnd string) (*Range, error) {
	rawStart, rawEnd = strings.TrimSpace(rawStart), strings.TrimSpace(rawEnd)
	if rawStart == "" && rawEnd == "" {
		return nil, nil
	}
	r := Range{Field: FieldDate}
	var start, end time.Time
	if rawStart != "" {
		t, _, err := parseDate("startDate", rawStart)
		if err != nil {
			return nil, err
		}
		start, r.Min = t, t
	}
	if rawEnd != "" {
		t, dateOnly, err := parseDate("endDate", rawEnd)
		if err != nil {
			return nil, err
		}
		if dateOnly {
			// A bare date includes the whole day.
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		end, r.Max = t, t
	}
	if r.Min != nil && r.Max != nil && start.After(end) {
		return nil, invalid("startDate", "must not be after endDate")
	}
	return &r, nil
}

// parseDate accepts YYYY-MM-DD (UTC) or RFC 3339 and reports which one it got.
func parseDate(field, raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, invalid(field, "%q is not a date (want YYYY-MM-DD or RFC 3339)", raw)
	}
	return t.UTC(), false, nil
}

func parseSort(rawField, rawOrder string) (Sort, error) {
	sort := DefaultSort()
	if f := strings.TrimSpace(rawField); f != "" {
		field := Field(f)
		if !field.Sortable() {
			return Sort{}, invalid("sortBy", "cannot sort by %q", f)
		}
		sort.Field = field
	}
	if strings.EqualFold(strings.TrimSpace(rawOrder), string(Asc)) {
		sort.Direction = Asc
	} else {
		sort.Direction = Desc
	}
	return sort, nil
}

func positiveInt(field, raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid(field, "%q is not an integer", raw)
	}
	if v < 1 {
		return 0, invalid(field, "must be at least 1")
	}
	return v, nil
}
