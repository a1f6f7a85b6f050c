package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	s := testSale(1)
	s.Tags = []string{"organic", "skincare"}
	s.FinalAmount = decimal.NewFromInt(270)

	tests := []struct {
		name string
		p    Predicate
		want bool
	}{
		{"empty and", And{}, true},
		{"empty or", Or{}, false},
		{"equals string", Equals{Field: FieldGender, Value: "Female"}, true},
		{"equals string mismatch", Equals{Field: FieldGender, Value: "Male"}, false},
		{"equals int", Equals{Field: FieldAge, Value: int64(25)}, true},
		{"equals list element", Equals{Field: FieldTags, Value: "skincare"}, true},
		{"in set", InSet{Field: FieldCustomerRegion, Values: []string{"South", "North"}}, true},
		{"in set miss", InSet{Field: FieldCustomerRegion, Values: []string{"South"}}, false},
		{"tags intersect", InSet{Field: FieldTags, Values: []string{"cotton", "organic"}}, true},
		{"tags disjoint", InSet{Field: FieldTags, Values: []string{"cotton"}}, false},
		{"range decimal", Range{Field: FieldFinalAmount, Min: decimal.NewFromInt(270), Max: decimal.NewFromInt(300)}, true},
		{"range decimal below", Range{Field: FieldFinalAmount, Min: decimal.NewFromFloat(270.01)}, false},
		{"range open max", Range{Field: FieldAge, Max: int64(25)}, true},
		{"substring", SubstringMatch{Field: FieldCustomerName, Substring: "YADAV"}, true},
		{"substring miss", SubstringMatch{Field: FieldCustomerName, Substring: "n.ha"}, false},
		{"or", Or{Predicates: []Predicate{
			Equals{Field: FieldGender, Value: "Male"},
			Equals{Field: FieldGender, Value: "Female"},
		}}, true},
		{"and short-circuits on miss", And{Predicates: []Predicate{
			Equals{Field: FieldGender, Value: "Female"},
			Equals{Field: FieldBrand, Value: "Other"},
		}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.p, s))
		})
	}
}

func TestPredicateString(t *testing.T) {
	p := And{Predicates: []Predicate{
		Or{Predicates: []Predicate{
			SubstringMatch{Field: FieldCustomerName, Substring: "a.b"},
			SubstringMatch{Field: FieldPhoneNumber, Substring: "a.b"},
		}},
		InSet{Field: FieldGender, Values: []string{"Male", "Female"}},
		Range{Field: FieldAge, Min: int64(18)},
	}}

	assert.Equal(t,
		`((customerName contains "a.b" OR phoneNumber contains "a.b") AND gender in ["Male" "Female"] AND age in [18, *])`,
		p.String(),
	)
	assert.Equal(t, "true", And{}.String())
}
