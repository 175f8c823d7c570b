package formulas

import "github.com/shopspring/decimal"

// Round rounds half away from zero to the given number of decimal places
func Round(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// RoundPtr rounds the pointed-to value, preserving nil
func RoundPtr(value *float64, places int32) *float64 {
	if value == nil {
		return nil
	}
	r := Round(*value, places)
	return &r
}
