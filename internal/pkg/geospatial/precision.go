package geospatial

import "github.com/shopspring/decimal"

// RequiredDecimals is the number of fractional digits every exported
// coordinate component carries.
const RequiredDecimals = 6

// Round rounds v to places fractional digits, half away from zero. The
// rounding works on the shortest decimal representation of v, so 0.1234565
// becomes 0.123457 even though its binary value is slightly below the tie.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// RoundCoordinate rounds a component to RequiredDecimals digits.
func RoundCoordinate(v float64) float64 {
	return Round(v, RequiredDecimals)
}

// FractionalDigits counts the digits after the decimal point in the
// shortest representation of v. Integers and values like 1.5e3 report 0.
func FractionalDigits(v float64) int {
	exp := decimal.NewFromFloat(v).Exponent()
	if exp >= 0 {
		return 0
	}
	return int(-exp)
}
