// Package parser provides the worksheet XML codec.
package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// CoordsToRef translates 1-based row and column indexes into an "A1"-style
// cell reference. Indexes below one are rejected; worksheets have no row or
// column zero.
func CoordsToRef(row, col int) (string, error) {
	if row < 1 || col < 1 {
		return "", fmt.Errorf("cell coordinates are 1-based, got row %d col %d", row, col)
	}
	ref := ""
	for col > 0 {
		col--
		ref = string(rune('A'+col%26)) + ref
		col /= 26
	}
	return ref + strconv.Itoa(row), nil
}

// RefToCoords translates an "A1"-style cell reference into 1-based row and
// column indexes.
func RefToCoords(ref string) (row, col int, err error) {
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		col = col*26 + int(ref[i]-'A') + 1
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, fmt.Errorf("malformed cell reference %q", ref)
	}
	row, err = strconv.Atoi(ref[i:])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("malformed cell reference %q", ref)
	}
	return row, col, nil
}

// RangeEnd returns the last cell of a range reference such as "A1:C5".
// A bare cell reference is its own end point.
func RangeEnd(ref string) string {
	if i := strings.LastIndexByte(ref, ':'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// ParseValue attempts to parse a raw cell value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func ParseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// FormatValue renders a cell value as worksheet XML text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}
