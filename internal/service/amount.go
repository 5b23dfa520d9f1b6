package service

import (
	"regexp"
	"strconv"
)

var amountJunk = regexp.MustCompile(`[$€£¥,\s]`)

// NormalizeAmount parses a human-formatted monetary string ("$1,250.00",
// "€890") into a numeric value. Values that do not parse after cleaning,
// such as "TBD", yield nil: a missing amount is not an error.
func NormalizeAmount(raw string) *float64 {
	cleaned := amountJunk.ReplaceAllString(raw, "")
	if cleaned == "" {
		return nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}
