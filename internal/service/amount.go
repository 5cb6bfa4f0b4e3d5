package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/zanledger/server/internal/apperrors"
)

// digitFolder maps Persian and Arabic-Indic digits to ASCII and drops
// thousands separators
var digitFolder = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	",", "", "٬", "", "،", "", " ", "", "_", "",
)

// NormalizeDigits folds Persian/Arabic digits to ASCII and strips separators
func NormalizeDigits(s string) string {
	return digitFolder.Replace(strings.TrimSpace(s))
}

// ParseAmount parses a whole, positive toman amount
func ParseAmount(s string) (int64, error) {
	normalized := NormalizeDigits(s)
	if normalized == "" {
		return 0, apperrors.Validation("amount is required")
	}

	amount, err := strconv.ParseInt(normalized, 10, 64)
	if err != nil {
		return 0, apperrors.Validation("amount %q is not a whole number", s)
	}
	if amount <= 0 {
		return 0, apperrors.Validation("amount must be greater than zero")
	}
	return amount, nil
}

// parseOptionalAmount treats a blank value as zero
func parseOptionalAmount(s string) (int64, error) {
	if NormalizeDigits(s) == "" {
		return 0, nil
	}
	return ParseAmount(s)
}

var receiptDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseReceiptDate accepts RFC 3339 timestamps, datetime-local values and plain dates
func ParseReceiptDate(s string) (time.Time, error) {
	s = NormalizeDigits(s)
	for _, layout := range receiptDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperrors.Validation("receipt date %q is not a valid date", s)
}
