// Package validation содержит функции валидации входных данных.
package validation

import (
	"strings"

	"github.com/mmeshcher/vinayak-store/internal/model"
)

// ShippingError перечисляет незаполненные и некорректные поля адреса доставки.
type ShippingError struct {
	Missing []string
	Invalid []string
}

func (e *ShippingError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

// NormalizePhone возвращает десять цифр мобильного номера.
// Допускаются разделители и префиксы 91, +91 и 0.
func NormalizePhone(phone string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			b.WriteByte(phone[i])
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		digits = digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		digits = digits[1:]
	}

	if len(digits) != 10 {
		return "", false
	}
	return digits, true
}

// IsValidPIN проверяет шестизначный почтовый индекс. Индекс не начинается с нуля.
func IsValidPIN(zip string) bool {
	zip = strings.TrimSpace(zip)
	if len(zip) != 6 || zip[0] == '0' {
		return false
	}
	for i := 0; i < len(zip); i++ {
		if zip[i] < '0' || zip[i] > '9' {
			return false
		}
	}
	return true
}

// ValidateShipping проверяет адрес доставки и возвращает *ShippingError со всеми найденными проблемами.
func ValidateShipping(d model.ShippingDetails) error {
	e := &ShippingError{}

	required := []struct {
		name  string
		value string
	}{
		{"name", d.Name},
		{"phone", d.Phone},
		{"address", d.Address},
		{"city", d.City},
		{"zip", d.Zip},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			e.Missing = append(e.Missing, f.name)
		}
	}

	if strings.TrimSpace(d.Phone) != "" {
		if _, ok := NormalizePhone(d.Phone); !ok {
			e.Invalid = append(e.Invalid, "phone")
		}
	}
	if strings.TrimSpace(d.Zip) != "" && !IsValidPIN(d.Zip) {
		e.Invalid = append(e.Invalid, "zip")
	}

	if len(e.Missing) == 0 && len(e.Invalid) == 0 {
		return nil
	}
	return e
}
