package customize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmeshcher/vinayak-store/internal/model"
)

// BookingDateLayout задаёт формат даты записи.
const BookingDateLayout = "2006-01-02"

var (
	// ErrBookingInPast возвращается, если дата записи раньше текущей.
	ErrBookingInPast = errors.New("booking date is in the past")
	// ErrBookingDate возвращается, если дату записи не удаётся разобрать.
	ErrBookingDate = errors.New("booking date must be YYYY-MM-DD")
)

// ValidationError перечисляет незаполненные обязательные поля.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// ValidateBooking проверяет, что дата, время и место заполнены и дата не раньше today.
func ValidateBooking(b *model.BookingDetails, today time.Time) error {
	if b == nil {
		return &ValidationError{Fields: []string{"date", "time", "venue"}}
	}

	var missing []string
	if strings.TrimSpace(b.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(b.Time) == "" {
		missing = append(missing, "time")
	}
	if strings.TrimSpace(b.Venue) == "" {
		missing = append(missing, "venue")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}

	date, err := time.ParseInLocation(BookingDateLayout, strings.TrimSpace(b.Date), today.Location())
	if err != nil {
		return fmt.Errorf("%w: %q", ErrBookingDate, b.Date)
	}

	y, m, d := today.Date()
	if date.Before(time.Date(y, m, d, 0, 0, 0, 0, today.Location())) {
		return fmt.Errorf("%w: %s", ErrBookingInPast, b.Date)
	}

	return nil
}
