package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/carelinkvn/carelink-backend/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks the basic shape of an email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return fmt.Errorf("email is not valid")
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// ValidateBookingWindows checks each window has a start strictly before its end.
func ValidateBookingWindows(windows []models.BookingWindow) error {
	if len(windows) == 0 {
		return fmt.Errorf("at least one booking window is required")
	}
	for i, w := range windows {
		if w.StartTime.IsZero() || w.EndTime.IsZero() {
			return fmt.Errorf("booking window %d is missing start or end time", i)
		}
		if !w.StartTime.Before(w.EndTime) {
			return fmt.Errorf("booking window %d has start time after end time", i)
		}
	}
	return nil
}
