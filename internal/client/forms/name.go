package forms

import (
	"strings"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
)

const (
	MsgNameMissing = "Name is required"
	MsgNameShort   = "Name must be at least 2 characters long"
)

// ParseName returns the trimmed name.
func ParseName(value string) (string, error) {
	name := strings.TrimSpace(value)
	if name == "" {
		return "", models.NewValidationError(FieldName, MsgNameMissing)
	}
	if len([]rune(name)) < 2 {
		return "", models.NewValidationError(FieldName, MsgNameShort)
	}
	return name, nil
}
