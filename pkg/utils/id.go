package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random 32-char hex id (a UUID without dashes).
func NewID() string { return strings.ReplaceAll(uuid.NewString(), "-", "") }
