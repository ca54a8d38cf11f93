package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber builds a human-readable, globally unique order reference,
// e.g. ORD1756380000000A1B2C3D4.
func NewOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD%d%s", time.Now().UnixMilli(), suffix)
}

// Actor names a user in audit trails.
func Actor(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}
