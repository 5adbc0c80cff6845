package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

func GenKSUID() string {
	return ksuid.New().String()
}

// GenOrderNumber keeps the TG_{user}_{millis} prefix support staff search by and appends a short
// random suffix so two requests in the same millisecond do not collide.
func GenOrderNumber(userID int64, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("TG_%d_%d_%s", userID, now.UnixMilli(), suffix)
}
