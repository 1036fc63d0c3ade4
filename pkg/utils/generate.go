package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ==================== UUID & TOKEN ====================

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// ==================== PNR ====================

// GeneratePNR creates a human readable booking reference.
// Format: PNR-YYYYMMDD-XXXXXXXX where X is random hex
func GeneratePNR(now time.Time) string {
	randomPart := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PNR-%s-%s", now.Format("20060102"), randomPart)
}
