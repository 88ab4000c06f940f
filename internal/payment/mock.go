package payment

import (
	"fmt"
	"strings"
	"time"
)

// MockAuthorize approves a card when its number, spaces removed, starts with 4.
func MockAuthorize(cardNumber string) bool {
	return strings.HasPrefix(strings.ReplaceAll(cardNumber, " ", ""), "4")
}

// MockIntentID builds the synthetic intent id recorded for a mock charge.
func MockIntentID(orderID int64, at time.Time) string {
	return fmt.Sprintf("mock_pi_%d_%d", orderID, at.Unix())
}
