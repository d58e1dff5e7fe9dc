package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newReferenceID generates the user-visible transaction reference,
// e.g. TXN1735689600000A1B2C3.
func newReferenceID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("TXN%d%s", time.Now().UnixMilli(), suffix)
}
