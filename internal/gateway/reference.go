package gateway

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	referencePrefix   = "MAMACARE"
	referenceAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	referenceSuffix   = 9
)

// NewReference builds the idempotency key sent with a checkout,
// MAMACARE_<unix millis>_<9 random characters>.
func NewReference(now time.Time) (string, error) {
	limit := big.NewInt(int64(len(referenceAlphabet)))
	suffix := make([]byte, referenceSuffix)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate reference: %w", err)
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s_%d_%s", referencePrefix, now.UnixMilli(), suffix), nil
}
