package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Charset omits 0/O, 1/I/L to keep the numbers readable over the phone.
const referenceCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func generateRandom(length int, charset string) string {
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(charset)))

	for i := range result {
		num, _ := rand.Int(rand.Reader, charsetLength)
		result[i] = charset[num.Int64()]
	}

	return string(result)
}

// GenerateOfferNumber returns a human-readable offer id, e.g. RP-4X8K2M9Q.
func GenerateOfferNumber() string {
	return fmt.Sprintf("%s-%s", OfferNumberPrefix, generateRandom(8, referenceCharset))
}

// GenerateBookingNumber returns a human-readable booking id, e.g. BK-7P3N5R2T.
func GenerateBookingNumber() string {
	return fmt.Sprintf("%s-%s", BookingNumberPrefix, generateRandom(8, referenceCharset))
}
