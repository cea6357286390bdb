package handlers

import (
	"crypto/rand"
	"math/big"
)

// secretCodeAlphabet avoids characters customers confuse when reading a code
// off a document (0/O, 1/I/L).
const secretCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const secretCodeLength = 10

// newSecretCode issues the opaque tracking token. crypto/rand, not a
// timestamp: the code is the only thing gating access to the order.
func newSecretCode() (string, error) {
	max := big.NewInt(int64(len(secretCodeAlphabet)))

	code := make([]byte, secretCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = secretCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
