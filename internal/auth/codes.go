package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const codeDigits = 6

// CodeGenerator returns a fresh numeric verification code.
type CodeGenerator func() (string, error)

// RandomCode draws a uniformly random zero-padded 6 digit code.
func RandomCode() (string, error) {
	return randomDigits(codeDigits)
}

func randomDigits(digits int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
