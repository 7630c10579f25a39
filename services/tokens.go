package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	otpCodeLength         = 6
	invitationTokenLength = 32

	digitAlphabet        = "0123456789"
	alphanumericAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateOTPCode возвращает 6-значный код входа.
func GenerateOTPCode() (string, error) {
	return randomString(otpCodeLength, digitAlphabet)
}

// GenerateInvitationToken возвращает 32-символьный алфавитно-цифровой токен приглашения.
func GenerateInvitationToken() (string, error) {
	return randomString(invitationTokenLength, alphanumericAlphabet)
}

// randomString выбирает каждый символ равномерно из alphabet (rand.Int без смещения по модулю).
func randomString(length int, alphabet string) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
