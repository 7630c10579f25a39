package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Стоимость bcrypt для одноразовых кодов: код живет 15 минут, поэтому выше не нужно.
const BcryptCost = bcrypt.DefaultCost

func HashCode(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	return string(bytes), err
}

func CheckCodeHash(code, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	return err == nil
}

// NormalizeEmail обрезает пробелы и приводит адрес к нижнему регистру.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeSlug приводит slug к нижнему регистру без внешних пробелов.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// TrimToNil возвращает nil для пустой строки.
func TrimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
