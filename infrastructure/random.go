package infrastructure

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

const codeCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateVerificationCode() string {
	return GenerateRandomString(8)
}

func GenerateRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			b[i] = codeCharset[0]
			continue
		}
		b[i] = codeCharset[n.Int64()]
	}
	return string(b)
}

func GenerateRefreshToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return GenerateRandomString(43)
	}
	return base64.URLEncoding.EncodeToString(buf)
}
