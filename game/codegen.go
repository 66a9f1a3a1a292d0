package game

import (
	"crypto/rand"
	"strings"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// newRoomCode draws 6-character uppercase alphanumeric codes until one does
// not collide with an active room. Codes of removed rooms may be reused.
func newRoomCode(taken map[string]string) string {
	for {
		code := randomCode()
		if _, exists := taken[code]; !exists {
			return code
		}
	}
}

func randomCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
