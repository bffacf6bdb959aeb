package pkg

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RoomCodeLen - room codes are always 6 uppercase alphanumerics.
const RoomCodeLen = 6

// GenerateRoomCode - generates a random room code. Uniqueness against active
// rooms is the caller's job.
func GenerateRoomCode() string {
	code := make([]byte, RoomCodeLen)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomCodeAlphabet))))
		if err != nil {
			code[i] = roomCodeAlphabet[0]
			continue
		}

		code[i] = roomCodeAlphabet[n.Int64()]
	}

	return string(code)
}

// GenerateNewSessionID - generates a new unique sessionID.
func GenerateNewSessionID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "error-generating-session-id"
	}

	return base64.RawURLEncoding.EncodeToString(b)
}
