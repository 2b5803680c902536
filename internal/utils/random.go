package utils

import "crypto/rand"

// Invite codes avoid ambiguous characters (0/O, 1/l/I).
const inviteAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// InviteCodeLength is the length of generated project invite codes.
const InviteCodeLength = 8

// GenerateInviteCode returns a short random code suitable for shareable
// project invite links. Uniqueness is enforced by the database; callers
// regenerate on collision.
func GenerateInviteCode() (string, error) {
	buf := make([]byte, InviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}
