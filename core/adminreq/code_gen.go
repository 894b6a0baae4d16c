package adminreq

import (
	"crypto/rand"

	"github.com/pkg/errors"
)

const codeLen = 6

var codeChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// generateCode produces a short uppercase alphanumeric validation code.
// Uniqueness across outstanding requests is not enforced; only the code stored
// on the request it was generated for is ever accepted.
func generateCode() (string, error) {
	buf := make([]byte, codeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}
	for i, b := range buf {
		buf[i] = codeChars[int(b)%len(codeChars)]
	}
	return string(buf), nil
}
