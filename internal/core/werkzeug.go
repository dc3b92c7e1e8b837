// AngelaMos | 2026
// werkzeug.go

package core

import (
	"crypto/sha1" //nolint:gosec // G505: only verifies old stored hashes
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// Accounts created before the argon2id switch carry werkzeug hashes of the
// form "<method>$<salt>$<hex digest>", where method is
// "pbkdf2:<hash>:<iterations>" or "scrypt:<n>:<r>:<p>". They verify here
// and are upgraded on the next successful login.

const (
	maxPBKDF2Iterations = 10_000_000
	maxScryptMemory     = 256 << 20
	scryptKeyLen        = 64
)

func isWerkzeugHash(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "pbkdf2:") ||
		strings.HasPrefix(encodedHash, "scrypt:")
}

func verifyWerkzeug(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 3 || parts[1] == "" {
		return false, fmt.Errorf("%w: werkzeug layout", ErrInvalidHash)
	}
	method, salt := parts[0], []byte(parts[1])

	want, err := hex.DecodeString(parts[2])
	if err != nil || len(want) == 0 {
		return false, fmt.Errorf("%w: werkzeug digest", ErrInvalidHash)
	}

	var got []byte
	args := strings.Split(method, ":")
	switch args[0] {
	case "pbkdf2":
		got, err = werkzeugPBKDF2(password, salt, args[1:], len(want))
	case "scrypt":
		got, err = werkzeugScrypt(password, salt, args[1:], len(want))
	default:
		err = fmt.Errorf("%w: method %q", ErrInvalidHash, args[0])
	}
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

func werkzeugPBKDF2(password string, salt []byte, args []string, keyLen int) ([]byte, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%w: pbkdf2 params", ErrInvalidHash)
	}

	var h func() hash.Hash
	switch args[0] {
	case "sha1":
		h = sha1.New
	case "sha256":
		h = sha256.New
	case "sha512":
		h = sha512.New
	default:
		return nil, fmt.Errorf("%w: pbkdf2 digest %q", ErrInvalidHash, args[0])
	}

	iterations, err := strconv.Atoi(args[1])
	if err != nil || iterations < 1 || iterations > maxPBKDF2Iterations {
		return nil, fmt.Errorf("%w: pbkdf2 iterations %q", ErrInvalidHash, args[1])
	}

	return pbkdf2.Key([]byte(password), salt, iterations, keyLen, h), nil
}

func werkzeugScrypt(password string, salt []byte, args []string, keyLen int) ([]byte, error) {
	if len(args) != 3 || keyLen != scryptKeyLen {
		return nil, fmt.Errorf("%w: scrypt params", ErrInvalidHash)
	}

	var cost [3]int
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("%w: scrypt param %q", ErrInvalidHash, arg)
		}
		cost[i] = v
	}
	n, r, p := cost[0], cost[1], cost[2]

	if int64(128)*int64(n)*int64(r)*int64(p) > maxScryptMemory {
		return nil, fmt.Errorf("%w: scrypt cost too high", ErrInvalidHash)
	}

	key, err := scrypt.Key([]byte(password), salt, n, r, p, keyLen)
	if err != nil {
		return nil, fmt.Errorf("%w: scrypt: %w", ErrInvalidHash, err)
	}
	return key, nil
}
