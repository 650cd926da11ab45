// Package cryptox holds the password hashing used by the credential flows.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// argon2id parameters for newly created hashes.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// Ceilings for cost parameters read back from a stored hash. A record
// above them is treated as malformed so it cannot exhaust memory or CPU.
const (
	argon2MaxMemory  = 4 * argon2Memory
	argon2MaxTime    = 8
	argon2MinSaltLen = 8
)

const argon2Prefix = "$argon2id$"

// ErrEmptyPassword is returned by Hash for an empty plaintext.
var ErrEmptyPassword = errors.New("password cannot be empty")

// PasswordHasher produces salted one-way hashes and checks plaintexts
// against them.
type PasswordHasher interface {
	// Hash returns a freshly salted hash; two calls on the same input differ.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. A malformed hash is a
	// mismatch, not an error.
	Verify(password, hash string) bool
}

// Argon2idHasher implements PasswordHasher with argon2id encoded as a PHC
// string:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// Verify also accepts bcrypt hashes ($2a$, $2b$, $2y$) so records created
// by older deployments keep working.
type Argon2idHasher struct{}

func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// DeriveKey runs argon2id with the given cost parameters.
func DeriveKey(password, salt []byte, time, memory uint32, threads uint8, keyLen uint32) []byte {
	return argon2.IDKey(password, salt, time, memory, threads, keyLen)
}

func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := common.GenerateRandByteArray(argon2SaltLen)

	key := DeriveKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix,
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(password, hash string) bool {
	switch {
	case strings.HasPrefix(hash, argon2Prefix):
		return verifyArgon2id(password, hash)
	case isBcrypt(hash):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	default:
		return false
	}
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}

type argon2Params struct {
	version int
	memory  uint32
	time    uint32
	threads uint32
	salt    []byte
	key     []byte
}

func parseArgon2id(hash string) (*argon2Params, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, errors.New("invalid hash format")
	}

	p := &argon2Params{}
	if _, err := fmt.Sscanf(parts[2], "v=%d", &p.version); err != nil {
		return nil, err
	}
	if p.version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %d", p.version)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, err
	}
	if p.threads == 0 || p.threads > 255 || p.time == 0 || p.memory == 0 {
		return nil, errors.New("invalid cost parameters")
	}
	if p.memory > argon2MaxMemory || p.time > argon2MaxTime {
		return nil, fmt.Errorf("cost parameters m=%d,t=%d exceed limits", p.memory, p.time)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, err
	}
	if len(p.salt) < argon2MinSaltLen {
		return nil, errors.New("salt too short")
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, err
	}
	if len(p.key) == 0 || len(p.key) > 1024 {
		return nil, errors.New("invalid key length")
	}

	return p, nil
}

func verifyArgon2id(password, hash string) bool {
	p, err := parseArgon2id(hash)
	if err != nil {
		return false
	}

	candidate := DeriveKey([]byte(password), p.salt, p.time, p.memory, uint8(p.threads), uint32(len(p.key)))
	return subtle.ConstantTimeCompare(candidate, p.key) == 1
}
