package krypto

import (
	"crypto/rand"
	"crypto/subtle"
	"database/sql/driver"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argon2Variant = "argon2id"
	saltLen       = 16
	hashLen       = 32
)

// ErrInvalidInput indicates the input could not be hashed or parsed.
var ErrInvalidInput = errors.New("invalid input")

// Argon2Params are the cost parameters for argon2id.
type Argon2Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultArgon2Params follow the OWASP recommendation for argon2id
// (46 MiB of memory, 1 iteration, 1 degree of parallelism).
var DefaultArgon2Params = Argon2Params{
	MemoryKiB:   47104,
	Iterations:  1,
	Parallelism: 1,
}

// Argon2Hasher hashes data with argon2id using its Params.
// The zero value is not usable, use NewArgon2Hasher or DefaultArgon2Params.
type Argon2Hasher struct {
	Params Argon2Params
}

// NewArgon2Hasher returns a hasher for the provided parameters.
func NewArgon2Hasher(p Argon2Params) (Argon2Hasher, error) {
	if p.MemoryKiB < 8*uint32(p.Parallelism) || p.Iterations < 1 || p.Parallelism < 1 {
		return Argon2Hasher{}, fmt.Errorf("argon2 params %+v: %w", p, ErrInvalidInput)
	}

	return Argon2Hasher{Params: p}, nil
}

// Hash hashes data using a random salt. Hashing the same data
// twice results in two different hashes.
func (h Argon2Hasher) Hash(data []byte) (Argon2Hash, error) {
	salt, err := genRandomBytes(saltLen)
	if err != nil {
		return Argon2Hash{}, err
	}

	return h.hash(data, salt)
}

// HashWithKey hashes data using the key as salt. The result is deterministic
// for the same data and key, which makes it usable as a blind index.
func (h Argon2Hasher) HashWithKey(data []byte, key Key) (Argon2Hash, error) {
	return h.hash(data, key.value)
}

func (h Argon2Hasher) hash(data, salt []byte) (Argon2Hash, error) {
	if len(data) == 0 {
		return Argon2Hash{}, ErrInvalidInput
	}

	p := h.Params
	return Argon2Hash{
		Variant:     argon2Variant,
		Version:     argon2.Version,
		MemoryKiB:   p.MemoryKiB,
		Iterations:  p.Iterations,
		Parallelism: p.Parallelism,
		Salt:        salt,
		Hash:        argon2.IDKey(data, salt, p.Iterations, p.MemoryKiB, p.Parallelism, hashLen),
	}, nil
}

// HashArgon2 hashes data with the default parameters and a random salt.
func HashArgon2(data []byte) (Argon2Hash, error) {
	return Argon2Hasher{Params: DefaultArgon2Params}.Hash(data)
}

// HashArgon2WithKey hashes data with the default parameters, using key as the salt.
func HashArgon2WithKey(data []byte, key Key) (Argon2Hash, error) {
	return Argon2Hasher{Params: DefaultArgon2Params}.HashWithKey(data, key)
}

// Argon2Hash is an argon2id hash together with the parameters
// that were used to create it.
type Argon2Hash struct {
	Variant     string
	Version     int
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	Salt        []byte
	Hash        []byte
}

// ParseArgon2Hash parses the PHC string format:
// $argon2id$v=19$m=47104,t=1,p=1$<salt>$<hash>
func ParseArgon2Hash(s string) (Argon2Hash, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" {
		return Argon2Hash{}, fmt.Errorf("wrong number of segments: %w", ErrInvalidInput)
	}

	if parts[1] != argon2Variant {
		return Argon2Hash{}, fmt.Errorf("unsupported variant %q: %w", parts[1], ErrInvalidInput)
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || !strings.HasPrefix(parts[2], "v=") {
		return Argon2Hash{}, fmt.Errorf("invalid version: %w", ErrInvalidInput)
	}

	if version != argon2.Version {
		return Argon2Hash{}, fmt.Errorf("unsupported version %d: %w", version, ErrInvalidInput)
	}

	var memory, iterations, parallelism uint64
	params := strings.Split(parts[3], ",")
	if len(params) != 3 {
		return Argon2Hash{}, fmt.Errorf("invalid params: %w", ErrInvalidInput)
	}

	for i, p := range []struct {
		prefix string
		bits   int
		tgt    *uint64
	}{
		{"m=", 32, &memory},
		{"t=", 32, &iterations},
		{"p=", 8, &parallelism},
	} {
		if !strings.HasPrefix(params[i], p.prefix) {
			return Argon2Hash{}, fmt.Errorf("missing %s param: %w", p.prefix, ErrInvalidInput)
		}

		*p.tgt, err = strconv.ParseUint(strings.TrimPrefix(params[i], p.prefix), 10, p.bits)
		if err != nil {
			return Argon2Hash{}, fmt.Errorf("invalid %s param: %w", p.prefix, ErrInvalidInput)
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2Hash{}, fmt.Errorf("invalid salt: %w", ErrInvalidInput)
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Argon2Hash{}, fmt.Errorf("invalid hash: %w", ErrInvalidInput)
	}

	return Argon2Hash{
		Variant:     parts[1],
		Version:     version,
		MemoryKiB:   uint32(memory),
		Iterations:  uint32(iterations),
		Parallelism: uint8(parallelism),
		Salt:        salt,
		Hash:        hash,
	}, nil
}

// MatchBytes reports whether data hashes to h. The comparison is done in constant time.
func (h Argon2Hash) MatchBytes(data []byte) bool {
	if len(h.Hash) == 0 {
		return false
	}

	other := argon2.IDKey(data, h.Salt, h.Iterations, h.MemoryKiB, h.Parallelism, uint32(len(h.Hash)))
	return subtle.ConstantTimeCompare(h.Hash, other) == 1
}

// IsZero reports whether h holds no hash at all.
func (h Argon2Hash) IsZero() bool {
	return len(h.Hash) == 0
}

// String returns the PHC string format of the hash.
func (h Argon2Hash) String() string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		h.Variant,
		h.Version,
		h.MemoryKiB,
		h.Iterations,
		h.Parallelism,
		base64.RawStdEncoding.EncodeToString(h.Salt),
		base64.RawStdEncoding.EncodeToString(h.Hash),
	)
}

func (h Argon2Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Argon2Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseArgon2Hash(string(text))
	if err != nil {
		return err
	}

	*h = parsed
	return nil
}

// Scan implements sql.Scanner.
func (h *Argon2Hash) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return h.UnmarshalText([]byte(v))
	case []byte:
		return h.UnmarshalText(v)
	default:
		return fmt.Errorf("can not scan %T into argon2 hash", src)
	}
}

// Value implements driver.Valuer.
func (h Argon2Hash) Value() (driver.Value, error) {
	return h.String(), nil
}

func genRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}
