package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/example/booking-admin/internal/persistence"
)

var (
	// ErrInvalidSealedValue is returned when a stored value is not in sealed format.
	ErrInvalidSealedValue = errors.New("session: invalid sealed value")
	// ErrIncompatibleSealVersion is returned for values sealed by another argon2 version.
	ErrIncompatibleSealVersion = errors.New("session: incompatible seal version")
	// ErrUnsealFailed is returned when the secret does not open the stored value.
	ErrUnsealFailed = errors.New("session: unable to unseal value")
)

// Argon2idParams controls the key derivation used to seal stored values.
type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
}

// DefaultArgon2idParams is used by NewSealedStore.
var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
}

const keyLength = 32

// SealedStore encrypts values before handing them to the wrapped store, so a
// copied database file does not leak the bearer token.
type SealedStore struct {
	inner  persistence.KeyValueStore
	secret []byte
	params Argon2idParams
}

var _ persistence.KeyValueStore = (*SealedStore)(nil)

// NewSealedStore wraps inner with the default derivation parameters.
func NewSealedStore(inner persistence.KeyValueStore, secret string) (*SealedStore, error) {
	return NewSealedStoreWithParams(inner, secret, DefaultArgon2idParams)
}

// NewSealedStoreWithParams wraps inner with explicit derivation parameters.
func NewSealedStoreWithParams(inner persistence.KeyValueStore, secret string, params Argon2idParams) (*SealedStore, error) {
	if inner == nil {
		return nil, errors.New("session: sealed store requires an inner store")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session: sealed store requires a secret")
	}
	return &SealedStore{inner: inner, secret: []byte(secret), params: params}, nil
}

func (s *SealedStore) Get(ctx context.Context, key string) (string, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return s.open(sealed)
}

func (s *SealedStore) Set(ctx context.Context, key, value string) error {
	sealed, err := s.seal(value)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *SealedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// seal produces $argon2id$v=19$m=...,t=...,p=...$salt$nonce+box.
func (s *SealedStore) seal(value string) (string, error) {
	salt := make([]byte, s.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}

	key := s.deriveKey(salt, s.params)
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, &key)

	format := "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"
	return fmt.Sprintf(format, argon2.Version, s.params.Memory, s.params.Iterations, s.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt), base64.RawStdEncoding.EncodeToString(box)), nil
}

func (s *SealedStore) open(sealed string) (string, error) {
	parts := strings.Split(sealed, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return "", ErrInvalidSealedValue
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return "", ErrInvalidSealedValue
	}
	if version != argon2.Version {
		return "", ErrIncompatibleSealVersion
	}

	var params Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return "", ErrInvalidSealedValue
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return "", ErrInvalidSealedValue
	}
	box, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(box) < 24 {
		return "", ErrInvalidSealedValue
	}

	var nonce [24]byte
	copy(nonce[:], box[:24])
	key := s.deriveKey(salt, params)

	plain, ok := secretbox.Open(nil, box[24:], &nonce, &key)
	if !ok {
		return "", ErrUnsealFailed
	}
	return string(plain), nil
}

func (s *SealedStore) deriveKey(salt []byte, params Argon2idParams) [keyLength]byte {
	var key [keyLength]byte
	copy(key[:], argon2.IDKey(s.secret, salt, params.Iterations, params.Memory, params.Parallelism, keyLength))
	return key
}
