package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/stockroom/pkg/config"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidHash signals a malformed or unsupported password digest.
var ErrInvalidHash = errors.New("invalid password hash")

const argonPrefix = "$argon2id$"

// bcrypt ignores everything past this many bytes.
const bcryptMaxPasswordBytes = 72

// ArgonParams captures the Argon2id parameters we embed into each hash string.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// HashPassword returns a self-describing digest for password using the
// configured algorithm.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	switch algorithm(cfg) {
	case config.PasswordAlgorithmArgon2id:
		return hashArgon2id(password, paramsFromConfig(cfg))
	default:
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost(cfg))
		if err != nil {
			return "", fmt.Errorf("bcrypt: %w", err)
		}
		return string(hash), nil
	}
}

// VerifyPassword reports whether password matches encoded. Digests from any
// supported algorithm are accepted; malformed digests simply do not match.
func VerifyPassword(password, encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, argonPrefix):
		params, salt, hash, err := decodeArgon2id(encoded)
		if err != nil {
			return false
		}
		computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)
		return subtle.ConstantTimeCompare(hash, computed) == 1
	case isBcrypt(encoded):
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
	default:
		return false
	}
}

// NeedsRehash reports whether encoded was produced by a different algorithm
// or with weaker parameters than cfg currently asks for.
func NeedsRehash(encoded string, cfg config.PasswordConfig) bool {
	switch algorithm(cfg) {
	case config.PasswordAlgorithmArgon2id:
		if !strings.HasPrefix(encoded, argonPrefix) {
			return true
		}
		params, _, _, err := decodeArgon2id(encoded)
		if err != nil {
			return true
		}
		want := paramsFromConfig(cfg)
		return params.Memory < want.Memory || params.Time < want.Time || params.KeyLen < want.KeyLen
	default:
		if !isBcrypt(encoded) {
			return true
		}
		cost, err := bcrypt.Cost([]byte(encoded))
		if err != nil {
			return true
		}
		return cost < bcryptCost(cfg)
	}
}

// MaxPasswordBytes is the longest password the configured algorithm hashes
// without truncation. Zero means no limit.
func MaxPasswordBytes(cfg config.PasswordConfig) int {
	if algorithm(cfg) == config.PasswordAlgorithmBcrypt {
		return bcryptMaxPasswordBytes
	}
	return 0
}

func algorithm(cfg config.PasswordConfig) string {
	value := strings.ToLower(strings.TrimSpace(cfg.Algorithm))
	if value == "" {
		return config.PasswordAlgorithmBcrypt
	}
	return value
}

func bcryptCost(cfg config.PasswordConfig) int {
	if cfg.BcryptCost == 0 {
		return bcrypt.DefaultCost
	}
	return clampInt(cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") || strings.HasPrefix(encoded, "$2b$") || strings.HasPrefix(encoded, "$2y$")
}

func hashArgon2id(password string, params ArgonParams) (string, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)

	encSalt := base64.RawStdEncoding.EncodeToString(salt)
	encHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s", argon2.Version, params.Memory, params.Time, params.Parallelism, encSalt, encHash), nil
}

func paramsFromConfig(cfg config.PasswordConfig) ArgonParams {
	threads := clampInt(cfg.ArgonParallelism, 1, 255)
	return ArgonParams{
		Memory:      clampUint32(cfg.ArgonMemoryKB, 8, 512*1024),
		Time:        clampUint32(cfg.ArgonTime, 1, 10),
		Parallelism: uint8(threads),
		SaltLen:     clampUint32(cfg.ArgonSaltLen, 8, 64),
		KeyLen:      clampUint32(cfg.ArgonKeyLen, 16, 64),
	}
}

func decodeArgon2id(encoded string) (ArgonParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	var params ArgonParams
	for _, token := range strings.Split(parts[3], ",") {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			return ArgonParams{}, nil, nil, ErrInvalidHash
		}
		bits := 32
		if key == "p" {
			bits = 8
		}
		v, err := strconv.ParseUint(value, 10, bits)
		if err != nil {
			return ArgonParams{}, nil, nil, ErrInvalidHash
		}
		switch key {
		case "m":
			params.Memory = uint32(v)
		case "t":
			params.Time = uint32(v)
		case "p":
			params.Parallelism = uint8(v)
		}
	}
	if params.Memory == 0 || params.Time == 0 || params.Parallelism == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	params.SaltLen = uint32(len(salt))
	params.KeyLen = uint32(len(hash))

	return params, salt, hash, nil
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampUint32(value, min, max int) uint32 {
	return uint32(clampInt(value, min, max))
}
