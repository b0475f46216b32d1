package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"
	base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

	// MinGeneratedPasswordLength is the floor for GenerateStrongPassword.
	MinGeneratedPasswordLength = 20
	superAdminPrefix           = "superadmin"

	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// GenerateStrongPassword returns a random password with at least one upper,
// lower, digit and symbol character. Lengths below the floor are raised to it.
func GenerateStrongPassword(length int) (string, error) {
	if length < MinGeneratedPasswordLength {
		length = MinGeneratedPasswordLength
	}
	all := upperChars + lowerChars + digitChars + symbolChars

	buf := make([]byte, 0, length)
	for _, set := range []string{upperChars, lowerChars, digitChars, symbolChars} {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	for len(buf) < length {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}

	// Fisher-Yates so the guaranteed classes do not sit at fixed positions.
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

// GenerateSuperAdminUsername returns superadmin_<8 random base36>_<6 char base36 timestamp>.
func GenerateSuperAdminUsername(now time.Time) (string, error) {
	var suffix strings.Builder
	for i := 0; i < 8; i++ {
		c, err := randomChar(base36Chars)
		if err != nil {
			return "", err
		}
		suffix.WriteByte(c)
	}
	stamp := strconv.FormatInt(now.UnixMilli(), 36)
	if len(stamp) > 6 {
		stamp = stamp[:6]
	}
	return fmt.Sprintf("%s_%s_%s", superAdminPrefix, suffix.String(), stamp), nil
}

func randomChar(set string) (byte, error) {
	i, err := randomInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("random source: %w", err)
	}
	return int(v.Int64()), nil
}
