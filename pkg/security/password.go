package security

import "github.com/matthewhartstonge/argon2"

// HashPassword hashes a plaintext password with argon2id using the library
// default parameters. The returned string is the full encoded form, safe to
// persist as-is.
func HashPassword(password string) (string, error) {
	cfg := argon2.DefaultConfig()

	encoded, err := cfg.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword reports whether the plaintext password matches the encoded
// hash. A malformed hash is an error, a mismatch is not.
func VerifyPassword(password, encodedHash string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}
