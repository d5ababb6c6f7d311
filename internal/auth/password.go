package auth

import (
	"github.com/alexedwards/argon2id"
)

var params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash maakt een Argon2id-hash (parameters zitten in de hash zelf).
func Hash(password string) (string, error) {
	return argon2id.CreateHash(password, params)
}

// Verify vergelijkt het wachtwoord met de Argon2id-hash.
func Verify(password, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(password, encodedHash)
}
