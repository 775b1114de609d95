package cryptox

// SecretComparer checks a presented secret against the stored form of a
// secret. Prepare converts a plaintext seed secret into that stored form.
type SecretComparer interface {
	Prepare(secret string) (string, error)
	Equal(presented, stored string) bool
}

// ConstantTimeEquals reports whether a and b are equal. A length mismatch
// returns false immediately; equal-length inputs are compared by
// XOR-accumulating every byte so the running time does not depend on where
// the first difference is.
func ConstantTimeEquals(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	var acc byte
	for i := 0; i < len(a); i++ {
		acc |= a[i] ^ b[i]
	}
	return acc == 0
}

// PlainComparer stores secrets as given and compares with ConstantTimeEquals.
type PlainComparer struct{}

func (PlainComparer) Prepare(secret string) (string, error) { return secret, nil }

func (PlainComparer) Equal(presented, stored string) bool {
	return ConstantTimeEquals(presented, stored)
}

// Argon2Comparer stores secrets as PHC-encoded Argon2id hashes.
type Argon2Comparer struct{}

func (Argon2Comparer) Prepare(secret string) (string, error) { return HashPassword(secret) }

func (Argon2Comparer) Equal(presented, stored string) bool {
	return VerifyPassword(presented, stored) == nil
}
