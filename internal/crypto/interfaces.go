package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_mock.go -package=mock

// Deriver turns a user key into fixed-length [KeyMaterial].
//
// Implementations must reject an unsupported length with an error wrapping
// models.ErrInvalidConfig before doing any key-derivation work, so a bad
// request never costs a memory-hard KDF run.
type Deriver interface {
	// Derive stretches userKey with salt under params into a key of length
	// bytes. The caller owns the returned material and must Destroy it.
	Derive(userKey *Secret, length KeyLength, salt []byte, params KDFParams) (*KeyMaterial, error)
}
