package jwtx

// Signer is our interface for anything that can sign delegation tokens.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)

	// PublicJWK returns the key for JWKS publishing. Symmetric signers
	// return false, their key never leaves the process.
	PublicJWK() (JWK, bool)

	// VerificationKey returns the key material the parser needs to
	// check a signature: a public key for asymmetric algorithms, the
	// shared secret for HS256.
	VerificationKey() any

	Validate() error
}

// NewSignerEdDSA creates an EdDSA signer from PEM bytes.
// Ed25519 keys must be in PKCS8 format.
func NewSignerEdDSA(kid string, pemKey []byte) (Signer, error) {
	return newEdDSASigner(kid, pemKey)
}

// NewSignerRS256 creates an RS256 signer from PEM bytes.
func NewSignerRS256(kid string, pemKey []byte) (Signer, error) {
	return newRS256Signer(kid, pemKey)
}

// NewSignerES256 creates an ES256 signer from PEM bytes.
// ECDSA P-256 keys must be in PKCS8 format.
func NewSignerES256(kid string, pemKey []byte) (Signer, error) {
	return newES256Signer(kid, pemKey)
}

// NewSignerHS256 creates an HS256 signer from a shared secret. Meant for
// single-process development setups where key distribution is overkill.
func NewSignerHS256(kid string, secret []byte) (Signer, error) {
	return newHS256Signer(kid, secret)
}
