package cryptox

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey expands a master secret into a purpose-bound key of the given
// size using HKDF-SHA256. The info string separates derivations so the same
// master secret can safely back multiple uses (e.g. "lpr/hs256/<kid>").
// The master secret must carry real entropy; DeriveKey adds none.
func DeriveKey(master []byte, info string, size int) ([]byte, error) {
	if len(master) == 0 {
		return nil, fmt.Errorf("cryptox: empty master secret")
	}
	if size <= 0 {
		return nil, fmt.Errorf("cryptox: key size must be positive, got %d", size)
	}

	r := hkdf.New(sha256.New, master, nil, []byte(info))
	key := make([]byte, size)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("cryptox: hkdf expand: %w", err)
	}
	return key, nil
}
