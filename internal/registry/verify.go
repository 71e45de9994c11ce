package registry

import (
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// Verifier checks detached OpenPGP signatures against a fixed keyring.
type Verifier struct {
	keyring openpgp.EntityList
}

// LoadVerifier reads an armored or binary public keyring from path.
func LoadVerifier(path string) (*Verifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer f.Close()
	return NewVerifier(f)
}

// NewVerifier reads an armored or binary public keyring.
func NewVerifier(r io.ReadSeeker) (*Verifier, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(r)
	if err != nil {
		if _, serr := r.Seek(0, io.SeekStart); serr != nil {
			return nil, fmt.Errorf("rewind keyring: %w", serr)
		}
		keyring, err = openpgp.ReadKeyRing(r)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}
	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}
	return &Verifier{keyring: keyring}, nil
}

// VerifyFile checks that sigPath holds a valid signature over dataPath.
// Armored signatures are tried first, then binary ones.
func (v *Verifier) VerifyFile(dataPath, sigPath string) error {
	data, err := os.Open(dataPath)
	if err != nil {
		return fmt.Errorf("open signed file: %w", err)
	}
	defer data.Close()

	sig, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sig.Close()

	if _, err = openpgp.CheckArmoredDetachedSignature(v.keyring, data, sig, nil); err == nil {
		return nil
	}

	if _, err := data.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind signed file: %w", err)
	}
	if _, err := sig.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind signature: %w", err)
	}
	if _, err := openpgp.CheckDetachedSignature(v.keyring, data, sig, nil); err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}
	return nil
}
