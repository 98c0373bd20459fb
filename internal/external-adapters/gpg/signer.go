package gpg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

// Signer produces armored detached signatures with a single secret key
type Signer struct {
	entity *openpgp.Entity
}

// NewSignerFromFile loads an armored or binary secret key from keyPath
func NewSignerFromFile(keyPath string, passphrase []byte) (*Signer, error) {
	//nolint:gosec // G304: keyPath is user-provided for signing
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}
	return NewSigner(bytes.NewReader(data), passphrase)
}

// NewSigner loads the first secret key found in r and decrypts it with
// passphrase when the key is protected.
func NewSigner(r io.Reader, passphrase []byte) (*Signer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read key: %w", err)
	}

	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
	}

	var entity *openpgp.Entity
	for _, e := range entities {
		if e.PrivateKey != nil {
			entity = e
			break
		}
	}
	if entity == nil {
		return nil, fmt.Errorf("no secret key found")
	}

	if entity.PrivateKey.Encrypted {
		if len(passphrase) == 0 {
			return nil, fmt.Errorf("secret key is encrypted and no passphrase was given")
		}
		if err := entity.DecryptPrivateKeys(passphrase); err != nil {
			return nil, fmt.Errorf("failed to decrypt secret key: %w", err)
		}
	}

	return &Signer{entity: entity}, nil
}

// Fingerprint returns the upper-case hex fingerprint of the signing key
func (s *Signer) Fingerprint() string {
	return fmt.Sprintf("%X", s.entity.PrimaryKey.Fingerprint)
}

// SignDetached writes an armored detached signature of message to w
func (s *Signer) SignDetached(ctx context.Context, message io.Reader, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := openpgp.ArmoredDetachSign(w, s.entity, message, nil); err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}
	return nil
}

// ExportPublicKey writes the armored public key of the signer to w
func (s *Signer) ExportPublicKey(w io.Writer) error {
	aw, err := armor.Encode(w, openpgp.PublicKeyType, nil)
	if err != nil {
		return fmt.Errorf("failed to armor public key: %w", err)
	}
	if err := s.entity.Serialize(aw); err != nil {
		_ = aw.Close()
		return fmt.Errorf("failed to serialize public key: %w", err)
	}
	return aw.Close()
}
