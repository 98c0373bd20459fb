package gpg

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/certdesc/internal/domain/interfaces/gateways"
)

var (
	_ gateways.RecordSigner   = (*Signer)(nil)
	_ gateways.RecordVerifier = (*Verifier)(nil)
)

func newEntity(t *testing.T) *openpgp.Entity {
	t.Helper()
	entity, err := openpgp.NewEntity("certdesc test", "", "test@example.com", nil)
	require.NoError(t, err)
	return entity
}

func armoredSecretKey(t *testing.T, entity *openpgp.Entity, passphrase []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PrivateKeyType, nil)
	require.NoError(t, err)
	if passphrase != nil {
		require.NoError(t, entity.EncryptPrivateKeys(passphrase, nil))
		require.NoError(t, entity.SerializePrivateWithoutSigning(w, nil))
	} else {
		require.NoError(t, entity.SerializePrivate(w, nil))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestSignAndVerify_RoundTrip(t *testing.T) {
	ctx := context.Background()
	signer, err := NewSigner(bytes.NewReader(armoredSecretKey(t, newEntity(t), nil)), nil)
	require.NoError(t, err)

	message := []byte(`{"serial_number":"0102ABCD"}`)
	var sig bytes.Buffer
	require.NoError(t, signer.SignDetached(ctx, bytes.NewReader(message), &sig))
	assert.True(t, strings.HasPrefix(sig.String(), armoredSignaturePrefix))

	var pub bytes.Buffer
	require.NoError(t, signer.ExportPublicKey(&pub))

	v := NewVerifier()
	require.NoError(t, v.ImportKeys(&pub))
	assert.Equal(t, 1, v.GetKeyringSize())

	assert.NoError(t, v.VerifyDetached(ctx, bytes.NewReader(message), bytes.NewReader(sig.Bytes())))

	tampered := []byte(`{"serial_number":"0102ABCE"}`)
	err = v.VerifyDetached(ctx, bytes.NewReader(tampered), bytes.NewReader(sig.Bytes()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature verification failed")
}

func TestVerifier_BinarySignatureAndKey(t *testing.T) {
	entity := newEntity(t)
	message := []byte("record")

	var sig bytes.Buffer
	require.NoError(t, openpgp.DetachSign(&sig, entity, bytes.NewReader(message), nil))

	var pub bytes.Buffer
	require.NoError(t, entity.Serialize(&pub))

	v := NewVerifier()
	require.NoError(t, v.ImportKeys(&pub))
	assert.NoError(t, v.VerifyDetached(context.Background(), bytes.NewReader(message), &sig))
}

func TestSigner_Passphrase(t *testing.T) {
	key := armoredSecretKey(t, newEntity(t), []byte("s3cret"))

	_, err := NewSigner(bytes.NewReader(key), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no passphrase")

	_, err = NewSigner(bytes.NewReader(key), []byte("wrong"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decrypt secret key")

	signer, err := NewSigner(bytes.NewReader(key), []byte("s3cret"))
	require.NoError(t, err)
	assert.Len(t, signer.Fingerprint(), 40)
}

func TestSigner_PublicKeyOnly(t *testing.T) {
	var pub bytes.Buffer
	w, err := armor.Encode(&pub, openpgp.PublicKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, newEntity(t).Serialize(w))
	require.NoError(t, w.Close())

	_, err = NewSigner(&pub, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no secret key found")
}

func TestSigner_CanceledContext(t *testing.T) {
	signer, err := NewSigner(bytes.NewReader(armoredSecretKey(t, newEntity(t), nil)), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sig bytes.Buffer
	assert.ErrorIs(t, signer.SignDetached(ctx, strings.NewReader("x"), &sig), context.Canceled)
	assert.Zero(t, sig.Len())
}

func TestVerifier_VerifyFile(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()
	signer, err := NewSigner(bytes.NewReader(armoredSecretKey(t, newEntity(t), nil)), nil)
	require.NoError(t, err)

	recordPath := filepath.Join(tmpDir, "record.json")
	sigPath := recordPath + ".asc"
	keyPath := filepath.Join(tmpDir, "pub.asc")
	require.NoError(t, os.WriteFile(recordPath, []byte("{}\n"), 0600))

	var sig, pub bytes.Buffer
	require.NoError(t, signer.SignDetached(ctx, strings.NewReader("{}\n"), &sig))
	require.NoError(t, signer.ExportPublicKey(&pub))
	require.NoError(t, os.WriteFile(sigPath, sig.Bytes(), 0600))
	require.NoError(t, os.WriteFile(keyPath, pub.Bytes(), 0600))

	v := NewVerifier()
	require.NoError(t, v.ImportKeyFromFile(keyPath))
	assert.NoError(t, v.VerifyFile(ctx, recordPath, sigPath))

	err = v.VerifyFile(ctx, recordPath, filepath.Join(tmpDir, "missing.asc"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open signature file")
}

func TestVerifier_ImportKeyFromFile_NonexistentFile(t *testing.T) {
	v := NewVerifier()

	err := v.ImportKeyFromFile("/nonexistent/key.asc")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to open key file") {
		t.Errorf("Expected 'failed to open key file' error, got: %v", err)
	}
}

func TestVerifier_ImportKeys_Invalid(t *testing.T) {
	v := NewVerifier()

	if err := v.ImportKeys(strings.NewReader("not a gpg key")); err == nil {
		t.Fatal("Expected error for invalid key data, got nil")
	}
}

func TestVerifier_NoKeys(t *testing.T) {
	v := NewVerifier()

	err := v.VerifyDetached(context.Background(), strings.NewReader("x"), strings.NewReader("y"))
	if err == nil || !strings.Contains(err.Error(), "no GPG keys imported") {
		t.Errorf("VerifyDetached() error = %v, want no GPG keys imported", err)
	}
}

func TestVerifier_KeyringOperations(t *testing.T) {
	v := NewVerifier()
	if size := v.GetKeyringSize(); size != 0 {
		t.Errorf("Initial keyring size = %d, want 0", size)
	}

	var pub bytes.Buffer
	require.NoError(t, newEntity(t).Serialize(&pub))
	require.NoError(t, v.ImportKeys(&pub))
	if size := v.GetKeyringSize(); size != 1 {
		t.Errorf("Keyring size = %d, want 1", size)
	}
}
