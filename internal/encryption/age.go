package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
	"filippo.io/age/armor"

	"nutri-go/internal/config"
	"nutri-go/internal/nutri"
)

// AgeEncryptor seals records with filippo.io/age to an X25519 recipient.
// Sealed records are ASCII-armored so they stay printable in the file and
// s3 backends. The private key file is itself age-encrypted with a
// scrypt passphrase.
type AgeEncryptor struct {
	publicKeyPath  string
	privateKeyPath string
}

var _ nutri.Encryptor = (*AgeEncryptor)(nil)

// NewAgeEncryptor creates an AgeEncryptor using the key paths in cfg.
func NewAgeEncryptor(cfg config.EncryptionConfig) *AgeEncryptor {
	return &AgeEncryptor{
		publicKeyPath:  cfg.PublicKeyPath,
		privateKeyPath: cfg.PrivateKeyPath,
	}
}

// Setup generates a key pair. It refuses to overwrite existing keys, since
// records sealed to the old key would become unreadable.
func (e *AgeEncryptor) Setup(passphrase string) error {
	if passphrase == "" {
		return errors.New("passphrase must not be empty")
	}
	if e.IsConfigured() {
		return fmt.Errorf("keys already exist at %s", filepath.Dir(e.publicKeyPath))
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}

	for _, p := range []string{e.publicKeyPath, e.privateKeyPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
			return fmt.Errorf("creating key directory: %w", err)
		}
	}

	if err := os.WriteFile(e.publicKeyPath, []byte(identity.Recipient().String()+"\n"), 0644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}

	scrypt, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}
	protected, err := seal([]byte(identity.String()+"\n"), scrypt)
	if err != nil {
		return fmt.Errorf("protecting private key: %w", err)
	}
	if err := os.WriteFile(e.privateKeyPath, protected, 0600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	return nil
}

// Seal encrypts plaintext to the stored public key.
func (e *AgeEncryptor) Seal(plaintext []byte) ([]byte, error) {
	recipient, err := e.loadRecipient()
	if err != nil {
		return nil, fmt.Errorf("loading public key: %w", err)
	}
	return seal(plaintext, recipient)
}

// Unlock decrypts the private key with passphrase.
func (e *AgeEncryptor) Unlock(passphrase string) (nutri.RecordOpener, error) {
	protected, err := os.ReadFile(e.privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key file: %w", err)
	}

	scrypt, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	keyData, err := open(protected, scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypting private key (wrong passphrase?): %w", err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(keyData))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	if len(identities) == 0 {
		return nil, errors.New("no identities found in private key")
	}
	return &AgeOpener{identity: identities[0]}, nil
}

// IsConfigured returns true if both key files exist.
func (e *AgeEncryptor) IsConfigured() bool {
	for _, p := range []string{e.publicKeyPath, e.privateKeyPath} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

func (e *AgeEncryptor) loadRecipient() (age.Recipient, error) {
	pubData, err := os.ReadFile(e.publicKeyPath)
	if err != nil {
		return nil, err
	}
	recipients, err := age.ParseRecipients(bytes.NewReader(pubData))
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	if len(recipients) == 0 {
		return nil, errors.New("no recipients found in public key file")
	}
	return recipients[0], nil
}

// AgeOpener holds an unlocked age identity.
type AgeOpener struct {
	identity age.Identity
}

var _ nutri.RecordOpener = (*AgeOpener)(nil)

// Open decrypts an armored record.
func (o *AgeOpener) Open(sealed []byte) ([]byte, error) {
	return open(sealed, o.identity)
}

func seal(plaintext []byte, recipient age.Recipient) ([]byte, error) {
	var buf bytes.Buffer
	aw := armor.NewWriter(&buf)
	w, err := age.Encrypt(aw, recipient)
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("encrypting: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	if err := aw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing armor: %w", err)
	}
	return buf.Bytes(), nil
}

func open(sealed []byte, identity age.Identity) ([]byte, error) {
	r, err := age.Decrypt(armor.NewReader(bytes.NewReader(sealed)), identity)
	if err != nil {
		return nil, fmt.Errorf("creating decrypted reader: %w", err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return plaintext, nil
}
