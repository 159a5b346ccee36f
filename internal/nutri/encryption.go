package nutri

// Encryptor seals stored records at rest using an asymmetric key pair.
// Sealing only needs the public key; opening requires unlocking the private
// key with a passphrase.
type Encryptor interface {
	// Setup generates a new key pair, protecting the private key with passphrase.
	Setup(passphrase string) error

	// Seal encrypts one record.
	Seal(plaintext []byte) ([]byte, error)

	// Unlock decrypts the private key and returns a RecordOpener.
	Unlock(passphrase string) (RecordOpener, error)

	// IsConfigured reports whether the key files exist.
	IsConfigured() bool
}

// RecordOpener decrypts records sealed by an Encryptor.
type RecordOpener interface {
	Open(sealed []byte) ([]byte, error)
}
