package encryption

import (
	"fmt"

	"nutri-go/internal/config"
	"nutri-go/internal/nutri"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// Type "none" (or empty) disables at-rest encryption and returns nil.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (nutri.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
