package encryption

import (
	"bytes"
	"errors"

	"nutri-go/internal/nutri"
)

// testPrefix marks records sealed by TestEncryptor.
var testPrefix = []byte("NUTRIENC:")

// TestEncryptor is a reversible stand-in for tests. Sealing prepends a fixed
// prefix so sealed bytes differ from the plaintext without real crypto.
type TestEncryptor struct {
	configured bool
}

var _ nutri.Encryptor = (*TestEncryptor)(nil)

func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{configured: true}
}

func (e *TestEncryptor) Setup(string) error {
	e.configured = true
	return nil
}

func (e *TestEncryptor) Seal(plaintext []byte) ([]byte, error) {
	out := make([]byte, 0, len(testPrefix)+len(plaintext))
	out = append(out, testPrefix...)
	return append(out, plaintext...), nil
}

func (e *TestEncryptor) Unlock(string) (nutri.RecordOpener, error) {
	return testOpener{}, nil
}

func (e *TestEncryptor) IsConfigured() bool { return e.configured }

type testOpener struct{}

func (testOpener) Open(sealed []byte) ([]byte, error) {
	if !bytes.HasPrefix(sealed, testPrefix) {
		return nil, errors.New("record was not sealed by the test encryptor")
	}
	return bytes.Clone(sealed[len(testPrefix):]), nil
}
