package store

import (
	"errors"
	"fmt"

	"nutri-go/internal/nutri"
)

// SealedRecords encrypts records on the way into an underlying RecordStore
// and decrypts them on the way out.
type SealedRecords struct {
	inner  RecordStore
	enc    nutri.Encryptor
	opener nutri.RecordOpener
}

var _ RecordStore = (*SealedRecords)(nil)

// NewSealedRecords wraps inner. opener comes from enc.Unlock.
func NewSealedRecords(inner RecordStore, enc nutri.Encryptor, opener nutri.RecordOpener) (*SealedRecords, error) {
	if enc == nil || opener == nil {
		return nil, errors.New("sealed store requires an encryptor and an unlocked key")
	}
	return &SealedRecords{inner: inner, enc: enc, opener: opener}, nil
}

func (s *SealedRecords) Get(name string) ([]byte, error) {
	sealed, err := s.inner.Get(name)
	if err != nil {
		return nil, err
	}
	plain, err := s.opener.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("decrypting record %s: %w", name, err)
	}
	return plain, nil
}

func (s *SealedRecords) Put(name string, data []byte) error {
	sealed, err := s.enc.Seal(data)
	if err != nil {
		return fmt.Errorf("encrypting record %s: %w", name, err)
	}
	return s.inner.Put(name, sealed)
}

func (s *SealedRecords) Delete(name string) error {
	return s.inner.Delete(name)
}

func (s *SealedRecords) Close() error {
	return s.inner.Close()
}
