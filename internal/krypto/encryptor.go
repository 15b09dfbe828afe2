package krypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"errors"
)

var (
	// ErrUnknownKey indicates that the key used to encrypt the data is unknown.
	ErrUnknownKey = errors.New("unknown key")
	// ErrInvalidData indicates that the data is invalid.
	ErrInvalidData = errors.New("invalid data")
)

const indexBytes = 4

// Encryptor encrypts and decrypts data using AES-GCM.
//
// Keys are an append only list, the last key is used to encrypt. Every
// message is prefixed with the index of the key that encrypted it, so data
// written with an older key can still be read after a new key is added.
//
// The index is not secret. It is used as additional data for the AEAD so
// it can not be swapped without detection.
type Encryptor struct {
	keys []Key
}

// NewEncryptor creates a new encryptor with the provided keys.
func NewEncryptor(keys []Key) (*Encryptor, error) {
	if len(keys) == 0 {
		return nil, errors.New("at least one key is required")
	}

	return &Encryptor{
		keys: keys,
	}, nil
}

// Encrypt encrypts the data using the latest available key.
func (e *Encryptor) Encrypt(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	index := uint32(len(e.keys) - 1)
	gcm, err := e.gcm(index)
	if err != nil {
		return nil, err
	}

	nonce, err := genRandomBytes(gcm.NonceSize())
	if err != nil {
		return nil, err
	}

	out := make([]byte, indexBytes, indexBytes+len(nonce)+len(data)+gcm.Overhead())
	binary.BigEndian.PutUint32(out, index)

	sealed := gcm.Seal(nil, nonce, data, out[:indexBytes])
	out = append(out, nonce...)
	return append(out, sealed...), nil
}

// Decrypt decrypts a message created by Encrypt.
func (e *Encryptor) Decrypt(message []byte) ([]byte, error) {
	if len(message) < indexBytes {
		return nil, ErrInvalidData
	}

	index := binary.BigEndian.Uint32(message[:indexBytes])
	if int(index) >= len(e.keys) {
		return nil, ErrUnknownKey
	}

	gcm, err := e.gcm(index)
	if err != nil {
		return nil, err
	}

	minLen := indexBytes + gcm.NonceSize()
	if len(message) <= minLen {
		return nil, ErrInvalidData
	}

	return gcm.Open(nil, message[indexBytes:minLen], message[minLen:], message[:indexBytes])
}

func (e *Encryptor) gcm(index uint32) (cipher.AEAD, error) {
	block, err := aes.NewCipher(e.keys[index].value)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}
