package auth

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
)

// Errors
var (
	ErrBadPublicKey = errors.New("public key is not valid PKCS#1 or SPKI PEM")
	ErrBadSignature = errors.New("signature verification failed")
)

// ParsePublicKey accepts an RSA public key in either PKCS#1 ("RSA PUBLIC KEY")
// or SPKI ("PUBLIC KEY") PEM encoding.
func ParsePublicKey(pemData string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, ErrBadPublicKey
	}

	switch block.Type {
	case "RSA PUBLIC KEY":
		key, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, ErrBadPublicKey
		}
		return key, nil
	case "PUBLIC KEY":
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, ErrBadPublicKey
		}
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, ErrBadPublicKey
		}
		return rsaKey, nil
	}
	return nil, ErrBadPublicKey
}

// VerifySignature checks a PKCS#1 v1.5 signature over SHA-256 of the nonce's
// UTF-8 bytes.
func VerifySignature(key *rsa.PublicKey, nonce string, signature []byte) error {
	digest := sha256.Sum256([]byte(nonce))
	if err := rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], signature); err != nil {
		return ErrBadSignature
	}
	return nil
}
