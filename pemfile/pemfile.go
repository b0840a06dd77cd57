// Package pemfile creates and loads the host key of the sheet server.
package pemfile

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/zond/charsheet"

	gossh "golang.org/x/crypto/ssh"
)

const (
	DefaultBits = 4096
)

type KeyParams struct {
	// Bits is the RSA key size, DefaultBits if zero.
	Bits          int
	KeyPath       string
	SSHPubKeyPath string
}

// Generate writes a new private key to KeyPath, and its public key in
// authorized_keys format to SSHPubKeyPath.
func (k KeyParams) Generate() error {
	bits := k.Bits
	if bits == 0 {
		bits = DefaultBits
	}
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return charsheet.WithStack(err)
	}

	if err := os.WriteFile(k.KeyPath, pem.EncodeToMemory(
		&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
		}),
		0600,
	); err != nil {
		return charsheet.WithStack(err)
	}

	pub, err := gossh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return charsheet.WithStack(err)
	}
	if err := os.WriteFile(k.SSHPubKeyPath, gossh.MarshalAuthorizedKey(pub), 0600); err != nil {
		return charsheet.WithStack(err)
	}
	return nil
}

// Load returns the private key PEM at KeyPath and a signer for it, generating
// the key pair first if KeyPath does not exist.
func (k KeyParams) Load() (pemBytes []byte, signer gossh.Signer, generated bool, err error) {
	if _, err := os.Stat(k.KeyPath); os.IsNotExist(err) {
		if err := k.Generate(); err != nil {
			return nil, nil, false, charsheet.WithStack(err)
		}
		generated = true
	} else if err != nil {
		return nil, nil, false, charsheet.WithStack(err)
	}
	if pemBytes, err = os.ReadFile(k.KeyPath); err != nil {
		return nil, nil, false, charsheet.WithStack(err)
	}
	if signer, err = gossh.ParsePrivateKey(pemBytes); err != nil {
		return nil, nil, false, charsheet.WithStack(err)
	}
	return pemBytes, signer, generated, nil
}
