package pemfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	gossh "golang.org/x/crypto/ssh"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	params := KeyParams{
		Bits:          2048,
		KeyPath:       filepath.Join(dir, "private.pem"),
		SSHPubKeyPath: filepath.Join(dir, "public.pem"),
	}
	first, signer, generated, err := params.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !generated {
		t.Errorf("first Load should generate the key pair")
	}
	authorized, err := os.ReadFile(params.SSHPubKeyPath)
	if err != nil {
		t.Fatal(err)
	}
	pub, _, _, _, err := gossh.ParseAuthorizedKey(authorized)
	if err != nil {
		t.Fatal(err)
	}
	if gossh.FingerprintSHA256(pub) != gossh.FingerprintSHA256(signer.PublicKey()) {
		t.Errorf("public key file does not match the private key")
	}

	second, _, generated, err := params.Load()
	if err != nil {
		t.Fatal(err)
	}
	if generated || !bytes.Equal(first, second) {
		t.Errorf("second Load should reuse the key, got generated=%v", generated)
	}
}
