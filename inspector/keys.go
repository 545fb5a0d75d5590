package inspector

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"

	gossh "golang.org/x/crypto/ssh"
)

// loadOrGenerateHostKey reads an SSH host key from path, generating and
// persisting a fresh RSA key there if none exists yet.
func loadOrGenerateHostKey(path string) (gossh.Signer, error) {
	if pemBytes, err := os.ReadFile(path); err == nil {
		return gossh.ParsePrivateKey(pemBytes)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	key, err := rsa.GenerateKey(rand.Reader, 4096)
	if err != nil {
		return nil, err
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	if err := os.WriteFile(path, keyPEM, 0600); err != nil {
		return nil, err
	}
	return gossh.ParsePrivateKey(keyPEM)
}
