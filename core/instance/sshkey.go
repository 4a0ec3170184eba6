package instance

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"net/http"
	"strings"

	"github.com/vietcloud/vpshop/api/web"
	"golang.org/x/crypto/ssh"
)

// SSHKeyPair is a freshly generated ed25519 pair. The private key is
// returned once and never stored.
type SSHKeyPair struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// GenerateSSHKeyPair creates an ed25519 pair in OpenSSH format.
func GenerateSSHKeyPair(comment string) (SSHKeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return SSHKeyPair{}, fmt.Errorf("generating key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return SSHKeyPair{}, fmt.Errorf("converting public key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return SSHKeyPair{}, fmt.Errorf("encoding private key: %w", err)
	}

	authorized := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))
	if comment != "" {
		authorized += " " + comment
	}

	return SSHKeyPair{
		PublicKey:  authorized,
		PrivateKey: string(pem.EncodeToMemory(block)),
	}, nil
}

// HandleGenerateSSHKey issues a key pair for the provisioning handoff.
func HandleGenerateSSHKey() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		pair, err := GenerateSSHKeyPair("vpshop")
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, pair, http.StatusCreated)
	}
}
