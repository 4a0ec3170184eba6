package instance

import (
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestGenerateSSHKeyPair(t *testing.T) {
	pair, err := GenerateSSHKeyPair("vpshop")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(pair.PublicKey, "ssh-ed25519 ") {
		t.Errorf("expected an ed25519 authorized key, but got %q", pair.PublicKey)
	}
	if !strings.HasSuffix(pair.PublicKey, " vpshop") {
		t.Errorf("expected the comment to be appended, but got %q", pair.PublicKey)
	}

	signer, err := ssh.ParsePrivateKey([]byte(pair.PrivateKey))
	if err != nil {
		t.Fatalf("private key does not parse: %v", err)
	}

	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(pair.PublicKey))
	if err != nil {
		t.Fatalf("public key does not parse: %v", err)
	}

	if signer.PublicKey().Type() != pub.Type() {
		t.Errorf("key types disagree: %s vs %s", signer.PublicKey().Type(), pub.Type())
	}
	if string(signer.PublicKey().Marshal()) != string(pub.Marshal()) {
		t.Error("the private key does not match the public key")
	}
}

func TestGenerateSSHKeyPairUnique(t *testing.T) {
	a, err := GenerateSSHKeyPair("")
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateSSHKeyPair("")
	if err != nil {
		t.Fatal(err)
	}
	if a.PublicKey == b.PublicKey {
		t.Error("two generated keys must differ")
	}
}
