package config

import (
	"crypto/rsa"
	"encoding/pem"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

var (
	// ErrInvalidKey is wrapped when the private key cannot be decoded.
	ErrInvalidKey = errors.New("invalid private key")
	// ErrUnsupportedKey is returned for keys other than RSA, which is all
	// Snowflake key-pair authentication accepts.
	ErrUnsupportedKey = errors.New("unsupported private key type")
)

// ParsePrivateKey decodes a PEM private key (PKCS#1, PKCS#8 or OpenSSH).
// passphrase is only needed for encrypted keys.
func ParsePrivateKey(pemData, passphrase string) (*rsa.PrivateKey, error) {
	data := []byte(normalizePEM(pemData))
	if block, _ := pem.Decode(data); block == nil {
		return nil, errors.Wrap(ErrInvalidKey, "no PEM block found")
	}

	var (
		raw interface{}
		err error
	)
	if passphrase != "" {
		raw, err = ssh.ParseRawPrivateKeyWithPassphrase(data, []byte(passphrase))
	} else {
		raw, err = ssh.ParseRawPrivateKey(data)
	}
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, errors.Wrap(ErrInvalidKey, "key is encrypted; set private_key_passphrase")
		}
		return nil, errors.Wrapf(ErrInvalidKey, "%v", err)
	}

	key, ok := raw.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedKey, "%T", raw)
	}
	return key, nil
}

// normalizePEM turns escaped "\n" sequences (common when a key is pasted
// into an environment variable) back into line breaks.
func normalizePEM(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "\n") && strings.Contains(s, `\n`) {
		s = strings.ReplaceAll(s, `\n`, "\n")
	}
	return s
}
