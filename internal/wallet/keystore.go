package wallet

import (
	"crypto/ed25519"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gagliardetto/solana-go"

	"github.com/sinbandera-io/vehicular-control/internal/constants"
	"github.com/sinbandera-io/vehicular-control/internal/securefile"
)

// Keystore is the decrypted payload of the keystore file.
type Keystore struct {
	Version   int    `json:"version"`
	PublicKey string `json:"public_key"`
	SecretB58 string `json:"secret_b58"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (k *Keystore) privateKey() (solana.PrivateKey, error) {
	pk, err := solana.PrivateKeyFromBase58(k.SecretB58)
	if err != nil {
		return nil, errors.Wrap(err, "decode keystore secret")
	}
	if len(pk) != ed25519.PrivateKeySize {
		return nil, errors.Newf("keystore secret is %d bytes, want %d", len(pk), ed25519.PrivateKeySize)
	}
	if pk.PublicKey().String() != k.PublicKey {
		return nil, errors.New("keystore public key does not match secret")
	}
	return pk, nil
}

// KeystoreStore locates and encrypts the keystore file.
type KeystoreStore struct {
	Path string
	Opt  securefile.Options
}

// NewKeystoreStore uses path, or the canonical state path when path is empty.
func NewKeystoreStore(path string) (*KeystoreStore, error) {
	if path == "" {
		p, err := securefile.StatePath(constants.KeystoreFile)
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &KeystoreStore{
		Path: path,
		Opt:  securefile.Options{AAD: []byte(constants.KeystoreAAD)},
	}, nil
}

func (s *KeystoreStore) Load(password []byte) (*Keystore, error) {
	ks, err := securefile.ReadEncryptedJSON[Keystore](s.Path, password, s.Opt)
	if err != nil {
		return nil, err
	}
	return &ks, nil
}

func (s *KeystoreStore) Save(key solana.PrivateKey, password []byte) (*Keystore, error) {
	ks := Keystore{
		Version:   constants.SchemaV1,
		PublicKey: key.PublicKey().String(),
		SecretB58: key.String(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := securefile.WriteEncryptedJSON(s.Path, ks, password, s.Opt); err != nil {
		return nil, err
	}
	return &ks, nil
}

// ImportKeygenFile encrypts a solana-keygen JSON keypair into the keystore.
func (s *KeystoreStore) ImportKeygenFile(keygenPath string, password []byte) (*Keystore, error) {
	if len(password) == 0 {
		return nil, errors.New("keystore passphrase must not be empty")
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(keygenPath)
	if err != nil {
		return nil, errors.Wrapf(err, "read keygen file %s", keygenPath)
	}
	return s.Save(key, password)
}
