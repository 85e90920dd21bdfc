// Package securefile reads and writes local state files: plain JSON for
// non-secret state, and an encrypted JSON envelope (Argon2id KDF,
// XChaCha20-Poly1305 AEAD) for key material. Writes are atomic.
package securefile

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/sinbandera-io/vehicular-control/internal/constants"
)

// ErrInvalidPasswordOrCorrupt is returned when decryption fails.
var ErrInvalidPasswordOrCorrupt = errors.New("invalid password or corrupted file")

// Envelope is the on-disk form of an encrypted file.
type Envelope struct {
	Version int `json:"version"`

	ArgonTime    uint32 `json:"argon_time"`
	ArgonMemory  uint32 `json:"argon_memory_kib"`
	ArgonThreads uint8  `json:"argon_threads"`
	ArgonKeyLen  uint32 `json:"argon_key_len"`

	SaltB64  string `json:"salt_b64"`
	NonceB64 string `json:"nonce_b64"`
	CTB64    string `json:"ct_b64"`
}

var DefaultKDF = Envelope{
	Version:      1,
	ArgonTime:    2,
	ArgonMemory:  64 * 1024,
	ArgonThreads: 1,
	ArgonKeyLen:  32,
}

// Options controls encryption and permissions.
type Options struct {
	KDF Envelope

	FilePerm      os.FileMode
	DirectoryPerm os.FileMode

	// AAD must be identical on read and write.
	AAD []byte
}

func mergeOptions(opt ...Options) Options {
	o := Options{
		KDF:           DefaultKDF,
		FilePerm:      constants.FilePerm,
		DirectoryPerm: constants.DirectoryPerm,
	}
	if len(opt) == 0 {
		return o
	}
	in := opt[0]
	if in.KDF.Version != 0 {
		o.KDF = in.KDF
	}
	if in.FilePerm != 0 {
		o.FilePerm = in.FilePerm
	}
	if in.DirectoryPerm != 0 {
		o.DirectoryPerm = in.DirectoryPerm
	}
	if in.AAD != nil {
		o.AAD = in.AAD
	}
	return o
}

// WriteJSON marshals v and writes it atomically to path.
func WriteJSON[T any](path string, v T, opt ...Options) error {
	o := mergeOptions(opt...)
	if err := os.MkdirAll(filepath.Dir(path), o.DirectoryPerm); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return WriteFileAtomic(path, b, o.FilePerm)
}

// ReadJSON reads path into T. A missing file yields an error matching os.ErrNotExist.
func ReadJSON[T any](path string) (T, error) {
	var out T
	b, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read file: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("unmarshal json: %w", err)
	}
	return out, nil
}

// WriteEncryptedJSON marshals v, encrypts it under password and writes it atomically.
func WriteEncryptedJSON[T any](path string, v T, password []byte, opt ...Options) error {
	o := mergeOptions(opt...)
	if o.KDF.Version != 1 {
		return fmt.Errorf("unsupported kdf version: %d", o.KDF.Version)
	}

	if err := os.MkdirAll(filepath.Dir(path), o.DirectoryPerm); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}

	plain, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("rand salt: %w", err)
	}

	key := argon2.IDKey(password, salt, o.KDF.ArgonTime, o.KDF.ArgonMemory, o.KDF.ArgonThreads, o.KDF.ArgonKeyLen)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("aead: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("rand nonce: %w", err)
	}

	out := o.KDF
	out.SaltB64 = base64.StdEncoding.EncodeToString(salt)
	out.NonceB64 = base64.StdEncoding.EncodeToString(nonce)
	out.CTB64 = base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plain, o.AAD))

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return WriteFileAtomic(path, b, o.FilePerm)
}

// ReadEncryptedJSON decrypts path with password and unmarshals the payload into T.
func ReadEncryptedJSON[T any](path string, password []byte, opt ...Options) (T, error) {
	var zero T
	o := mergeOptions(opt...)

	env, err := ReadJSON[Envelope](path)
	if err != nil {
		return zero, err
	}
	if env.Version != 1 {
		return zero, fmt.Errorf("unsupported file version: %d", env.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(env.SaltB64)
	if err != nil {
		return zero, fmt.Errorf("decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.NonceB64)
	if err != nil {
		return zero, fmt.Errorf("decode nonce: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(env.CTB64)
	if err != nil {
		return zero, fmt.Errorf("decode ciphertext: %w", err)
	}

	key := argon2.IDKey(password, salt, env.ArgonTime, env.ArgonMemory, env.ArgonThreads, env.ArgonKeyLen)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return zero, fmt.Errorf("aead: %w", err)
	}

	plain, err := aead.Open(nil, nonce, ct, o.AAD)
	if err != nil {
		return zero, ErrInvalidPasswordOrCorrupt
	}

	var out T
	if err := json.Unmarshal(plain, &out); err != nil {
		return zero, fmt.Errorf("unmarshal json: %w", err)
	}
	return out, nil
}

// WriteFileAtomic writes data to a sibling tmp file and renames it over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// StatePath returns <home>/.config/<app>/<env?>/<filename>, where env comes from VC_ENV.
func StatePath(filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", errors.New("filename must not be empty")
	}
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filename), nil
}

// StateDir resolves the per-environment state directory.
//
// Priority:
//  1. SNAP_REAL_HOME (snap installs)
//  2. HOME
//  3. os.UserConfigDir()
func StateDir() (string, error) {
	envFolder, err := EnvFolder()
	if err != nil {
		return "", err
	}

	join := func(base string) string {
		dir := filepath.Join(base, ".config", constants.AppName)
		if envFolder != "" {
			dir = filepath.Join(dir, envFolder)
		}
		return dir
	}

	if realHome := os.Getenv("SNAP_REAL_HOME"); realHome != "" {
		return join(realHome), nil
	}
	if home := os.Getenv("HOME"); home != "" {
		return join(home), nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("UserConfigDir: %w", err)
	}
	return filepath.Join(dir, constants.AppName, envFolder), nil
}

// EnvFolder maps VC_ENV to a sub-folder name; empty means production.
func EnvFolder() (string, error) {
	raw := strings.TrimSpace(os.Getenv(constants.EnvSelector))
	switch strings.ToLower(raw) {
	case "", "prod", "production":
		return "", nil
	case "local":
		return "local", nil
	case "dev", "develop", "development":
		return "develop", nil
	default:
		return "", fmt.Errorf("invalid %s %q (allowed: local, develop, empty)", constants.EnvSelector, raw)
	}
}
