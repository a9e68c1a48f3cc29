// Package keyfile stores key pairs and signatures on disk as CBOR
// envelopes. A repository is a directory holding, for each key name, a
// private file (name.key) and a public file (name.pub).
package keyfile

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/zeebo/blake3"
	"golang.org/x/xerrors"

	"github.com/benjivesterby/go-speck/speck"
)

const (
	Version = 1

	PrivateExt = ".key"
	PublicExt  = ".pub"
)

var (
	ErrBadVersion = xerrors.New("unsupported key file version")
	ErrKeySize    = xerrors.New("key size mismatch")
	ErrNoSecret   = xerrors.New("key file holds no signing key")
)

// KeyFile is the on-disk envelope of a key pair. Secret is absent from
// public files.
type KeyFile struct {
	Version uint8
	Params  string
	Public  []byte
	Secret  []byte `cbor:",omitempty"`
}

func (k *KeyFile) Serialize() ([]byte, error) {
	return cbor.Marshal(k)
}

func (k *KeyFile) Deserialize(b []byte) error {
	return cbor.Unmarshal(b, k)
}

// Validate checks the version, the parameter set name and the key
// sizes.
func (k *KeyFile) Validate() error {
	if k.Version != Version {
		return xerrors.Errorf("version %d: %w", k.Version, ErrBadVersion)
	}
	if _, err := speck.ParamsByName(k.Params); err != nil {
		return err
	}
	if len(k.Public) != speck.VerifyingKeySize() {
		return xerrors.Errorf("public key has %d bytes: %w", len(k.Public), ErrKeySize)
	}
	if k.Secret != nil && len(k.Secret) != speck.SigningKeySize() {
		return xerrors.Errorf("signing key has %d bytes: %w", len(k.Secret), ErrKeySize)
	}
	return nil
}

// PublicOnly returns a copy of k without the signing key.
func (k *KeyFile) PublicOnly() *KeyFile {
	return &KeyFile{
		Version: k.Version,
		Params:  k.Params,
		Public:  append([]byte(nil), k.Public...),
	}
}

// Fingerprint returns the BLAKE3 digest of the verifying key.
func (k *KeyFile) Fingerprint() []byte {
	return Fingerprint(k.Public)
}

func Fingerprint(vkey []byte) []byte {
	h := blake3.Sum256(vkey)
	return h[:]
}

// FingerprintString is the short hex form shown to users.
func FingerprintString(fp []byte) string {
	if len(fp) > 8 {
		fp = fp[:8]
	}
	return hex.EncodeToString(fp)
}

// SigFile is the on-disk envelope of a signature.
type SigFile struct {
	Params      string
	Fingerprint []byte
	Signature   []byte
}

func (s *SigFile) Serialize() ([]byte, error) {
	return cbor.Marshal(s)
}

func (s *SigFile) Deserialize(b []byte) error {
	return cbor.Unmarshal(b, s)
}

// Repo is a key repository directory.
type Repo struct {
	path string
}

// NewRepo opens (creating it if needed) the repository at path; a
// leading "~" is expanded to the home directory.
func NewRepo(path string) (*Repo, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	err = os.MkdirAll(p, 0700)
	if err != nil {
		return nil, err
	}
	return &Repo{path: p}, nil
}

func (r *Repo) Path() string {
	return r.path
}

// Put stores a key pair under name; an existing key is never
// overwritten.
func (r *Repo) Put(name string, k *KeyFile) error {
	if k.Secret == nil {
		return ErrNoSecret
	}
	if err := k.Validate(); err != nil {
		return err
	}
	priv := r.join(name + PrivateExt)
	if _, err := os.Stat(priv); err == nil {
		return xerrors.Errorf("key %q already exists in %s", name, r.path)
	}

	b, err := k.Serialize()
	if err != nil {
		return err
	}
	if err := writeFile(priv, b, 0600); err != nil {
		return err
	}
	b, err = k.PublicOnly().Serialize()
	if err != nil {
		return err
	}
	return writeFile(r.join(name+PublicExt), b, 0644)
}

// Get loads the key pair stored under name.
func (r *Repo) Get(name string) (*KeyFile, error) {
	k, err := Load(r.join(name + PrivateExt))
	if err != nil {
		return nil, xerrors.Errorf("decoding key '%s': %w", name, err)
	}
	if k.Secret == nil {
		return nil, ErrNoSecret
	}
	return k, nil
}

// GetPublic loads a public key, given either the name of a key in the
// repository or the path of a key file.
func (r *Repo) GetPublic(nameOrPath string) (*KeyFile, error) {
	p := nameOrPath
	if _, err := os.Stat(p); err != nil {
		p = r.join(nameOrPath + PublicExt)
	}
	k, err := Load(p)
	if err != nil {
		return nil, err
	}
	return k.PublicOnly(), nil
}

// List returns the names of the stored key pairs, sorted.
func (r *Repo) List() ([]string, error) {
	entries, err := os.ReadDir(r.path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), PrivateExt) {
			names = append(names, strings.TrimSuffix(e.Name(), PrivateExt))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *Repo) join(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(r.path, filename)
}

// Load reads and validates a key file.
func Load(path string) (*KeyFile, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	k := new(KeyFile)
	if err := k.Deserialize(b); err != nil {
		return nil, err
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

func WriteSignature(path string, s *SigFile) error {
	p, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	b, err := s.Serialize()
	if err != nil {
		return err
	}
	return writeFile(p, b, 0644)
}

func ReadSignature(path string) (*SigFile, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	s := new(SigFile)
	if err := s.Deserialize(b); err != nil {
		return nil, xerrors.Errorf("decoding signature file %q: %w", path, err)
	}
	return s, nil
}

// Atomic write: the content goes to a temporary hidden file first,
// which is then moved into place.
func writeFile(file string, content []byte, perm os.FileMode) error {
	err := os.MkdirAll(filepath.Dir(file), 0700)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(file), "."+filepath.Base(file)+".tmp")
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Chmod(perm); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	f.Close()
	return os.Rename(f.Name(), file)
}
