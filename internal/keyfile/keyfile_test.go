package keyfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/benjivesterby/go-speck/speck"
)

func newKeyFile(t *testing.T) *KeyFile {
	skey, vkey, err := speck.KeyGen(nil)
	require.NoError(t, err)
	return &KeyFile{
		Version: Version,
		Params:  speck.Speck1FastKeccakKeccak.Name(),
		Public:  vkey,
		Secret:  skey,
	}
}

func TestKeyFileSerialize(t *testing.T) {
	k := newKeyFile(t)
	b, err := k.Serialize()
	require.NoError(t, err)

	nk := new(KeyFile)
	require.NoError(t, nk.Deserialize(b))
	assert.Equal(t, k, nk)
	require.NoError(t, nk.Validate())

	pub := k.PublicOnly()
	b, err = pub.Serialize()
	require.NoError(t, err)
	np := new(KeyFile)
	require.NoError(t, np.Deserialize(b))
	assert.Nil(t, np.Secret)
	assert.Equal(t, k.Fingerprint(), np.Fingerprint())
}

func TestKeyFileValidate(t *testing.T) {
	k := newKeyFile(t)

	k.Version = 7
	assert.True(t, xerrors.Is(k.Validate(), ErrBadVersion))
	k.Version = Version

	k.Params = "speck-9-huge"
	assert.True(t, xerrors.Is(k.Validate(), speck.ErrUnknownParams))
	k.Params = speck.Speck1ShortAESAES.Name() + "-x1"
	assert.NoError(t, k.Validate())

	k.Public = k.Public[1:]
	assert.True(t, xerrors.Is(k.Validate(), ErrKeySize))
}

func TestFingerprint(t *testing.T) {
	k := newKeyFile(t)
	fp := k.Fingerprint()
	assert.Len(t, fp, 32)
	assert.Len(t, FingerprintString(fp), 16)

	k2 := newKeyFile(t)
	assert.NotEqual(t, fp, k2.Fingerprint())
}

func TestRepo(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "repo")
	r, err := NewRepo(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, r.Path())

	k := newKeyFile(t)
	require.NoError(t, r.Put("alice", k))
	assert.Error(t, r.Put("alice", k))
	assert.True(t, xerrors.Is(r.Put("bob", k.PublicOnly()), ErrNoSecret))

	nk, err := r.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, k, nk)

	pub, err := r.GetPublic("alice")
	require.NoError(t, err)
	assert.Nil(t, pub.Secret)
	assert.Equal(t, k.Public, pub.Public)

	// by path
	pub2, err := r.GetPublic(filepath.Join(dir, "alice"+PublicExt))
	require.NoError(t, err)
	assert.Equal(t, pub, pub2)

	// public files cannot be used for signing
	_, err = Load(filepath.Join(dir, "alice"+PublicExt))
	require.NoError(t, err)
	_, err = r.Get("missing")
	assert.Error(t, err)

	require.NoError(t, r.Put("carol", newKeyFile(t)))
	names, err := r.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, names)

	st, err := os.Stat(filepath.Join(dir, "alice"+PrivateExt))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), st.Mode().Perm())
}

func TestSignatureFile(t *testing.T) {
	k := newKeyFile(t)
	p, err := speck.ParamsByName(k.Params)
	require.NoError(t, err)
	msg := []byte("signed through a file")
	sig, err := speck.Sign(p, nil, k.Secret, msg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "msg.sig")
	s := &SigFile{
		Params:      p.Name(),
		Fingerprint: k.Fingerprint(),
		Signature:   sig,
	}
	require.NoError(t, WriteSignature(path, s))

	ns, err := ReadSignature(path)
	require.NoError(t, err)
	assert.Equal(t, s, ns)
	assert.True(t, speck.Verify(p, k.Public, msg, ns.Signature))

	require.NoError(t, os.WriteFile(path, []byte{0xff, 0x00}, 0644))
	_, err = ReadSignature(path)
	assert.Error(t, err)
}
