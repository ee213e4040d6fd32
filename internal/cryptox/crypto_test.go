package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	key1 := DeriveKey([]byte("secret-password"), []byte("fixed-salt"))
	key2 := DeriveKey([]byte("secret-password"), []byte("fixed-salt"))

	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 32)
	assert.Equal(t, "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39", hex.EncodeToString(key1))
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	key1 := DeriveKey([]byte("secret-password"), []byte("salt-1"))
	key2 := DeriveKey([]byte("secret-password"), []byte("salt-2"))
	assert.NotEqual(t, key1, key2)
}

type event struct {
	Type string `json:"type"`
	IP   string `json:"ip"`
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("audit-key"), DefaultSalt)

	env, err := Seal(event{Type: "login_success", IP: "1.2.3.4"}, key)
	require.NoError(t, err)
	assert.Equal(t, 1, env.Version)
	assert.Len(t, env.Nonce, 12)
	assert.NotContains(t, string(env.Ciphertext), "login_success")

	var got event
	require.NoError(t, Open(env, key, &got))
	assert.Equal(t, event{Type: "login_success", IP: "1.2.3.4"}, got)
}

func TestSeal_FreshNonce(t *testing.T) {
	key := DeriveKey([]byte("audit-key"), DefaultSalt)
	a, err := Seal("x", key)
	require.NoError(t, err)
	b, err := Seal("x", key)
	require.NoError(t, err)
	assert.NotEqual(t, a.Nonce, b.Nonce)
}

func TestOpen_WrongKey(t *testing.T) {
	env, err := Seal("payload", DeriveKey([]byte("k1"), DefaultSalt))
	require.NoError(t, err)

	var out string
	assert.Error(t, Open(env, DeriveKey([]byte("k2"), DefaultSalt), &out))
}

func TestOpen_BadEnvelope(t *testing.T) {
	key := DeriveKey([]byte("k"), DefaultSalt)
	var out string
	assert.ErrorIs(t, Open(nil, key, &out), ErrInvalidEnvelope)
	assert.ErrorIs(t, Open(&Envelope{Nonce: []byte{1}}, key, &out), ErrInvalidEnvelope)
}

func TestSeal_BadKey(t *testing.T) {
	_, err := Seal("x", []byte("short"))
	assert.Error(t, err)
}
