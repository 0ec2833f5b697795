package wallet

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func lightKeystore(t *testing.T) *keystore.KeyStore {
	t.Helper()
	// Light scrypt params keep account creation fast in tests
	return keystore.NewKeyStore(t.TempDir(), keystore.LightScryptN, keystore.LightScryptP)
}

func TestKeystoreProvider_Accounts(t *testing.T) {
	ks := lightKeystore(t)
	acct, err := ks.NewAccount("test")
	require.NoError(t, err)

	p := newKeystoreProvider(ks, zap.NewNop())
	accts, err := p.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accts, 1)

	want := strings.ToLower(acct.Address.Hex())
	assert.Equal(t, want, accts[0])
	assert.True(t, strings.HasPrefix(accts[0], "0x"))
	assert.Equal(t, accts[0], strings.ToLower(accts[0]))
}

func TestKeystoreProvider_RequestAccountsEmpty(t *testing.T) {
	p := newKeystoreProvider(lightKeystore(t), zap.NewNop())

	_, err := p.RequestAccounts(context.Background())
	assert.Error(t, err)
}

func TestKeystoreProvider_RequestAccounts(t *testing.T) {
	ks := lightKeystore(t)
	_, err := ks.NewAccount("test")
	require.NoError(t, err)
	_, err = ks.NewAccount("test")
	require.NoError(t, err)

	p := newKeystoreProvider(ks, zap.NewNop())
	accts, err := p.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, accts, 2)
}

func TestKeystoreProvider_WatchStopsWithContext(t *testing.T) {
	p := newKeystoreProvider(lightKeystore(t), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := p.Watch(ctx)
	require.NoError(t, err)

	cancel()
	for range ch {
		// Drain whatever was in flight until the channel closes
	}
}

func TestNewKeystoreProvider_EmptyDir(t *testing.T) {
	_, err := NewKeystoreProvider("", zap.NewNop())
	assert.Error(t, err)
}

func TestKeyProvider_DerivesAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	keyHex := hex.EncodeToString(crypto.FromECDSA(key))
	want := strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())

	p, err := NewKeyProvider(keyHex)
	require.NoError(t, err)

	accts, err := p.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accts, 1)
	assert.Equal(t, want, accts[0])

	// RequestAccounts returns the same single account
	requested, err := p.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, accts, requested)
}

func TestKeyProvider_AcceptsHexPrefix(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	keyHex := hex.EncodeToString(crypto.FromECDSA(key))

	plain, err := NewKeyProvider(keyHex)
	require.NoError(t, err)
	prefixed, err := NewKeyProvider("0x" + keyHex)
	require.NoError(t, err)

	a, _ := plain.Accounts(context.Background())
	b, _ := prefixed.Accounts(context.Background())
	assert.Equal(t, a, b)
}

func TestKeyProvider_RejectsGarbage(t *testing.T) {
	_, err := NewKeyProvider("not-a-key")
	assert.Error(t, err)
}

func TestKeyProvider_WatchNeverEmits(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	p, err := NewKeyProvider(hex.EncodeToString(crypto.FromECDSA(key)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := p.Watch(ctx)
	require.NoError(t, err)

	cancel()
	_, open := <-ch
	assert.False(t, open)
}
