package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// KeyProvider derives a single account from a raw hex private key.
// This is the closest analogue of an injected wallet with one unlocked
// account; the account set never changes.
type KeyProvider struct {
	address string
}

// NewKeyProvider decodes privateKeyHex (with or without 0x prefix) and
// derives its address.
func NewKeyProvider(privateKeyHex string) (*KeyProvider, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)
	return &KeyProvider{address: strings.ToLower(addr.Hex())}, nil
}

func (p *KeyProvider) Name() string { return "local-key" }

func (p *KeyProvider) Accounts(ctx context.Context) ([]string, error) {
	return []string{p.address}, nil
}

func (p *KeyProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	return p.Accounts(ctx)
}

// Watch never emits; the channel closes with the context.
func (p *KeyProvider) Watch(ctx context.Context) (<-chan []string, error) {
	ch := make(chan []string)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
