package wallet

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"go.uber.org/zap"
)

// KeystoreProvider serves accounts from a go-ethereum keystore
// directory and relays keystore wallet events as account changes.
type KeystoreProvider struct {
	ks     *keystore.KeyStore
	logger *zap.Logger
}

// NewKeystoreProvider opens the keystore at dir, creating it when it
// does not exist yet. An empty keystore is fine here; the connect flow
// treats a provider with no accounts as an absent capability.
func NewKeystoreProvider(dir string, logger *zap.Logger) (*KeystoreProvider, error) {
	if dir == "" {
		return nil, fmt.Errorf("keystore directory not configured")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to prepare keystore directory: %w", err)
	}
	ks := keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP)
	return newKeystoreProvider(ks, logger), nil
}

func newKeystoreProvider(ks *keystore.KeyStore, logger *zap.Logger) *KeystoreProvider {
	return &KeystoreProvider{ks: ks, logger: logger}
}

func (p *KeystoreProvider) Name() string { return "keystore" }

// Accounts lists the keystore accounts as lowercase hex addresses.
func (p *KeystoreProvider) Accounts(ctx context.Context) ([]string, error) {
	accts := p.ks.Accounts()
	out := make([]string, 0, len(accts))
	for _, a := range accts {
		out = append(out, strings.ToLower(a.Address.Hex()))
	}
	return out, nil
}

func (p *KeystoreProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	out, err := p.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("keystore holds no accounts")
	}
	return out, nil
}

// Watch subscribes to keystore wallet events and emits the refreshed
// account list on every arrival or departure.
func (p *KeystoreProvider) Watch(ctx context.Context) (<-chan []string, error) {
	events := make(chan accounts.WalletEvent, 16)
	sub := p.ks.Subscribe(events)

	out := make(chan []string, 1)
	go func() {
		defer close(out)
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-sub.Err():
				if err != nil {
					p.logger.Warn("keystore subscription failed", zap.Error(err))
				}
				return
			case <-events:
				accts, err := p.Accounts(ctx)
				if err != nil {
					continue
				}
				select {
				case out <- accts:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
