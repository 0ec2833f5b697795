// Package wallet exposes local signing accounts to the connect flow.
package wallet

import "context"

// Provider is the wallet capability the connect flow depends on. When
// no provider is configured the connect action is a no-op, so callers
// must tolerate a nil Provider.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string

	// RequestAccounts asks the provider for usable accounts, failing
	// when none are available.
	RequestAccounts(ctx context.Context) ([]string, error)

	// Accounts lists the currently available accounts without
	// prompting. An empty list is not an error.
	Accounts(ctx context.Context) ([]string, error)

	// Watch emits the full account list whenever it changes. The
	// channel closes when ctx is done or the provider stops watching.
	Watch(ctx context.Context) (<-chan []string, error)
}
