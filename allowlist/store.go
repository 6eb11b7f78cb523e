// Package allowlist holds the administrator-curated identities permitted to
// register as owners. An entry is consumed by a successful registration.
package allowlist

import "context"

// Store persists the allow-list and the administrator singleton.
type Store interface {
	GetAdministrator(ctx context.Context) (string, error)
	SetAdministrator(ctx context.Context, admin string) error
	Allow(ctx context.Context, identity string) error
	IsAllowed(ctx context.Context, identity string) (bool, error)
}
