package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yanizio/dbroute/internal/vault"
)

// SecretGetter fetches one key of a KV secret.  *vault.Client satisfies it.
type SecretGetter interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// secretTTL bounds how long a resolved password is reused.
const secretTTL = 10 * time.Minute

// ResolvePassword returns the literal password, or fetches it through
// secrets when it is a `vault:` reference.  secrets may be nil when no
// reference is configured.
func (d Database) ResolvePassword(ctx context.Context, secrets SecretGetter) (string, error) {
	path, key, ok := vault.ParseRef(d.Password)
	if !ok {
		return d.Password, nil
	}
	if secrets == nil {
		return "", fmt.Errorf("database.password references vault but no vault client is configured")
	}
	return secrets.GetKV(ctx, path, key, secretTTL)
}

// ResolveDSN injects the resolved password into the DSN template.
func (d Database) ResolveDSN(ctx context.Context, secrets SecretGetter) (string, error) {
	pw, err := d.ResolvePassword(ctx, secrets)
	if err != nil {
		return "", err
	}
	if !strings.Contains(d.DSN, "%s") {
		return d.DSN, nil
	}
	return fmt.Sprintf(d.DSN, pw), nil
}
