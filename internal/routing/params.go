package routing

import (
	"context"

	"github.com/yanizio/dbroute/internal/dbroute"
)

type ctxKey int

const paramsKey ctxKey = iota

// WithParams returns ctx carrying the route defaults of the matched entry.
func WithParams(ctx context.Context, p dbroute.Params) context.Context {
	return context.WithValue(ctx, paramsKey, p)
}

// ParamsFromContext returns the route defaults set by the dispatcher.
func ParamsFromContext(ctx context.Context) (dbroute.Params, bool) {
	p, ok := ctx.Value(paramsKey).(dbroute.Params)
	return p, ok
}

// Locale returns the locale of the matched route or "".
func Locale(ctx context.Context) string {
	p, _ := ParamsFromContext(ctx)
	return p.Locale
}
