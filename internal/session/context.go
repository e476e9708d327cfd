package session

import "context"

type ctxKey struct{}

// Into кладёт проверенные claims в ctx.
func Into(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext возвращает claims, положенные Into, либо nil.
func FromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(ctxKey{}).(*Claims)
	return c
}
