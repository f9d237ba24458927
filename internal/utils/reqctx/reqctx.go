package reqctx

import "context"

type ctxKey struct{}

// WithRequestID 把请求ID挂到 context 上，供下游日志使用
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID 取请求ID，不存在时返回空串
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
