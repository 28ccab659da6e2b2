package errorboundary

import "context"

type renderContextKey struct{}

// WithRenderContext は描画時の付加情報を ctx に載せる
// 捕捉したエラーの RenderContext に記録される
func WithRenderContext(ctx context.Context, values map[string]any) context.Context {
	merged := make(map[string]any, len(values))
	for k, v := range RenderContext(ctx) {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}
	return context.WithValue(ctx, renderContextKey{}, merged)
}

// RenderContext は ctx に載せた付加情報のコピーを返す
func RenderContext(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	values, ok := ctx.Value(renderContextKey{}).(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
