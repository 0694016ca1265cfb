package http

import (
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type payloadContextKey struct{}

// Headers that carry credentials for the AI providers this service talks to.
var sensitiveHeaders = map[string]struct{}{
	"Authorization":  {},
	"X-Api-Key":      {},
	"X-Goog-Api-Key": {},
}

type logTransport struct {
	transport http.RoundTripper
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Any("headers", redactHeaders(req.Header)),
	}

	if payload, ok := ctx.Value(payloadContextKey{}).([]byte); ok && len(payload) > 0 {
		fields = append(fields, zap.Int("payload_bytes", len(payload)))
	}

	ctxzap.Debug(ctx, "HTTP outbound request", fields...)

	return t.transport.RoundTrip(req)
}

func redactHeaders(h http.Header) http.Header {
	clean := make(http.Header, len(h))
	for key, values := range h {
		if _, sensitive := sensitiveHeaders[http.CanonicalHeaderKey(key)]; sensitive {
			clean.Set(key, "[REDACTED]")
			continue
		}
		clean[key] = values
	}
	return clean
}

// WithRequestLogging logs outbound requests at debug level with credential
// headers redacted.
func WithRequestLogging() HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &logTransport{
			transport: rt,
		}
	})
}
