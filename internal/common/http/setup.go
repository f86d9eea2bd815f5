package http

import (
	"net/http"

	"github.com/nkorchagin/datahub/internal/common/constants"
	"github.com/nkorchagin/datahub/internal/common/httpmetrics"
	"github.com/nkorchagin/datahub/internal/common/logger"
)

// BuildBaseHandler wraps the application handler with the shared middleware
// chain. Order matters: security headers and recovery first, then trace and
// size limits, metrics innermost so recorded paths carry trace context.
func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	metrics := httpmetrics.Wrap(handler)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return SecurityHeadersMiddleware(
		RecoveryMiddleware(log)(
			TraceIDMiddleware(
				maxRequestSize(metrics),
			),
		),
	)
}
