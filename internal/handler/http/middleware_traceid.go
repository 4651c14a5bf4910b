package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MKhiriev/go-identity-keeper/internal/utils"
)

const (
	traceIDHeader = "X-Trace-ID"
	// maxTraceIDLength caps caller supplied ids before they reach the logs.
	maxTraceIDLength = 64
)

// withTraceID attaches a request-scoped logger carrying trace_id and the
// client address. The id is taken from the X-Trace-ID header when present
// and generated otherwise; it is echoed back in the response.
func (h *Handler) withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" || len(traceID) > maxTraceIDLength {
			traceID = uuid.NewString()
		}

		l := h.logger.GetChildLogger()
		l.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("trace_id", traceID).Str("ip", utils.ClientIP(r))
		})
		r = r.WithContext(l.WithContext(r.Context()))

		w.Header().Set(traceIDHeader, traceID)
		next.ServeHTTP(w, r)
	})
}
