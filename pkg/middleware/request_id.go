package middleware

import (
	"net/http"

	"github.com/kubev2v/pcap-query/pkg/requestid"
)

// RequestID keeps the request ID sent by the caller or generates one, and echoes it in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestid.HeaderName)
		if id == "" {
			id = requestid.Generate()
		}
		w.Header().Set(requestid.HeaderName, id)
		next.ServeHTTP(w, r.WithContext(requestid.ToContext(r.Context(), id)))
	})
}
