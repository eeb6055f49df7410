package middleware

import "net/http"

const (
	allowedHeaders = "authorization, x-client-info, apikey, content-type"
	allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
)

// CORSMiddleware lets browser clients on any origin call the API. Preflight
// requests are answered directly with "ok".
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
