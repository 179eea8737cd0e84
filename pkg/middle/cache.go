package middle

import (
	"net/http"
	"strings"

	"github.com/regland/regland/pkg/cache"
	zap "go.uber.org/zap"
)

// CachedResponse is a successful GET response kept by ResponseCache.
type CachedResponse struct {
	ContentType string
	Body        []byte
}

// ResponseCache serves repeated GET requests under prefix from store. Only
// 200 responses without "Cache-Control: no-store" are kept. The key covers
// the path and the sorted query, so parameter order in the URL does not
// matter. A request carrying "Cache-Control: no-cache" bypasses the lookup
// but refreshes the entry.
func ResponseCache(store cache.Store[CachedResponse], prefix string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			key := cache.Key("response", r.URL.Path, r.URL.Query().Encode())
			if !strings.Contains(r.Header.Get("Cache-Control"), "no-cache") {
				if hit, ok := store.Get(key); ok {
					if hit.ContentType != "" {
						w.Header().Set("Content-Type", hit.ContentType)
					}
					w.Header().Set("X-Cache", "HIT")
					w.WriteHeader(http.StatusOK)
					w.Write(hit.Body)
					return
				}
			}

			w.Header().Set("X-Cache", "MISS")
			wrapped := wrapResponseWriter(w)
			wrapped.capture = true
			next.ServeHTTP(wrapped, r)

			if wrapped.Status() != http.StatusOK || strings.Contains(w.Header().Get("Cache-Control"), "no-store") {
				return
			}
			store.Add(key, CachedResponse{
				ContentType: w.Header().Get("Content-Type"),
				Body:        append([]byte(nil), wrapped.body.Bytes()...),
			})
			logger.Debug("Response cached",
				zap.String("path", r.URL.Path),
				zap.Int("bytes", wrapped.body.Len()),
			)
		})
	}
}
