package thttp

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ridge/quarry/tlog"
	"go.uber.org/zap"
)

// Log is a middleware that logs every request at debug level once it is
// handled
func Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ctx := tlog.With(r.Context(), zap.String("method", r.Method), zap.String("url", r.URL.String()))
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r.WithContext(ctx))
		tlog.Get(ctx).Debug("HTTP request handled", zap.Int("statusCode", sw.status), zap.Duration("elapsed", time.Since(started)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	return sw.ResponseWriter.Write(b)
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// Metrics returns the handler of the GET /metrics endpoint, exposing the
// metrics of the default Prometheus registry
func Metrics() http.Handler {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return Log(Recover(router))
}
