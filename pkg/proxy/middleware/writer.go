package middleware

import "net/http"

// statusRecorder remembers the status and size of a response. It forwards
// Flush so event streams keep flowing through the middleware chain.
type statusRecorder struct {
	http.ResponseWriter
	status    int
	size      int
	flushes   int
	committed bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.committed {
		return
	}
	sr.status = code
	sr.committed = true
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	sr.WriteHeader(http.StatusOK)
	n, err := sr.ResponseWriter.Write(b)
	sr.size += n
	return n, err
}

// Flush commits an implicit 200 and flushes the wrapped writer if it can.
func (sr *statusRecorder) Flush() {
	sr.WriteHeader(http.StatusOK)
	sr.flushes++
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}
