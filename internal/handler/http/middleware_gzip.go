package http

import (
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
)

var errInvalidGzipBody = errors.New("request body is not valid gzip")

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

var gzipReaderPool = sync.Pool{
	New: func() any {
		return new(gzip.Reader)
	},
}

// withGZip decompresses gzip request bodies and compresses responses for
// clients that accept gzip. Responses without a body and responses that
// already carry a Content-Encoding (the /metrics handler negotiates its own)
// are passed through untouched.
func withGZip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") && r.Body != nil {
			gr := gzipReaderPool.Get().(*gzip.Reader)
			if err := gr.Reset(r.Body); err != nil {
				gzipReaderPool.Put(gr)
				writeError(w, r, "withGZip", errors.Join(ErrInvalidJSON, errInvalidGzipBody, err))
				return
			}

			r.Body = &pooledReadCloser{Reader: gr, body: r.Body}
			r.Header.Del("Content-Encoding")
			r.ContentLength = -1
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gw := &gzipResponseWriter{ResponseWriter: w}
		defer gw.finish()

		next.ServeHTTP(gw, r)
	})
}

type pooledReadCloser struct {
	*gzip.Reader
	body io.Closer
	once sync.Once
}

func (p *pooledReadCloser) Close() error {
	var err error
	p.once.Do(func() {
		_ = p.Reader.Close()
		gzipReaderPool.Put(p.Reader)
		err = p.body.Close()
	})
	return err
}

// gzipResponseWriter decides on compression when the header is written and
// takes a pooled gzip.Writer only once the first body byte arrives.
type gzipResponseWriter struct {
	http.ResponseWriter

	wroteHeader bool
	passthrough bool
	gz          *gzip.Writer
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	h := w.Header()
	if h.Get("Content-Encoding") != "" || statusCode == http.StatusNoContent || statusCode == http.StatusNotModified {
		w.passthrough = true
	} else {
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")
		h.Del("Content-Length")
	}

	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.passthrough {
		return w.ResponseWriter.Write(data)
	}

	if w.gz == nil {
		w.gz = gzipWriterPool.Get().(*gzip.Writer)
		w.gz.Reset(w.ResponseWriter)
	}
	return w.gz.Write(data)
}

// finish flushes the compressed stream. A handler that wrote a header but no
// body still gets a valid, empty gzip stream.
func (w *gzipResponseWriter) finish() {
	if w.passthrough || !w.wroteHeader {
		return
	}
	if w.gz == nil {
		w.gz = gzipWriterPool.Get().(*gzip.Writer)
		w.gz.Reset(w.ResponseWriter)
	}
	_ = w.gz.Close()
	gzipWriterPool.Put(w.gz)
	w.gz = nil
}
