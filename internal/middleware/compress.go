// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// gzipWriterPool pools gzip.Writer instances to reduce allocations.
var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(io.Discard)
	},
}

// compressibleContentTypes lists non-text content types worth compressing.
var compressibleContentTypes = []string{
	"application/javascript",
	"application/json",
	"application/xml",
	"image/svg+xml",
}

// Compress buffers the response and gzips it when the client accepts gzip,
// the body is at least minSize bytes and the content type is textual.
func Compress(minSize int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			sw := &selectiveWriter{ResponseWriter: w, minSize: minSize}
			next.ServeHTTP(sw, r)
			sw.flush()
		})
	}
}

// selectiveWriter buffers a response and compresses it on flush if appropriate.
type selectiveWriter struct {
	http.ResponseWriter
	minSize    int
	buffer     []byte
	statusCode int
}

func (sw *selectiveWriter) WriteHeader(statusCode int) {
	if sw.statusCode == 0 {
		sw.statusCode = statusCode
	}
}

func (sw *selectiveWriter) Write(b []byte) (int, error) {
	sw.buffer = append(sw.buffer, b...)
	return len(b), nil
}

func (sw *selectiveWriter) flush() {
	h := sw.Header()
	shouldCompress := len(sw.buffer) >= sw.minSize &&
		h.Get("Content-Encoding") == "" &&
		isCompressible(h.Get("Content-Type"))

	if shouldCompress {
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")
		h.Del("Content-Length")
	}

	if sw.statusCode != 0 {
		sw.ResponseWriter.WriteHeader(sw.statusCode)
	}
	if len(sw.buffer) == 0 {
		return
	}

	if !shouldCompress {
		_, _ = sw.ResponseWriter.Write(sw.buffer)
		return
	}

	gz := gzipWriterPool.Get().(*gzip.Writer)
	gz.Reset(sw.ResponseWriter)
	_, _ = gz.Write(sw.buffer)
	_ = gz.Close()
	gzipWriterPool.Put(gz)
}

// isCompressible checks if the content type should be compressed.
func isCompressible(contentType string) bool {
	if contentType == "" {
		return false
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	if strings.HasPrefix(contentType, "text/") {
		return true
	}
	for _, ct := range compressibleContentTypes {
		if contentType == ct {
			return true
		}
	}
	return false
}
