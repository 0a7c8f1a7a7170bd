// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func writeBody(contentType, body string, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func TestCompress(t *testing.T) {
	long := strings.Repeat("<p>hello minispace</p>", 100)

	tests := []struct {
		name        string
		accept      string
		contentType string
		body        string
		wantGzip    bool
	}{
		{"html", "gzip, deflate", "text/html; charset=utf-8", long, true},
		{"no accept", "", "text/html; charset=utf-8", long, false},
		{"small body", "gzip", "text/html", "<p>x</p>", false},
		{"image", "gzip", "image/png", long, false},
		{"svg", "gzip", "image/svg+xml", long, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/alice", nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Encoding", tt.accept)
			}
			rr := httptest.NewRecorder()
			Compress(1024)(writeBody(tt.contentType, tt.body, http.StatusOK)).ServeHTTP(rr, req)

			gotGzip := rr.Header().Get("Content-Encoding") == "gzip"
			if gotGzip != tt.wantGzip {
				t.Fatalf("gzip = %v; want %v", gotGzip, tt.wantGzip)
			}

			body := rr.Body.String()
			if gotGzip {
				zr, err := gzip.NewReader(rr.Body)
				if err != nil {
					t.Fatalf("gzip.NewReader: %v", err)
				}
				b, err := io.ReadAll(zr)
				if err != nil {
					t.Fatalf("reading gzip body: %v", err)
				}
				body = string(b)
			}
			if body != tt.body {
				t.Errorf("body mismatch: got %d bytes, want %d", len(body), len(tt.body))
			}
		})
	}
}

func TestCompress_KeepsStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ghost", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()

	Compress(1024)(writeBody("text/plain", "not found", http.StatusNotFound)).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Status = %d; want 404", rr.Code)
	}
	if rr.Body.String() != "not found" {
		t.Errorf("Body = %q", rr.Body.String())
	}
}
