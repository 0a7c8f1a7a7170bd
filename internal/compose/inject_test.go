// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package compose

import "testing"

func TestInjectCSS(t *testing.T) {
	tests := []struct {
		name string
		html string
		css  string
		want string
	}{
		{"before head end", "<html><head><title>x</title></head><body></body></html>", "b{}",
			"<html><head><title>x</title><style>\nb{}\n</style>\n</head><body></body></html>"},
		{"upper case head", "<HEAD></HEAD>", "b{}", "<HEAD><style>\nb{}\n</style>\n</HEAD>"},
		{"no head", "<p>x</p>", "b{}", "<style>\nb{}\n</style>\n<p>x</p>"},
		{"empty css", "<head></head>", "  ", "<head></head>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := injectCSS(tt.html, tt.css); got != tt.want {
				t.Errorf("injectCSS() = %q; want %q", got, tt.want)
			}
		})
	}
}
