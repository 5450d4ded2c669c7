// SPDX-License-Identifier: MPL-2.0

package platform

import "testing"

func TestTripleFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos, goarch string
		want         string
	}{
		{Linux, "amd64", "x86_64-unknown-linux-gnu"},
		{Darwin, "arm64", "aarch64-apple-darwin"},
		{Windows, "amd64", "x86_64-pc-windows-msvc"},
		{Windows, "386", "i686-pc-windows-msvc"},
		{"freebsd", "amd64", "x86_64-unknown-freebsd"},
		{"js", "wasm", "wasm32-unknown-unknown"},
		{Linux, "loong64", "loong64-unknown-linux-gnu"},
	}

	for _, tt := range tests {
		if got := TripleFor(tt.goos, tt.goarch); got != tt.want {
			t.Errorf("TripleFor(%q, %q) = %q, want %q", tt.goos, tt.goarch, got, tt.want)
		}
	}
}

func TestHostTriple_NotEmpty(t *testing.T) {
	t.Parallel()

	if HostTriple() == "" {
		t.Fatal("HostTriple() returned an empty triple")
	}
}
