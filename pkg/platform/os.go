// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// archNames maps GOARCH values onto the architecture component of a triple.
var archNames = map[string]string{
	"amd64":   "x86_64",
	"386":     "i686",
	"arm64":   "aarch64",
	"arm":     "armv7",
	"riscv64": "riscv64gc",
	"ppc64le": "powerpc64le",
	"s390x":   "s390x",
	"wasm":    "wasm32",
}

// HostTriple returns the target triple of the machine running this process.
func HostTriple() string {
	return TripleFor(runtime.GOOS, runtime.GOARCH)
}

// TripleFor builds the target triple for a GOOS/GOARCH pair. Unknown
// architectures keep their GOARCH spelling.
func TripleFor(goos, goarch string) string {
	arch, ok := archNames[goarch]
	if !ok {
		arch = goarch
	}

	switch goos {
	case Linux:
		return arch + "-unknown-linux-gnu"
	case Darwin:
		return arch + "-apple-darwin"
	case Windows:
		return arch + "-pc-windows-msvc"
	case "js", "wasip1":
		return "wasm32-unknown-unknown"
	default:
		return arch + "-unknown-" + goos
	}
}
