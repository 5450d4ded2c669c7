// SPDX-License-Identifier: MPL-2.0

package filename

import (
	"fmt"
	"io"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/torhovland/outguard/internal/unit"
)

// Metadata returns the 16 hex digit hash that disambiguates a unit's
// artifacts in the internal deps area. It covers the package identity,
// enabled features, compiler flags, dependency versions, the target, the
// profile and the platform. Feature and dependency order does not matter;
// flag order does.
func Metadata(u unit.Unit) string {
	h := xxhash.New()

	field := func(parts ...string) {
		for _, p := range parts {
			_, _ = io.WriteString(h, p)
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.Write([]byte{0xff})
	}

	field(u.Package.Name, u.Package.Version, string(u.Package.Source.Kind), u.Package.Source.Location)
	field(sorted(u.Features)...)
	field(u.Flags...)
	field(sorted(u.DepVersions)...)
	field(string(u.Target.Kind), u.Target.Name)
	field(u.Profile.Name(), string(u.Platform))

	return fmt.Sprintf("%016x", h.Sum64())
}

func sorted(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}
