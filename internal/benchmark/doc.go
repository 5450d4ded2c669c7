// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks over the hot paths of a pre-flight
// check, used for PGO profile generation:
//   - plan decoding and schema validation in each supported format
//   - candidate computation and collision indexing on large unit lists
//   - the simulated build with path serialization
//
// To generate a profile, run:
//
//	go test -run=^$ -bench=. -cpuprofile=default.pgo ./internal/benchmark
package benchmark
