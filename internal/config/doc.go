// SPDX-License-Identifier: MPL-2.0

// Package config loads outguard's configuration using Viper with CUE as the
// file format.
//
// The file is looked up at the path given by --config, then in the user
// config directory ($XDG_CONFIG_HOME/outguard/config.cue on Linux), then as
// ./config.cue. It is validated against the embedded config_schema.cue and
// merged over the defaults; OUTGUARD_* environment variables override both.
package config
