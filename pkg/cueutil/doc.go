// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes user input against embedded CUE schemas.
//
// Both build plans and the configuration file go through the same flow:
// compile the schema, unify the input with a root definition, validate, and
// decode into a Go struct. Errors carry the file name and the JSON-style path
// of the offending field.
//
//	//go:embed plan_schema.cue
//	var schema []byte
//
//	result, err := cueutil.ParseAndDecode[Plan](schema, data, "#Plan",
//	    cueutil.WithFilename("plan.cue"))
//	if err != nil {
//	    return nil, err
//	}
//	return result.Value, nil
//
// Inputs in other formats are first read into a generic value and then
// checked with DecodeValue.
package cueutil
