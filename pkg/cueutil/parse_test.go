// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Settings: {
	name:     string
	jobs:     int & >=1
	strict:   bool | *false
	targets?: [...string]
}
`

type testSettings struct {
	Name    string   `json:"name"`
	Jobs    int      `json:"jobs"`
	Strict  bool     `json:"strict"`
	Targets []string `json:"targets,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid input with defaults", func(t *testing.T) {
		t.Parallel()

		result, err := ParseAndDecode[testSettings]([]byte(testSchema), []byte(`
name: "ws"
jobs: 4
`), "#Settings")
		if err != nil {
			t.Fatalf("ParseAndDecode() error: %v", err)
		}
		if result.Value.Name != "ws" || result.Value.Jobs != 4 || result.Value.Strict {
			t.Errorf("decoded = %+v", *result.Value)
		}
	})

	t.Run("constraint violation names the field", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testSettings]([]byte(testSchema), []byte(`
name: "ws"
jobs: 0
`), "#Settings", WithFilename("settings.cue"))
		if err == nil {
			t.Fatal("expected an error for jobs: 0")
		}
		if !strings.HasPrefix(err.Error(), "settings.cue: ") || !strings.Contains(err.Error(), "jobs") {
			t.Errorf("error should name the file and field, got %q", err)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseAndDecode[testSettings]([]byte(testSchema), []byte(`name: "ws`), "#Settings"); err == nil {
			t.Fatal("expected a syntax error")
		}
	})

	t.Run("closed definition rejects unknown fields", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testSettings]([]byte(testSchema), []byte(`
name: "ws"
jobs: 1
colour: "red"
`), "#Settings")
		if err == nil {
			t.Fatal("expected an error for an unknown field")
		}
	})

	t.Run("size limit", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testSettings]([]byte(testSchema), []byte(`name: "ws"`), "#Settings", WithMaxFileSize(4))
		if !errors.Is(err, ErrFileTooLarge) {
			t.Fatalf("expected ErrFileTooLarge, got %v", err)
		}
	})

	t.Run("missing definition", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testSettings]([]byte(testSchema), []byte(`name: "ws"`), "#Nope")
		if err == nil || !strings.Contains(err.Error(), "#Nope") {
			t.Fatalf("expected missing definition error, got %v", err)
		}
	})
}

func TestDecodeValue(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"name":    "ws",
		"jobs":    int64(2),
		"targets": []any{"x86_64-unknown-linux-gnu"},
	}
	result, err := DecodeValue[testSettings]([]byte(testSchema), doc, "#Settings")
	if err != nil {
		t.Fatalf("DecodeValue() error: %v", err)
	}
	if result.Value.Jobs != 2 || len(result.Value.Targets) != 1 {
		t.Errorf("decoded = %+v", *result.Value)
	}

	doc["jobs"] = int64(0)
	if _, err := DecodeValue[testSettings]([]byte(testSchema), doc, "#Settings", WithFilename("plan.yaml")); err == nil {
		t.Fatal("expected constraint violation")
	} else if !strings.HasPrefix(err.Error(), "plan.yaml: ") {
		t.Errorf("error should be prefixed with the file name, got %q", err)
	}
}
