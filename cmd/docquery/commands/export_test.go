// ABOUTME: Tests for export command structure and flags
// ABOUTME: Verifies format and output flag defaults

package commands

import (
	"testing"
)

func TestNewExportCmd(t *testing.T) {
	cmd := NewExportCmd()

	if cmd.Use != "export" {
		t.Errorf("Use = %q, want %q", cmd.Use, "export")
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	if cmd.RunE == nil {
		t.Error("RunE should be set")
	}
}

func TestExportCmd_Flags(t *testing.T) {
	cmd := NewExportCmd()

	tests := []struct {
		flagName  string
		shorthand string
		defValue  string
	}{
		{"export-format", "", "yaml"},
		{"output", "o", ""},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("--%s flag not found", tt.flagName)
			}

			if tt.shorthand != "" && flag.Shorthand != tt.shorthand {
				t.Errorf("--%s shorthand = %q, want %q", tt.flagName, flag.Shorthand, tt.shorthand)
			}

			if flag.DefValue != tt.defValue {
				t.Errorf("--%s default = %q, want %q", tt.flagName, flag.DefValue, tt.defValue)
			}
		})
	}
}

func TestExportCmd_DoesNotShadowGlobalFormat(t *testing.T) {
	cmd := NewExportCmd()

	if cmd.Flags().Lookup("format") != nil {
		t.Error("export must not define a local --format flag; it would shadow the persistent output-format flag")
	}
}
