package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "nameledger/pkg/domain-errors"
)

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "wilder", NormalizeLabel("  Wilder "))
	assert.Equal(t, "a-b-c", NormalizeLabel("A-B-C"))
	assert.Equal(t, "", NormalizeLabel("   "))
}

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		max     int
		wantErr dErrors.Code
	}{
		{name: "simple label", label: "wilder", max: 255},
		{name: "digits and hyphens", label: "web-3j0", max: 255},
		{name: "single character", label: "a", max: 255},
		{name: "empty", label: "", max: 255, wantErr: dErrors.CodeInvalidLength},
		{name: "too long", label: strings.Repeat("a", 256), max: 255, wantErr: dErrors.CodeInvalidLength},
		{name: "at the limit", label: strings.Repeat("a", 255), max: 255},
		{name: "uppercase rejected", label: "Wilder", max: 255, wantErr: dErrors.CodeInvalidName},
		{name: "underscore rejected", label: "wil_der", max: 255, wantErr: dErrors.CodeInvalidName},
		{name: "space rejected", label: "wil der", max: 255, wantErr: dErrors.CodeInvalidName},
		{name: "unicode rejected", label: "wïlder", max: 255, wantErr: dErrors.CodeInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.label, tt.max)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, tt.wantErr), "expected %s, got %v", tt.wantErr, err)
		})
	}
}
