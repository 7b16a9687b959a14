package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{"valid", "Why I Want to Study Marine Biology", false},
		{"valid unicode", "Эссе о стойкости", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"max length", strings.Repeat("a", MaxTitleLen), false},
		{"too long", strings.Repeat("a", MaxTitleLen+1), true},
		{"line break", "first\nsecond", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.title)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCheckpointName(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		wantErr bool
	}{
		{"valid", "draft-1", false},
		{"valid dots", "final.v2", false},
		{"empty", "", true},
		{"with space", "draft 1", true},
		{"with tab", "draft\t1", true},
		{"too long", strings.Repeat("x", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCheckpointName(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
