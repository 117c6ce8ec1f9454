package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSyncInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   *SyncInput
		wantErr bool
		errMsg  string
	}{
		{
			name:  "valid minimal",
			input: &SyncInput{Device: "r1", Sections: []string{"users"}},
		},
		{
			name:  "valid with overrides",
			input: &SyncInput{Device: "r1", Sections: []string{"users", "snmp"}, Platform: "ios", ConfigPath: "configs/r1.cfg"},
		},
		{
			name:    "missing device",
			input:   &SyncInput{Sections: []string{"users"}},
			wantErr: true,
			errMsg:  "invalid device",
		},
		{
			name:    "invalid platform",
			input:   &SyncInput{Device: "r1", Sections: []string{"users"}, Platform: "ios;ls"},
			wantErr: true,
			errMsg:  "invalid platform",
		},
		{
			name:    "empty section",
			input:   &SyncInput{Device: "r1", Sections: []string{""}},
			wantErr: true,
			errMsg:  "invalid section",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateSyncInput(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateParseInput(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateParseInput(&ParseInput{Platform: "ios", ConfigPath: "r1.cfg"}))
	assert.ErrorContains(t, ValidateParseInput(&ParseInput{ConfigPath: "r1.cfg"}), "invalid platform")
	assert.ErrorContains(t, ValidateParseInput(&ParseInput{Platform: "ios"}), "invalid config_path")
	assert.ErrorContains(t, ValidateParseInput(&ParseInput{Platform: "ios", ConfigPath: "../../etc/passwd"}), "invalid config_path")
}

func TestValidateOnboardInput(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateOnboardInput(&OnboardInput{Device: "r1"}))
	assert.ErrorContains(t, ValidateOnboardInput(&OnboardInput{Device: "r1`id`"}), "invalid device")
	assert.ErrorContains(t, ValidateOnboardInput(&OnboardInput{Device: "r1", ConfigPath: "a\x00b"}), "invalid config_path")
}
