package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		contains []string
	}{
		{
			name:     "missing field error",
			err:      NewMissingFieldError("tenant.password", "REPLICON_TENANT_PASSWORD", "tenant.password"),
			contains: []string{"config_missing:", "tenant.password", "required", "REPLICON_TENANT_PASSWORD"},
		},
		{
			name:     "invalid field error",
			err:      NewInvalidFieldError("api.method", "must be post or get"),
			contains: []string{"config_invalid:", "api.method", "must be post or get"},
		},
		{
			name:     "credential mode error",
			err:      NewCredentialModeError("both basic credentials and an access token are set"),
			contains: []string{"config_credentials:", "tenant", "accesstoken"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, expected := range tt.contains {
				assert.Contains(t, msg, expected)
			}
		})
	}
}
