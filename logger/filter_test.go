package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterString(t *testing.T) {
	filter := NewSensitiveDataFilter(nil)

	tests := []struct {
		name     string
		key      string
		value    string
		expected string
	}{
		{"password is masked", "password", "hunter2", DefaultMaskValue},
		{"case insensitive match", "UserPassword", "hunter2", DefaultMaskValue},
		{"token is masked", "access_token", "abc123", DefaultMaskValue},
		{"authorization is masked", "authorization", "Bearer abc", DefaultMaskValue},
		{"plain field passes through", "tenant", "acme", "acme"},
		{"empty sensitive value stays empty", "password", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, filter.FilterString(tt.key, tt.value))
		})
	}
}

func TestFilterValueWalksNestedPayloads(t *testing.T) {
	filter := NewSensitiveDataFilter(nil)

	payload := map[string]any{
		"user": map[string]any{
			"loginName": "jdoe",
			"password":  "hunter2",
		},
		"entries": []any{
			map[string]any{"id": 1, "apiKey": "k-1"},
			map[string]any{"id": 2},
		},
	}

	filtered, ok := filter.FilterValue("payload", payload).(map[string]any)
	assert.True(t, ok)

	user := filtered["user"].(map[string]any)
	assert.Equal(t, "jdoe", user["loginName"])
	assert.Equal(t, DefaultMaskValue, user["password"])

	entries := filtered["entries"].([]any)
	first := entries[0].(map[string]any)
	assert.Equal(t, DefaultMaskValue, first["apiKey"])
	assert.Equal(t, 1, first["id"])

	// Original payload is untouched
	assert.Equal(t, "hunter2", payload["user"].(map[string]any)["password"])
}

func TestFilterValueDepthLimit(t *testing.T) {
	filter := NewSensitiveDataFilter(nil)

	// Build a map nested deeper than DefaultMaxDepth with a secret at the bottom
	leaf := map[string]any{"password": "hunter2"}
	current := any(leaf)
	for i := 0; i < DefaultMaxDepth+2; i++ {
		current = map[string]any{"next": current}
	}

	// Must terminate; the too-deep secret is left as-is
	result := filter.FilterValue("root", current)
	assert.NotNil(t, result)
}

func TestFilterFields(t *testing.T) {
	filter := NewSensitiveDataFilter(&FilterConfig{
		SensitiveFields: []string{"companykey"},
		MaskValue:       "[redacted]",
	})

	fields := filter.FilterFields(map[string]any{
		"companyKey": "acme-corp",
		"method":     "post",
	})

	assert.Equal(t, "[redacted]", fields["companyKey"])
	assert.Equal(t, "post", fields["method"])
}

func TestNewSensitiveDataFilterDefaults(t *testing.T) {
	filter := NewSensitiveDataFilter(&FilterConfig{SensitiveFields: []string{"secret"}})
	assert.Equal(t, DefaultMaskValue, filter.FilterString("secret", "x"))
}
