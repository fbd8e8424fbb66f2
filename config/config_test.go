package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
tenant:
  companykey: acme
  username: jdoe
  password: hunter2
`

func TestLoadFromBytesDefaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, MethodPost, cfg.API.Method)
	assert.Equal(t, DefaultCorrelationHeader, cfg.API.CorrelationHeader)
	assert.Equal(t, DefaultRetryWait, cfg.API.RetryWait)
	assert.Zero(t, cfg.API.MaxAttempts)
	assert.Zero(t, cfg.API.RequestsPerSecond)
	assert.Equal(t, "application/json", cfg.API.Headers["content-type"])
	assert.Equal(t, DefaultDiscoveryURL, cfg.Discovery.URL)
	assert.Zero(t, cfg.Dispatch.Workers)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Tenant.UsesToken())
}

func TestLoadFromBytesOverrides(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
tenant:
  accesstoken: tok-123
api:
  method: get
  retrywait: 5s
  maxattempts: 10
  requestspersecond: 2
dispatch:
  workers: 8
log:
  level: debug
  file: /tmp/replicon.log
`))
	require.NoError(t, err)

	assert.True(t, cfg.Tenant.UsesToken())
	assert.Equal(t, MethodGet, cfg.API.Method)
	assert.Equal(t, 5*time.Second, cfg.API.RetryWait)
	assert.Equal(t, 10, cfg.API.MaxAttempts)
	assert.Equal(t, 2, cfg.API.RequestsPerSecond)
	assert.Equal(t, 8, cfg.Dispatch.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/replicon.log", cfg.Log.File)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("REPLICON_TENANT_PASSWORD", "from-env")
	t.Setenv("REPLICON_API_METHOD", "get")

	cfg, err := LoadFromBytes([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Tenant.Password)
	assert.Equal(t, MethodGet, cfg.API.Method)
}

func TestLoadFromBytesRejectsMalformedYAML(t *testing.T) {
	_, err := LoadFromBytes([]byte("tenant: ["))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Tenant: TenantConfig{CompanyKey: "acme", Username: "jdoe", Password: "hunter2"},
			API: APIConfig{
				Method:            MethodPost,
				CorrelationHeader: DefaultCorrelationHeader,
				RetryWait:         DefaultRetryWait,
			},
			Discovery: DiscoveryConfig{URL: DefaultDiscoveryURL},
		}
	}

	tests := []struct {
		name     string
		mutate   func(*Config)
		wantErr  bool
		contains string
	}{
		{
			name:   "valid basic credentials",
			mutate: func(_ *Config) {},
		},
		{
			name: "valid token credentials",
			mutate: func(c *Config) {
				c.Tenant = TenantConfig{AccessToken: "tok-123"}
			},
		},
		{
			name: "invalid method",
			mutate: func(c *Config) {
				c.API.Method = "put"
			},
			wantErr:  true,
			contains: "oneof",
		},
		{
			name: "both credential modes set",
			mutate: func(c *Config) {
				c.Tenant.AccessToken = "tok-123"
			},
			wantErr:  true,
			contains: "config_credentials",
		},
		{
			name: "no credentials at all",
			mutate: func(c *Config) {
				c.Tenant = TenantConfig{}
			},
			wantErr:  true,
			contains: "no credentials configured",
		},
		{
			name: "missing password in basic mode",
			mutate: func(c *Config) {
				c.Tenant.Password = ""
			},
			wantErr:  true,
			contains: "tenant.password",
		},
		{
			name: "missing correlation header",
			mutate: func(c *Config) {
				c.API.CorrelationHeader = ""
			},
			wantErr: true,
		},
		{
			name: "negative retry wait",
			mutate: func(c *Config) {
				c.API.RetryWait = -time.Second
			},
			wantErr:  true,
			contains: "api.retrywait",
		},
		{
			name: "discovery url not a url",
			mutate: func(c *Config) {
				c.Discovery.URL = "not a url"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := Validate(cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestValidateNilConfig(t *testing.T) {
	assert.Error(t, Validate(nil))
}
