package config

import (
	"time"
)

// HTTP method constants. The upstream service accepts exactly these two verbs;
// anything else is rejected at validation time.
const (
	MethodPost = "post"
	MethodGet  = "get"
)

// DefaultCorrelationHeader is the response header carrying the per-request
// correlation identifier returned by the backend.
const DefaultCorrelationHeader = "x-execution-correlation-id"

// DefaultDiscoveryURL is the global lookup endpoint that maps a company key
// to its tenant-specific swimlane URLs.
const DefaultDiscoveryURL = "https://global.replicon.com/DiscoveryService1.svc/GetTenantEndpointDetails"

// DefaultRetryWait is the pause between attempts after a retryable transport fault.
const DefaultRetryWait = 20 * time.Second

// Config represents the full client configuration. It is assembled and
// validated once at construction and is read-only thereafter; all components
// share the same instance across goroutines.
type Config struct {
	Tenant    TenantConfig    `koanf:"tenant" json:"tenant" yaml:"tenant"`
	API       APIConfig       `koanf:"api" json:"api" yaml:"api"`
	Dispatch  DispatchConfig  `koanf:"dispatch" json:"dispatch" yaml:"dispatch"`
	Discovery DiscoveryConfig `koanf:"discovery" json:"discovery" yaml:"discovery"`
	Log       LogConfig       `koanf:"log" json:"log" yaml:"log"`
}

// TenantConfig holds the tenant access credentials. Exactly one credential
// mode must be configured: the company-key/username/password triple for basic
// authentication, or an access token for bearer authentication.
type TenantConfig struct {
	CompanyKey  string `koanf:"companykey" json:"companyKey" yaml:"companykey"`
	Username    string `koanf:"username" json:"username" yaml:"username"`
	Password    string `koanf:"password" json:"-" yaml:"password"`
	AccessToken string `koanf:"accesstoken" json:"-" yaml:"accesstoken"`
}

// UsesToken reports whether the tenant authenticates with a bearer token.
func (t *TenantConfig) UsesToken() bool {
	return t.AccessToken != ""
}

// APIConfig holds the fixed per-handler request parameters.
type APIConfig struct {
	Method            string            `koanf:"method" json:"method" yaml:"method" validate:"required,oneof=post get"`
	Headers           map[string]string `koanf:"headers" json:"headers" yaml:"headers"`
	CorrelationHeader string            `koanf:"correlationheader" json:"correlationHeader" yaml:"correlationheader" validate:"required"`
	// RetryWait is the fixed pause before retrying a transport-level fault.
	RetryWait time.Duration `koanf:"retrywait" json:"retryWait" yaml:"retrywait"`
	// MaxAttempts caps retries for both the rate-limit and transport-fault
	// branches. Zero means unbounded, matching the upstream behavior.
	MaxAttempts int `koanf:"maxattempts" json:"maxAttempts" yaml:"maxattempts" validate:"min=0"`
	// RequestsPerSecond enables a client-side throttle ahead of the
	// reactive 429 handling. Zero disables it.
	RequestsPerSecond int `koanf:"requestspersecond" json:"requestsPerSecond" yaml:"requestspersecond" validate:"min=0"`
}

// DispatchConfig holds batch processing parameters.
type DispatchConfig struct {
	// Workers is the bound on concurrent in-flight units during batch
	// dispatch. No default is applied; callers either set it here or pass
	// it per batch.
	Workers int `koanf:"workers" json:"workers" yaml:"workers" validate:"min=0"`
}

// DiscoveryConfig holds the swimlane discovery endpoint.
type DiscoveryConfig struct {
	URL string `koanf:"url" json:"url" yaml:"url" validate:"required,url"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
	// File, when set, routes the diagnostic log to the named file instead
	// of stdout.
	File string `koanf:"file" json:"file" yaml:"file"`
}
