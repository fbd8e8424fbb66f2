package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks structural constraints (tags) and the cross-field rules the
// tag language cannot express. It runs once at load; a Config that passed
// validation is safe to share read-only across goroutines.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
			first := verrs[0]
			return NewInvalidFieldError(first.Namespace(), fmt.Sprintf("failed %q constraint", first.Tag()))
		}
		return fmt.Errorf("config validation: %w", err)
	}

	if err := validateTenant(&cfg.Tenant); err != nil {
		return fmt.Errorf("tenant config: %w", err)
	}

	if cfg.API.RetryWait < 0 {
		return NewInvalidFieldError("api.retrywait", "must not be negative")
	}

	return nil
}

// validateTenant enforces the credential-mode invariant: basic credentials
// (company key + username + password) XOR an access token.
func validateTenant(t *TenantConfig) error {
	hasBasic := t.CompanyKey != "" || t.Username != "" || t.Password != ""
	hasToken := t.AccessToken != ""

	switch {
	case hasBasic && hasToken:
		return NewCredentialModeError("both basic credentials and an access token are set")
	case hasToken:
		return nil
	case !hasBasic:
		return NewCredentialModeError("no credentials configured")
	}

	// Basic mode requires the complete triple.
	if t.CompanyKey == "" {
		return NewMissingFieldError("tenant.companykey", "REPLICON_TENANT_COMPANYKEY", "tenant.companykey")
	}
	if t.Username == "" {
		return NewMissingFieldError("tenant.username", "REPLICON_TENANT_USERNAME", "tenant.username")
	}
	if t.Password == "" {
		return NewMissingFieldError("tenant.password", "REPLICON_TENANT_PASSWORD", "tenant.password")
	}

	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}
