// Package discovery resolves a tenant's company key to its swimlane URLs via
// the global discovery service. Resolution goes through the connection
// handler, so lookups inherit the same retry and rate-limit semantics as any
// other call.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gaborage/replicon-go/httpclient"
	"github.com/gaborage/replicon-go/logger"
)

// ErrMalformedDiscovery is returned when the discovery response is missing a
// field the swimlane extraction requires.
var ErrMalformedDiscovery = errors.New("malformed discovery response")

// Caller resolves one payload against one URL. Satisfied by handler.Handler.
type Caller interface {
	Handle(ctx context.Context, url string, payload httpclient.Payload) (*httpclient.Result, error)
}

// Resolver looks up and caches tenant endpoints for the process lifetime.
// Concurrent lookups for the same company key are deduplicated.
type Resolver struct {
	caller Caller
	log    logger.Logger
	url    string

	sfg   singleflight.Group
	mu    sync.RWMutex
	cache map[string]*Endpoints
}

// NewResolver creates a resolver that queries the discovery service at url.
func NewResolver(caller Caller, log logger.Logger, url string) *Resolver {
	return &Resolver{
		caller: caller,
		log:    log,
		url:    url,
		cache:  make(map[string]*Endpoints),
	}
}

// Resolve returns the swimlane endpoints for companyKey, performing the
// discovery call on first use and serving the cached value afterwards.
func (r *Resolver) Resolve(ctx context.Context, companyKey string) (*Endpoints, error) {
	if companyKey == "" {
		return nil, fmt.Errorf("company key is required")
	}

	r.mu.RLock()
	if cached, ok := r.cache[companyKey]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	// Singleflight prevents a thundering herd of identical lookups when a
	// batch starts cold.
	result, err, _ := r.sfg.Do(companyKey, func() (any, error) {
		return r.lookup(ctx, companyKey)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tenant endpoints: %w", err)
	}

	return result.(*Endpoints), nil
}

func (r *Resolver) lookup(ctx context.Context, companyKey string) (*Endpoints, error) {
	payload := httpclient.Payload{
		"tenant": map[string]any{"companyKey": companyKey},
	}

	result, err := r.caller.Handle(ctx, r.url, payload)
	if err != nil {
		return nil, err
	}
	if result.AppError {
		return nil, fmt.Errorf("discovery rejected company key: %v", result.Body)
	}

	endpoints, err := parseEndpoints(result.Body)
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Str("tenant_slug", endpoints.TenantSlug).
		Str("swimlane", endpoints.Swimlane).
		Msg("tenant endpoints resolved")

	r.mu.Lock()
	r.cache[companyKey] = endpoints
	r.mu.Unlock()

	return endpoints, nil
}

// parseEndpoints extracts the swimlane set from the discovery body:
// d.tenant.slug, d.applicationRootUrl, and d.applicationRootUrls[0].rootUrl.
func parseEndpoints(body any) (*Endpoints, error) {
	root, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: body is not an object", ErrMalformedDiscovery)
	}
	d, ok := root["d"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing d envelope", ErrMalformedDiscovery)
	}

	tenant, ok := d["tenant"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing tenant details", ErrMalformedDiscovery)
	}
	slug, ok := tenant["slug"].(string)
	if !ok || slug == "" {
		return nil, fmt.Errorf("%w: missing tenant slug", ErrMalformedDiscovery)
	}

	swimlane, ok := d["applicationRootUrl"].(string)
	if !ok || swimlane == "" {
		return nil, fmt.Errorf("%w: missing application root url", ErrMalformedDiscovery)
	}
	if !strings.HasSuffix(swimlane, "/") {
		swimlane += "/"
	}

	sourceSwimlane, err := sourceVariant(swimlane)
	if err != nil {
		return nil, err
	}

	rootURLs, ok := d["applicationRootUrls"].([]any)
	if !ok || len(rootURLs) == 0 {
		return nil, fmt.Errorf("%w: missing application root urls", ErrMalformedDiscovery)
	}
	first, ok := rootURLs[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: malformed application root urls", ErrMalformedDiscovery)
	}
	polaris, ok := first["rootUrl"].(string)
	if !ok || polaris == "" {
		return nil, fmt.Errorf("%w: missing polaris root url", ErrMalformedDiscovery)
	}
	if !strings.HasSuffix(polaris, "/") {
		polaris += "/"
	}

	return &Endpoints{
		TenantSlug:      slug,
		Swimlane:        swimlane,
		SourceSwimlane:  sourceSwimlane,
		PolarisSwimlane: polaris,
	}, nil
}

// sourceVariant splices the src- prefix onto the swimlane host:
// https://na2.replicon.com/acme/ -> https://src-na2.replicon.com/acme/.
func sourceVariant(swimlane string) (string, error) {
	parts := strings.SplitN(swimlane, "//", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: application root url has no scheme", ErrMalformedDiscovery)
	}
	return parts[0] + "//src-" + parts[1], nil
}
