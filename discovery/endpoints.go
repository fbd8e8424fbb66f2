package discovery

// Endpoints holds the tenant-specific base URLs returned by the global
// discovery service. All fields are set before the value is handed out and
// are read-only thereafter.
type Endpoints struct {
	// TenantSlug is the short tenant identifier embedded in swimlane URLs.
	TenantSlug string
	// Swimlane is the gen3 application root URL, with a trailing slash.
	Swimlane string
	// SourceSwimlane is the gen3 root with the src- host prefix, used for
	// source (raw) web service calls.
	SourceSwimlane string
	// PolarisSwimlane is the root URL of the Polaris application.
	PolarisSwimlane string
}

// WebService builds a gen3 web service URL, e.g.
// https://na2.replicon.com/acme/services/TimesheetService1.svc/GetTimesheet.
func (e *Endpoints) WebService(service, component string) string {
	return e.Swimlane + "services/" + service + "/" + component
}

// SourceWebService builds the same service URL on the source swimlane.
func (e *Endpoints) SourceWebService(service, component string) string {
	return e.SourceSwimlane + "services/" + service + "/" + component
}

// PolarisGraphQL returns the Polaris GraphQL endpoint.
func (e *Endpoints) PolarisGraphQL() string {
	return e.PolarisSwimlane + "graphql"
}
