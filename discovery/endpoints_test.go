package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointURLBuilders(t *testing.T) {
	endpoints := &Endpoints{
		TenantSlug:      "acme",
		Swimlane:        "https://na2.replicon.com/acme/",
		SourceSwimlane:  "https://src-na2.replicon.com/acme/",
		PolarisSwimlane: "https://acme.polaris.replicon.com/",
	}

	assert.Equal(t,
		"https://na2.replicon.com/acme/services/TimesheetService1.svc/GetTimesheet",
		endpoints.WebService("TimesheetService1.svc", "GetTimesheet"))

	assert.Equal(t,
		"https://src-na2.replicon.com/acme/services/UserService1.svc/BulkGetUsers",
		endpoints.SourceWebService("UserService1.svc", "BulkGetUsers"))

	assert.Equal(t,
		"https://acme.polaris.replicon.com/graphql",
		endpoints.PolarisGraphQL())
}
