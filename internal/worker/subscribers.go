package worker

import (
	"github.com/Behnamfe76/contacts-directory/internal/service"
)

// StartEventSubscribers registers the audit trail and cached token eviction handlers.
func StartEventSubscribers(audit *service.AuditService, revocation *service.TokenRevocation) {
	if audit != nil {
		audit.RegisterHandlers()
	}
	if revocation != nil {
		revocation.RegisterHandlers()
	}
}
