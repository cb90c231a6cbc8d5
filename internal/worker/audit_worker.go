package worker

import (
	"github.com/rishabhsingh-git/photography-website-sub000/internal/service"
)

// StartAuditWorker registers audit handlers.
func StartAuditWorker(audit *service.AuditService) {
	if audit == nil {
		return
	}
	audit.RegisterHandlers()
}
