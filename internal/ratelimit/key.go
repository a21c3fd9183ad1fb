package ratelimit

import "fmt"

// KeyForActor builds a limiter key scoped to one user within one tenant.
func KeyForActor(tenantID, userID string) string {
	if tenantID == "" || userID == "" {
		return ""
	}
	return fmt.Sprintf("t:%s:u:%s", tenantID, userID)
}
