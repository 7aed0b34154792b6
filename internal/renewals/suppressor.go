package renewals

import (
	"time"

	"github.com/kdprince200-netizen/equiherds-sub003/pkg/enums"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/types"
)

// FindRecentCharge returns the newest succeeded ledger entry whose date falls
// within the cooldown window ending at now, or nil when the new charge may
// proceed. A hit means a renewal already landed and the caller should report
// the existing payment id instead of billing again. Heuristic only: it
// inspects the one account's ledger, there is no cross-account index.
func FindRecentCharge(ledger types.PaymentRecords, window time.Duration, now time.Time) *types.PaymentRecord {
	recent := ledger.LatestByStatus(enums.PaymentStatusSucceeded)
	if recent == nil {
		return nil
	}
	if now.Sub(recent.Date) <= window {
		return recent
	}
	return nil
}
