package midtrans

// Transaction statuses reported by the gateway.
const (
	StatusCapture    = "capture"
	StatusSettlement = "settlement"
	StatusPending    = "pending"
	StatusDeny       = "deny"
	StatusCancel     = "cancel"
	StatusExpire     = "expire"
)

// Fraud statuses attached to capture notifications.
const (
	FraudAccept    = "accept"
	FraudChallenge = "challenge"
)

// SaleState is the order-side status a notification maps to.
type SaleState string

const (
	StatePaid      SaleState = "paid"
	StatePending   SaleState = "pending"
	StateCancelled SaleState = "cancelled"
	StateExpired   SaleState = "expired"
	StateChallenge SaleState = "challenge"
	StateUnknown   SaleState = "unknown"
)

// MapStatus translates a gateway transaction status (and fraud status, for
// captures) into the target sale state.
func MapStatus(transactionStatus, fraudStatus string) SaleState {
	switch transactionStatus {
	case StatusCapture:
		if fraudStatus == FraudChallenge {
			return StateChallenge
		}
		return StatePaid
	case StatusSettlement:
		return StatePaid
	case StatusPending:
		return StatePending
	case StatusDeny, StatusCancel:
		return StateCancelled
	case StatusExpire:
		return StateExpired
	default:
		return StateUnknown
	}
}
