package checkout

import (
	"context"
	"errors"

	"github.com/lunetoptics/lunet-backend/internal/order"
)

// ErrBadSignature marks a webhook payload that failed signature
// verification. Handlers map it to 400 before any other processing.
var ErrBadSignature = errors.New("invalid webhook signature")

// EventSessionCompleted is the only payment-processor event this system
// acts on.
const EventSessionCompleted = "checkout.session.completed"

// SessionLine is one hosted-checkout line item. Amounts are in minor
// currency units (bani); the discount line is the only negative one.
type SessionLine struct {
	Name       string
	Quantity   int64
	UnitAmount int64
}

type SessionRequest struct {
	ClientReferenceID string
	Lines             []SessionLine
	Metadata          map[string]string
}

type Session struct {
	ID  string
	URL string
}

// CompletedSession is a finished hosted checkout as re-fetched from the
// processor, line items expanded.
type CompletedSession struct {
	ID            string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       *order.CollectedAddress
	Lines         []SessionLine
	Metadata      map[string]string
}

type Event struct {
	Type      string
	SessionID string
}

// PaymentClient abstracts the hosted payment processor so the checkout
// service can be exercised without network access.
type PaymentClient interface {
	CreateSession(ctx context.Context, req *SessionRequest) (*Session, error)
	GetSession(ctx context.Context, id string) (*CompletedSession, error)
	// VerifyEvent checks the signature over the raw payload and returns
	// ErrBadSignature on mismatch.
	VerifyEvent(payload []byte, signature string) (*Event, error)
}
