package payment

import (
	"context"
	"errors"
)

// HoldState é o estado autoritativo do hold no gateway.
type HoldState string

const (
	StateAuthorized HoldState = "authorized"
	StateCaptured   HoldState = "captured"
	StateReleased   HoldState = "released"
	StateDeclined   HoldState = "declined"
	StatePending    HoldState = "pending"
	StateUnknown    HoldState = "unknown"
)

var (
	// ErrTransient marca falhas que podem ser repetidas (rede, 5xx, timeout).
	ErrTransient = errors.New("payment gateway transient failure")
	ErrDeclined  = errors.New("payment declined")
)

func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

type AuthorizeRequest struct {
	// SessionID vai como referência externa e liga o hold à reserva.
	SessionID string

	Amount      float64
	Currency    string
	PlatformFee float64
	Destination string
	Description string

	PayerEmail      string
	CardToken       string
	PaymentMethodID string
}

type AuthorizeResult struct {
	Ref   string
	State HoldState
}

type Hold struct {
	Ref       string
	SessionID string
	State     HoldState
	Amount    float64
}

type Gateway interface {
	Authorize(ctx context.Context, req AuthorizeRequest) (AuthorizeResult, error)
	Capture(ctx context.Context, ref string) error
	Cancel(ctx context.Context, ref string) error

	// ResolveReferenceFromSession encontra o hold criado para a sessão, se existir.
	ResolveReferenceFromSession(ctx context.Context, sessionID string) (ref string, found bool, err error)

	HoldState(ctx context.Context, ref string) (HoldState, error)
	Lookup(ctx context.Context, ref string) (Hold, error)
}

// Deduper descarta notificações repetidas do gateway.
type Deduper interface {
	Claim(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}
