// Package mercadopago implementa o gateway de pagamento sobre a API de
// pagamentos do Mercado Pago: autorização sem captura, captura e cancelamento.
package mercadopago

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/mperror"
	mp "github.com/mercadopago/sdk-go/pkg/payment"

	"github.com/BruksfildServices01/lesson-scheduler/internal/payment"
)

type Gateway struct {
	client          mp.Client
	notificationURL string
}

func New(accessToken, notificationURL string) (*Gateway, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &Gateway{
		client:          mp.NewClient(cfg),
		notificationURL: notificationURL,
	}, nil
}

// ======================================================
// AUTHORIZE
// ======================================================

func (g *Gateway) Authorize(
	ctx context.Context,
	req payment.AuthorizeRequest,
) (payment.AuthorizeResult, error) {

	body := mp.Request{
		TransactionAmount: round2(req.Amount),
		Token:             req.CardToken,
		PaymentMethodID:   req.PaymentMethodID,
		Installments:      1,
		Description:       req.Description,
		ExternalReference: req.SessionID,
		NotificationURL:   g.notificationURL,
		ApplicationFee:    round2(req.PlatformFee),
		Capture:           false,
		Payer: &mp.PayerRequest{
			Email: req.PayerEmail,
		},
		Metadata: map[string]any{
			"session_id":  req.SessionID,
			"destination": req.Destination,
			"currency":    req.Currency,
		},
	}

	resp, err := g.client.Create(ctx, body)
	if err != nil {
		return payment.AuthorizeResult{}, classify("create payment", err)
	}

	res := payment.AuthorizeResult{
		Ref:   strconv.Itoa(resp.ID),
		State: stateOf(resp),
	}
	if res.State == payment.StateDeclined {
		return res, fmt.Errorf("%w: %s", payment.ErrDeclined, resp.StatusDetail)
	}
	return res, nil
}

// ======================================================
// CAPTURE / CANCEL
// ======================================================

func (g *Gateway) Capture(ctx context.Context, ref string) error {
	id, err := parseRef(ref)
	if err != nil {
		return err
	}
	if _, err := g.client.Capture(ctx, id); err != nil {
		return classify("capture payment", err)
	}
	return nil
}

func (g *Gateway) Cancel(ctx context.Context, ref string) error {
	id, err := parseRef(ref)
	if err != nil {
		return err
	}
	if _, err := g.client.Cancel(ctx, id); err != nil {
		return classify("cancel payment", err)
	}
	return nil
}

// ======================================================
// QUERIES
// ======================================================

func (g *Gateway) ResolveReferenceFromSession(
	ctx context.Context,
	sessionID string,
) (string, bool, error) {

	resp, err := g.client.Search(ctx, mp.SearchRequest{
		Filters: map[string]string{"external_reference": sessionID},
		Limit:   10,
	})
	if err != nil {
		return "", false, classify("search payment", err)
	}
	if resp == nil {
		return "", false, nil
	}
	ref, found := liveHold(resp.Results)
	return ref, found, nil
}

// liveHold escolhe o pagamento da sessão que ainda reserva ou já cobrou o valor.
// Tentativas recusadas ou canceladas não contam como hold.
func liveHold(results []mp.Response) (string, bool) {
	for i := range results {
		switch stateOf(&results[i]) {
		case payment.StateAuthorized, payment.StateCaptured:
			return strconv.Itoa(results[i].ID), true
		}
	}
	return "", false
}

func (g *Gateway) HoldState(ctx context.Context, ref string) (payment.HoldState, error) {
	h, err := g.Lookup(ctx, ref)
	if err != nil {
		return payment.StateUnknown, err
	}
	return h.State, nil
}

func (g *Gateway) Lookup(ctx context.Context, ref string) (payment.Hold, error) {
	id, err := parseRef(ref)
	if err != nil {
		return payment.Hold{}, err
	}

	resp, err := g.client.Get(ctx, id)
	if err != nil {
		return payment.Hold{}, classify("get payment", err)
	}

	return payment.Hold{
		Ref:       strconv.Itoa(resp.ID),
		SessionID: resp.ExternalReference,
		State:     stateOf(resp),
		Amount:    resp.TransactionAmount,
	}, nil
}

// ======================================================
// HELPERS
// ======================================================

func stateOf(resp *mp.Response) payment.HoldState {
	if resp == nil {
		return payment.StateUnknown
	}
	switch resp.Status {
	case "authorized":
		return payment.StateAuthorized
	case "approved":
		if resp.Captured {
			return payment.StateCaptured
		}
		return payment.StateAuthorized
	case "cancelled", "refunded", "charged_back":
		return payment.StateReleased
	case "rejected":
		return payment.StateDeclined
	case "pending", "in_process", "in_mediation":
		return payment.StatePending
	default:
		return payment.StateUnknown
	}
}

// classify marca como transitório o que vale a pena repetir: rede, timeout,
// 429 e 5xx. Demais respostas do gateway são definitivas.
func classify(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, payment.ErrTransient, err)
	}

	var respErr *mperror.ResponseError
	if errors.As(err, &respErr) {
		if respErr.StatusCode == 429 || respErr.StatusCode >= 500 {
			return fmt.Errorf("%s: %w: %v", op, payment.ErrTransient, err)
		}
		if respErr.StatusCode == 400 || respErr.StatusCode == 402 {
			return fmt.Errorf("%s: %w: %v", op, payment.ErrDeclined, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func parseRef(ref string) (int, error) {
	id, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("invalid payment reference %q", ref)
	}
	return id, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var _ payment.Gateway = (*Gateway)(nil)
