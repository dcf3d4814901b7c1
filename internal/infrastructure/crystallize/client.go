// Package crystallize implements the commerce API order pusher over HTTP.
package crystallize

import (
	"context"
	"fmt"
	"time"

	"github.com/cartfront/storefront-payments/internal/domain/order"
	"github.com/cartfront/storefront-payments/internal/observability"
	"github.com/go-resty/resty/v2"
)

const (
	peerName       = "crystallize"
	ordersEndpoint = "/orders"
)

type Client struct {
	http *resty.Client
	tel  observability.Telemetry
	log  observability.Logger
}

func NewClient(baseURL, accessToken string, tel observability.Telemetry) *Client {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &Client{
		http: httpClient,
		tel:  tel,
		log:  tel.Logger().With(observability.F("component", "crystallize_client")),
	}
}

// CreateOrder posts the order submission. The idempotency key rides along as a
// header so a retried submission of the same cart maps to one upstream order.
func (c *Client) CreateOrder(ctx context.Context, sub order.Submission, idempotencyKey string) (*order.Confirmation, error) {
	start := time.Now()
	outcome := "success"
	defer func() {
		if counter := c.tel.Counter(observability.MExternalRequests); counter != nil {
			counter.Add(1,
				observability.L("peer", peerName),
				observability.L("endpoint", ordersEndpoint),
				observability.L("outcome", outcome),
			)
		}
		if hist := c.tel.Histogram(observability.MExternalRequestDuration); hist != nil {
			hist.Observe(time.Since(start).Seconds(),
				observability.L("peer", peerName),
				observability.L("endpoint", ordersEndpoint),
			)
		}
	}()

	var confirmation order.Confirmation
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", idempotencyKey).
		SetBody(sub).
		SetResult(&confirmation).
		Post(ordersEndpoint)
	if err != nil {
		outcome = "error"
		return nil, fmt.Errorf("crystallize: create order: %w", err)
	}
	if resp.IsError() {
		outcome = "error"
		return nil, fmt.Errorf("crystallize: create order: unexpected status %s", resp.Status())
	}
	if confirmation.ID == "" {
		outcome = "error"
		return nil, fmt.Errorf("crystallize: create order: response carries no order id")
	}

	c.log.Info("order_created",
		observability.F("order_id", confirmation.ID),
		observability.F("status", resp.StatusCode()),
	)
	return &confirmation, nil
}
