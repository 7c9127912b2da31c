package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"habitquest/pkg/circuitbreaker"
	"habitquest/pkg/config"
	"habitquest/pkg/metrics"
)

// ErrGatewayUnavailable wraps transport failures and tripped-breaker
// rejections so callers can map them to one upstream-failure status.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

const defaultBaseURL = "https://api.stripe.com"

// Intent is the gateway's payment intent. ClientSecret goes back to the
// caller so the UI can confirm the charge client-side.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Client talks to the payment provider's intent API. All calls go through a
// circuit breaker so a degraded provider fails fast instead of holding
// request goroutines on the 5s timeout.
type Client struct {
	cfg     config.PaymentConfig
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewClient(cfg config.PaymentConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: 5 * time.Second},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		logger:  logger,
	}
}

func (c *Client) Enabled() bool {
	return c.cfg.Enabled()
}

func (c *Client) baseURL() string {
	if c.cfg.BaseURL != "" {
		return strings.TrimRight(c.cfg.BaseURL, "/")
	}
	return defaultBaseURL
}

// CreateIntent charges amountMinor (minor currency units) for the listed
// penalties. The penalty ids ride along as metadata so the confirmation
// callback can be audited against the gateway's dashboard.
func (c *Client) CreateIntent(ctx context.Context, amountMinor int64, userID int64, penaltyIDs []int64) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))
	form.Set("currency", c.cfg.Currency)
	form.Set("metadata[user_id]", strconv.FormatInt(userID, 10))
	form.Set("metadata[penalty_ids]", joinIDs(penaltyIDs))

	var intent *Intent
	start := time.Now()
	err := c.breaker.Execute(func() error {
		var callErr error
		intent, callErr = c.postIntent(ctx, form)
		return callErr
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordGatewayCallLatency("payment_intents", status, time.Since(start))

	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) {
			c.logger.Warn("Payment gateway circuit open, rejecting call")
			return nil, ErrGatewayUnavailable
		}
		c.logger.Error("Payment intent creation failed",
			zap.Int64("user_id", userID),
			zap.Int64("amount_minor", amountMinor),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Info("Payment intent created",
		zap.String("intent_id", intent.ID),
		zap.Int64("user_id", userID),
		zap.Int64("amount_minor", amountMinor),
	)
	return intent, nil
}

func (c *Client) postIntent(ctx context.Context, form url.Values) (*Intent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL()+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: gateway returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment gateway rejected request: %d %s", resp.StatusCode, string(body))
	}

	var intent Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("malformed gateway response: %w", err)
	}
	return &intent, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
