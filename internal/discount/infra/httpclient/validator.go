package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/dwikikusuma/storefront/internal/discount/domain"
)

const validatePath = "/discounts/validate"

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxFailures uint32
	OpenFor     time.Duration
}

// Validator calls the remote discount validation endpoint. It fails closed: timeouts,
// transport errors and an open breaker all surface as domain.KindTransport.
type Validator struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
	log     *slog.Logger
}

type envelope struct {
	Success  bool           `json:"success"`
	Discount *domain.Result `json:"discount"`
	Error    string         `json:"error"`
}

func NewValidator(cfg Config, log *slog.Logger) *Validator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenFor <= 0 {
		cfg.OpenFor = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "discount-validator",
		Timeout: cfg.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// A declined code is a healthy answer.
		IsSuccessful: func(err error) bool {
			kind, ok := domain.KindOf(err)
			return err == nil || (ok && kind != domain.KindTransport)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &Validator{client: client, breaker: breaker, log: log}
}

func (v *Validator) Validate(ctx context.Context, req domain.ValidationRequest) (domain.Result, error) {
	out, err := v.breaker.Execute(func() (interface{}, error) {
		return v.validate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.Result{}, domain.TransportError(err)
		}
		return domain.Result{}, err
	}
	return out.(domain.Result), nil
}

func (v *Validator) validate(ctx context.Context, req domain.ValidationRequest) (domain.Result, error) {
	resp, err := v.client.R().
		SetContext(ctx).
		SetBody(req).
		Post(validatePath)
	if err != nil {
		return domain.Result{}, domain.TransportError(err)
	}

	status := resp.StatusCode()
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		if resp.IsError() {
			return domain.Result{}, domain.TransportError(fmt.Errorf("validator returned status %d", status))
		}
		return domain.Result{}, domain.Malformed("undecodable body")
	}

	if status >= http.StatusInternalServerError {
		return domain.Result{}, domain.TransportError(fmt.Errorf("validator returned status %d", status))
	}
	if !env.Success {
		if env.Error == "" && resp.IsError() {
			return domain.Result{}, domain.TransportError(fmt.Errorf("validator returned status %d", status))
		}
		v.log.Debug("discount rejected", slog.String("code", req.Code), slog.String("reason", env.Error))
		return domain.Result{}, domain.Rejected(env.Error)
	}
	if resp.IsError() {
		return domain.Result{}, domain.TransportError(fmt.Errorf("validator returned status %d with success body", status))
	}
	if env.Discount == nil {
		return domain.Result{}, domain.Malformed("missing discount")
	}
	return *env.Discount, nil
}
