package client

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"wallet_sync/internal/pkg/retrier"
)

// Prober checks that upstream APIs answer before the service starts refreshing wallets.
type Prober struct {
	client  *fasthttp.Client
	timeout time.Duration
	retrier *retrier.Retrier
	logger  *zap.Logger
}

// NewProber creates a prober doing at most maxRetries+1 attempts per target.
func NewProber(timeout time.Duration, maxRetries int, interval time.Duration, logger *zap.Logger) *Prober {
	named := logger.Named("Prober")
	return &Prober{
		client:  &fasthttp.Client{Name: "wallet_sync-prober"},
		timeout: timeout,
		retrier: retrier.New(
			retrier.WithMaxRetries(maxRetries),
			retrier.WithInitialInterval(interval),
			retrier.WithOnRetry(func(attempt int, err error) {
				named.Debug("Readiness probe retry", zap.Int("attempt", attempt), zap.Error(err))
			}),
		),
		logger: named,
	}
}

// Probe performs a single GET. Any response below 500 counts as reachable.
func (p *Prober) Probe(ctx context.Context, target string) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(target)
	req.Header.SetMethod(fasthttp.MethodGet)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < p.timeout {
		err = p.client.DoDeadline(req, resp, deadline)
	} else {
		err = p.client.DoTimeout(req, resp, p.timeout)
	}
	if err != nil {
		return fmt.Errorf("probe %s: %w", target, err)
	}
	if resp.StatusCode() >= fasthttp.StatusInternalServerError {
		return fmt.Errorf("probe %s: status %d", target, resp.StatusCode())
	}
	return nil
}

// WaitReady probes target with backoff until it answers or the retries run out.
func (p *Prober) WaitReady(ctx context.Context, target string) error {
	p.logger.Info("Checking API readiness...", zap.String("target", target))
	err := p.retrier.Do(ctx, func(ctx context.Context) error {
		return p.Probe(ctx, target)
	})
	if err != nil {
		p.logger.Warn("API failed to become ready", zap.String("target", target), zap.Error(err))
		return err
	}
	p.logger.Info("API is ready", zap.String("target", target))
	return nil
}
