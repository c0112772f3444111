package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/cache"
)

// Rates holds exchange rates for one base currency
type Rates struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

// RateProvider fetches exchange rates over HTTP through an injected cache.
// The cache and TTL are explicit dependencies so callers control freshness;
// there is no process-global rate state.
type RateProvider struct {
	client *resty.Client
	cache  cache.Cache
	ttl    time.Duration
	logger *logrus.Entry
}

// NewRateProvider creates a RateProvider against the given rates endpoint.
// The endpoint must accept GET ?base=XXX and return {"base": .., "rates": {..}}.
func NewRateProvider(baseURL string, rateCache cache.Cache, ttl time.Duration, logger *logrus.Logger) *RateProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &RateProvider{
		client: client,
		cache:  rateCache,
		ttl:    ttl,
		logger: logger.WithField("component", "currency-rates"),
	}
}

type ratesPayload struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// GetRates returns rates for the base currency, from cache when fresh
func (p *RateProvider) GetRates(ctx context.Context, base string) (*Rates, error) {
	base = strings.ToUpper(base)
	cacheKey := "rates:" + base

	if p.cache != nil {
		if data, ok := p.cache.Get(ctx, cacheKey); ok {
			var rates Rates
			if err := json.Unmarshal(data, &rates); err == nil {
				return &rates, nil
			}
			p.cache.Delete(ctx, cacheKey)
		}
	}

	var payload ratesPayload
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("base", base).
		SetResult(&payload).
		Get("")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates for %s: %w", base, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("rates endpoint returned %d for %s", resp.StatusCode(), base)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("rates endpoint returned no rates for %s", base)
	}

	rates := &Rates{
		Base:      base,
		Rates:     payload.Rates,
		FetchedAt: time.Now().UTC(),
	}

	if p.cache != nil {
		if data, err := json.Marshal(rates); err == nil {
			p.cache.Set(ctx, cacheKey, data, p.ttl)
		}
	}

	p.logger.WithFields(logrus.Fields{
		"base":  base,
		"count": len(rates.Rates),
	}).Debug("Fetched exchange rates")

	return rates, nil
}

// Convert converts an amount between two currencies using the from-side
// rate table. Converting a currency to itself is the identity.
func (p *RateProvider) Convert(ctx context.Context, from, to string, amount float64) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return amount, nil
	}

	rates, err := p.GetRates(ctx, from)
	if err != nil {
		return 0, err
	}
	rate, ok := rates.Rates[to]
	if !ok {
		return 0, fmt.Errorf("no rate from %s to %s", from, to)
	}
	return amount * rate, nil
}
