// Package pricefeed polls an external HTTP endpoint for the coin's fiat
// price and republishes it on the event bus. The feed is advisory: UI
// collaborators display it, nothing in the issuance workflow depends on it.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cellforge/cellforge/internal/log"
	"github.com/asaskevich/EventBus"
)

// TopicPrice is the bus topic quotes are published on.
const TopicPrice = "pricefeed:quote"

// maxResponseBytes caps how much of a feed response is read.
const maxResponseBytes = 1 << 16

// Quote is one published price observation.
type Quote struct {
	PriceUSD float64   `json:"price_usd"`
	Time     time.Time `json:"time"`
}

// Poller periodically fetches the price and publishes quotes.
type Poller struct {
	url      string
	interval time.Duration
	client   *http.Client
	bus      EventBus.Bus
}

// New creates a poller. The bus may not be nil; a poller with no
// subscribers is pointless.
func New(url string, interval time.Duration, bus EventBus.Bus) *Poller {
	return &Poller{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		bus:      bus,
	}
}

// Run polls until the context is canceled. One quote is fetched
// immediately so subscribers are not left empty for a full interval.
// Fetch failures are logged and skipped; the loop never stops on its own.
func (p *Poller) Run(ctx context.Context) {
	log.Price.Info().
		Str("url", p.url).
		Dur("interval", p.interval).
		Msg("price feed started")

	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Price.Info().Msg("price feed stopped")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	quote, err := p.fetch(ctx)
	if err != nil {
		log.Price.Warn().Err(err).Msg("price fetch failed")
		return
	}
	log.Price.Debug().Float64("price_usd", quote.PriceUSD).Msg("price updated")
	p.bus.Publish(TopicPrice, quote)
}

func (p *Poller) fetch(ctx context.Context) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Quote{}, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("price feed returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Quote{}, err
	}

	var payload struct {
		PriceUSD float64 `json:"price_usd"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Quote{}, fmt.Errorf("decode price response: %w", err)
	}
	if payload.PriceUSD <= 0 {
		return Quote{}, fmt.Errorf("price feed returned non-positive price %v", payload.PriceUSD)
	}
	return Quote{PriceUSD: payload.PriceUSD, Time: time.Now().UTC()}, nil
}
