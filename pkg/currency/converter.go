// Package currency converts transaction amounts into a single reporting
// currency using static rates or an exchange-rate API.
package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog"
)

var ErrUnresolvedRate = errors.New("unresolved exchange rate")

const DefaultTarget = "RUB"

type Options struct {
	// Target is the reporting currency, DefaultTarget when empty.
	Target string
	// Supported lists the codes that may be looked up through Source.
	Supported []string
	// Conversions are fixed rates into Target keyed by currency code. They
	// take precedence over Source.
	Conversions map[string]float64
	Source      RateSource
}

type Converter struct {
	target    string
	supported map[string]bool
	static    map[string]decimal.Decimal
	source    RateSource

	mutex    sync.Mutex
	cache    map[string]decimal.Decimal
	failures map[string]error
}

func NewConverter(opts Options) *Converter {
	target := strings.ToUpper(strings.TrimSpace(opts.Target))
	if target == "" {
		target = DefaultTarget
	}

	c := &Converter{
		target:    target,
		supported: make(map[string]bool, len(opts.Supported)),
		static:    make(map[string]decimal.Decimal, len(opts.Conversions)),
		source:    opts.Source,
		cache:     make(map[string]decimal.Decimal),
		failures:  make(map[string]error),
	}

	for _, code := range opts.Supported {
		c.supported[strings.ToUpper(strings.TrimSpace(code))] = true
	}

	for code, rate := range opts.Conversions {
		c.static[strings.ToUpper(strings.TrimSpace(code))] = decimal.NewFromFloat(rate)
	}

	return c
}

func (c *Converter) Target() string {
	return c.target
}

// Convert returns amount expressed in the target currency. Any lookup failure
// is reported as ErrUnresolvedRate and is not retried for the converter's
// lifetime.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error) {
	rate, err := c.rate(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Mul(rate), nil
}

// Prefetch resolves the rates for codes concurrently and caches them. Codes
// that cannot be resolved are logged and left for Convert to report.
func (c *Converter) Prefetch(ctx context.Context, codes []string) {
	g, ctx := errgroup.WithContext(ctx)

	seen := map[string]bool{}
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if seen[code] {
			continue
		}
		seen[code] = true

		code := code
		g.Go(func() error {
			if _, err := c.rate(ctx, code); err != nil {
				klog.Warningf("prefetching %s rate: %s", code, err)
			}
			return nil
		})
	}

	_ = g.Wait()
}

func (c *Converter) rate(ctx context.Context, code string) (decimal.Decimal, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	if code == "" {
		return decimal.Zero, fmt.Errorf("%w: empty currency code", ErrUnresolvedRate)
	}

	if code == c.target {
		return decimal.NewFromInt(1), nil
	}

	if rate, ok := c.static[code]; ok {
		return rate, nil
	}

	if !c.supported[code] {
		return decimal.Zero, fmt.Errorf("%w: unsupported currency %s", ErrUnresolvedRate, code)
	}

	c.mutex.Lock()
	rate, ok := c.cache[code]
	failed := c.failures[code]
	c.mutex.Unlock()
	if ok {
		return rate, nil
	}
	if failed != nil {
		return decimal.Zero, failed
	}

	if c.source == nil {
		return decimal.Zero, fmt.Errorf("%w: no rate source for %s", ErrUnresolvedRate, code)
	}

	rate, err := c.source.Rate(ctx, code, c.target)
	if err != nil {
		klog.Warningf("error getting %s to %s rate: %s", code, c.target, err)
		err = fmt.Errorf("%w: %s to %s: %v", ErrUnresolvedRate, code, c.target, err)

		c.mutex.Lock()
		c.failures[code] = err
		c.mutex.Unlock()

		return decimal.Zero, err
	}

	c.mutex.Lock()
	c.cache[code] = rate
	c.mutex.Unlock()

	return rate, nil
}
