package addon

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
	"golang.org/x/sync/singleflight"
)

// ErrNoRate reports that no rate, not even a stale one, is available for
// the requested pair. The engine treats it as a decline.
var ErrNoRate = errors.New("currency: no rate available")

// RateTTL is how long a fetched rate set stays fresh.
const RateTTL = time.Hour

// RateFetcher retrieves the rate set for a base currency. Implementations
// hit the network; tests substitute fakes.
type RateFetcher interface {
	Fetch(ctx context.Context, base string) (map[string]float64, error)
}

// RateTable caches fetched rates per base currency with a TTL. It is
// read-mostly: refreshes go through a singleflight group so concurrent
// expirations trigger at most one fetch, and the cache is only written
// after the fetch completes.
type RateTable struct {
	fetcher RateFetcher
	ttl     time.Duration
	now     func() time.Time

	mu        sync.RWMutex
	rates     map[string]map[string]float64
	fetchedAt map[string]time.Time

	group singleflight.Group
}

// NewRateTable builds a table over fetcher with the default one-hour TTL.
func NewRateTable(fetcher RateFetcher) *RateTable {
	return &RateTable{
		fetcher:   fetcher,
		ttl:       RateTTL,
		now:       time.Now,
		rates:     make(map[string]map[string]float64),
		fetchedAt: make(map[string]time.Time),
	}
}

func (t *RateTable) lookup(base, target string) (float64, time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	set, ok := t.rates[base]
	if !ok {
		return 0, time.Time{}, false
	}
	rate, ok := set[target]
	if !ok {
		return 0, time.Time{}, false
	}
	return rate, t.fetchedAt[base], true
}

// Rate returns the base→target rate. A fresh cached rate is served
// directly; a stale or missing one triggers a fetch. When the fetch fails
// and a stale rate exists, the stale rate is served with degraded=true.
func (t *RateTable) Rate(ctx context.Context, base, target string) (rate float64, degraded bool, err error) {
	rate, at, ok := t.lookup(base, target)
	if ok && t.now().Sub(at) < t.ttl {
		return rate, false, nil
	}

	_, fetchErr, _ := t.group.Do(base, func() (any, error) {
		// Another waiter may have refreshed while we queued.
		if _, at, ok := t.lookup(base, target); ok && t.now().Sub(at) < t.ttl {
			return nil, nil
		}
		set, err := t.fetcher.Fetch(ctx, base)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		t.rates[base] = set
		t.fetchedAt[base] = t.now()
		t.mu.Unlock()
		return nil, nil
	})

	if fetchErr != nil {
		if ok {
			// Serve the stale rate once as a fallback, marked degraded.
			return rate, true, nil
		}
		return 0, false, fmt.Errorf("%w: %s/%s", ErrNoRate, base, target)
	}

	rate, _, ok = t.lookup(base, target)
	if !ok {
		return 0, false, fmt.Errorf("%w: %s/%s", ErrNoRate, base, target)
	}
	return rate, false, nil
}

// defaultCurrencies seeds code normalization when the config lists none.
var defaultCurrencies = []string{
	"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD", "NZD", "SEK", "NOK",
	"DKK", "PLN", "CZK", "INR", "CNY", "KRW", "BRL", "MXN", "ZAR", "SGD",
}

// Currency recognizes conversion queries like "$10 to eur" or
// "$12.50 gbp to usd". Match is a pure parse; Convert may fetch and is
// run off the input-handling path by the engine.
type Currency struct {
	trigger string
	def     string
	known   []string
	table   *RateTable
	re      *regexp.Regexp
}

// Conversion is a parsed conversion request.
type Conversion struct {
	Amount float64
	From   string
	To     string
}

// NewCurrency builds the addon. trigger defaults to "$", def to "USD",
// known to defaultCurrencies.
func NewCurrency(trigger, def string, known []string, table *RateTable) *Currency {
	if trigger == "" {
		trigger = "$"
	}
	if def == "" {
		def = "USD"
	}
	if len(known) == 0 {
		known = defaultCurrencies
	}
	upper := make([]string, len(known))
	for i, c := range known {
		upper[i] = strings.ToUpper(c)
	}
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(trigger) +
		`(\d+(?:\.\d+)?)\s*([a-zA-Z]{3})?\s+(?:to\s+)?([a-zA-Z]{3})$`)
	return &Currency{trigger: trigger, def: strings.ToUpper(def), known: upper, table: table, re: re}
}

// Match parses input into a Conversion. Unknown currency codes within
// edit distance 1 of a known code are corrected (typo tolerance);
// anything further off is a decline.
func (c *Currency) Match(input string) (Conversion, bool) {
	m := c.re.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return Conversion{}, false
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Conversion{}, false
	}
	from := c.def
	if m[2] != "" {
		code, ok := c.normalizeCode(m[2])
		if !ok {
			return Conversion{}, false
		}
		from = code
	}
	to, ok := c.normalizeCode(m[3])
	if !ok {
		return Conversion{}, false
	}
	return Conversion{Amount: amount, From: from, To: to}, true
}

func (c *Currency) normalizeCode(raw string) (string, bool) {
	code := strings.ToUpper(raw)
	best := ""
	bestDist := 2
	for _, k := range c.known {
		if k == code {
			return code, true
		}
		if d := levenshtein.ComputeDistance(code, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best, best != ""
}

// Convert resolves the rate and builds the display item. Stale-rate
// fallbacks are marked in the subtitle.
func (c *Currency) Convert(ctx context.Context, conv Conversion) (Item, error) {
	rate, degraded, err := c.table.Rate(ctx, conv.From, conv.To)
	if err != nil {
		return Item{}, err
	}
	result := formatNumber(conv.Amount*rate) + " " + conv.To
	subtitle := fmt.Sprintf("1 %s = %s %s", conv.From, formatNumber(rate), conv.To)
	if degraded {
		subtitle += " (stale rate)"
	}
	return Item{
		Title:    fmt.Sprintf("%s %s = %s", formatNumber(conv.Amount), conv.From, result),
		Subtitle: subtitle,
		Value:    result,
		Action:   copyAction(result),
	}, nil
}
