// Package client consumes the wageni HTTP API the way the dashboard does:
// one bounded fetch of the visitor listing, client-side geolocation
// enrichment through an injected cache, and summary metrics derived from the
// merged rows.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mzizi/wageni/internal/geo"
	"github.com/mzizi/wageni/internal/logging"
	"go.uber.org/zap"
)

var (
	// ErrFetchInFlight is returned when Fetch is called while a previous
	// call is still outstanding. The second call does no work.
	ErrFetchInFlight = errors.New("fetch already in flight")

	// ErrTimeout is returned when the listing endpoint does not answer
	// within the hook's budget.
	ErrTimeout = errors.New("request timed out")

	// ErrInvalidFormat is returned when the listing endpoint answers with
	// something other than a JSON array.
	ErrInvalidFormat = errors.New("invalid data format")
)

// Visitor is one row of the listing endpoint as the hook consumes it.
type Visitor struct {
	ID              int64     `json:"id"`
	IP              string    `json:"ip"`
	Country         string    `json:"country"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	ClientTimestamp time.Time `json:"client_timestamp"`
	Language        string    `json:"language"`
	Platform        string    `json:"platform"`
	UserAgent       string    `json:"user_agent"`
	Browser         string    `json:"browser"`
	Version         string    `json:"version"`
	OS              string    `json:"os"`
	Device          string    `json:"device"`
	IsVPN           bool      `json:"isVPN"`
	Referrer        string    `json:"referrer"`
	PageName        string    `json:"page_name"`
}

// Snapshot is the result of one successful fetch.
type Snapshot struct {
	Visitors  []Visitor
	Metrics   Metrics
	FetchedAt time.Time
}

// Hook drives the dashboard data lifecycle. It never refreshes on its own;
// the owner calls Fetch again for a manual refresh or on a timer.
type Hook struct {
	baseURL string
	httpc   *http.Client
	timeout time.Duration
	geoc    *geo.Client
	cache   *geo.Cache

	inFlight atomic.Bool
	now      func() time.Time
}

// NewHook builds a hook against baseURL. A nil cache gets a fresh one; a nil
// geo client gets the public-service default; timeout zero or below selects
// the 10s default.
func NewHook(baseURL string, httpc *http.Client, geoc *geo.Client, cache *geo.Cache, timeout time.Duration) *Hook {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if geoc == nil {
		geoc = geo.NewClient("", "", httpc)
	}
	if cache == nil {
		cache = geo.NewCache()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Hook{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		timeout: timeout,
		geoc:    geoc,
		cache:   cache,
		now:     time.Now,
	}
}

// Fetch loads the visitor listing, enriches each row through the geolocation
// cache and derives the summary metrics. A call made while another Fetch is
// outstanding returns ErrFetchInFlight without touching the network.
func (h *Hook) Fetch(ctx context.Context) (*Snapshot, error) {
	if !h.inFlight.CompareAndSwap(false, true) {
		return nil, ErrFetchInFlight
	}
	defer h.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	visitors, err := h.fetchVisitors(ctx)
	if err != nil {
		return nil, err
	}

	for i := range visitors {
		h.enrich(ctx, &visitors[i])
	}

	return &Snapshot{
		Visitors:  visitors,
		Metrics:   DeriveMetrics(visitors, h.now()),
		FetchedAt: h.now(),
	}, nil
}

func (h *Hook) fetchVisitors(ctx context.Context) ([]Visitor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/api/data", nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, err
	}

	var visitors []Visitor
	if err := json.Unmarshal(body, &visitors); err != nil {
		return nil, ErrInvalidFormat
	}
	return visitors, nil
}

// enrich resolves the row's IP through the hook's own cache and overwrites
// the location fields. The server already resolved these at write time; the
// client-side pass is deliberately independent of it.
func (h *Hook) enrich(ctx context.Context, v *Visitor) {
	if v.IP == "" {
		return
	}

	location, ok := h.cache.Get(v.IP)
	if !ok {
		location = h.geoc.Lookup(ctx, v.IP)
		h.cache.Put(v.IP, location)
		logging.L().Debug("resolved visitor location client-side",
			zap.String("ip", v.IP), zap.String("country", location.Country))
	}

	v.Country = location.Country
	v.City = location.City
	v.State = location.State
}
