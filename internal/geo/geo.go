// Package geo resolves IP addresses to approximate locations via external
// HTTP lookup services, with a single primary-to-fallback hop and constant
// defaults on total failure.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mzizi/wageni/internal/logging"
	"go.uber.org/zap"
)

// Result is one resolved location. It is ephemeral; only the denormalized
// fields copied into a visitor row are persisted.
type Result struct {
	Country  string `json:"country"`
	State    string `json:"state,omitempty"`
	City     string `json:"city"`
	Region   string `json:"region,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// Unknown is returned when every lookup service failed.
var Unknown = Result{Country: "Unknown", State: "Unknown", City: "Unknown"}

// localResult is returned for loopback and private-range addresses without
// any network call.
var localResult = Result{Country: "Local", State: "Development", City: "Development"}

// Client queries the primary lookup service and falls back to the secondary
// one. It performs no retries beyond that single hop and enforces no timeout
// of its own; callers bound the request via ctx or the injected http.Client.
type Client struct {
	httpc       *http.Client
	primaryURL  string
	fallbackURL string
}

// NewClient builds a lookup client. Empty arguments select the public
// services; httpc may be nil to use http.DefaultClient.
func NewClient(primaryURL, fallbackURL string, httpc *http.Client) *Client {
	if primaryURL == "" {
		primaryURL = "https://ipapi.co"
	}
	if fallbackURL == "" {
		fallbackURL = "https://ipinfo.io"
	}
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{httpc: httpc, primaryURL: primaryURL, fallbackURL: fallbackURL}
}

// IsPrivate reports whether the address is loopback or within the private
// ranges short-circuited to the Local/Development result.
func IsPrivate(ip string) bool {
	return ip == "127.0.0.1" || ip == "localhost" ||
		strings.HasPrefix(ip, "192.168.") || strings.HasPrefix(ip, "10.")
}

// Lookup resolves ip to a location. It never returns an error: upstream
// failures degrade to the fallback service and finally to Unknown constants.
func (c *Client) Lookup(ctx context.Context, ip string) Result {
	if IsPrivate(ip) {
		return localResult
	}

	result, err := c.lookupPrimary(ctx, ip)
	if err == nil {
		return result
	}
	logging.L().Debug("primary geolocation lookup failed",
		zap.String("ip", ip), zap.Error(err))

	result, err = c.lookupFallback(ctx, ip)
	if err == nil {
		return result
	}
	logging.L().Debug("fallback geolocation lookup failed",
		zap.String("ip", ip), zap.Error(err))

	return Unknown
}

// primaryResponse matches the ipapi.co shape.
type primaryResponse struct {
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
	CountryName string `json:"country_name"`
	City        string `json:"city"`
	Region      string `json:"region"`
	Timezone    string `json:"timezone"`
}

func (c *Client) lookupPrimary(ctx context.Context, ip string) (Result, error) {
	var body primaryResponse
	url := fmt.Sprintf("%s/%s/json/", c.primaryURL, ip)
	if err := c.getJSON(ctx, url, &body); err != nil {
		return Result{}, err
	}
	if body.Error {
		return Result{}, fmt.Errorf("lookup service error: %s", body.Reason)
	}
	return Result{
		Country:  orUnknown(body.CountryName),
		State:    orUnknown(body.Region),
		City:     orUnknown(body.City),
		Region:   body.Region,
		Timezone: body.Timezone,
	}, nil
}

// fallbackResponse matches the ipinfo.io shape.
type fallbackResponse struct {
	Country  string `json:"country"`
	Region   string `json:"region"`
	City     string `json:"city"`
	Timezone string `json:"timezone"`
}

func (c *Client) lookupFallback(ctx context.Context, ip string) (Result, error) {
	var body fallbackResponse
	url := fmt.Sprintf("%s/%s/json", c.fallbackURL, ip)
	if err := c.getJSON(ctx, url, &body); err != nil {
		return Result{}, err
	}
	return Result{
		Country:  orUnknown(body.Country),
		State:    orUnknown(body.Region),
		City:     orUnknown(body.City),
		Region:   body.Region,
		Timezone: body.Timezone,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("lookup failed with status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func orUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}
