package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	apperrors "sjsage522/promowatch/pkg/errors"
)

// BarkEndpoint posts alerts to a Bark push server device URL
type BarkEndpoint struct {
	url    string
	client *resty.Client
}

// NewBarkEndpoint creates an endpoint for one Bark device URL
func NewBarkEndpoint(deviceURL string, timeout time.Duration) *BarkEndpoint {
	if !strings.HasSuffix(deviceURL, "/") {
		deviceURL += "/"
	}
	return &BarkEndpoint{
		url:    deviceURL,
		client: resty.New().SetTimeout(timeout),
	}
}

// BarkEndpoints creates one endpoint per device URL
func BarkEndpoints(deviceURLs []string, timeout time.Duration) []Endpoint {
	endpoints := make([]Endpoint, 0, len(deviceURLs))
	for _, u := range deviceURLs {
		endpoints = append(endpoints, NewBarkEndpoint(u, timeout))
	}
	return endpoints
}

// Name returns the device URL host, never the device key
func (b *BarkEndpoint) Name() string {
	host := strings.TrimPrefix(strings.TrimPrefix(b.url, "https://"), "http://")
	if i := strings.Index(host, "/"); i >= 0 {
		host = host[:i]
	}
	return "bark:" + host
}

// Deliver sends the alert as a form POST
func (b *BarkEndpoint) Deliver(ctx context.Context, alert Alert) error {
	form := map[string]string{
		"title": alert.Title,
		"body":  alert.Body,
		"icon":  alert.Icon,
		"group": alert.Group,
		"copy":  alert.Copy,
	}
	if alert.Image != "" {
		form["image"] = alert.Image
	}

	resp, err := b.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(b.url)
	if err != nil {
		return apperrors.NewNotify(b.Name(), "request failed", err)
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return apperrors.NewNotify(b.Name(), fmt.Sprintf("unexpected status %d: %s", resp.StatusCode(), snippet(resp.Body())), nil)
	}
	return nil
}

func snippet(body []byte) string {
	const maxLen = 256
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
