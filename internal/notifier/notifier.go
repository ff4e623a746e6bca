package notifier

import (
	"context"
	"net/url"
	"time"

	"sjsage522/promowatch/config"
	"sjsage522/promowatch/logger"
)

// Alert is the push message delivered to every endpoint
type Alert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
	Group string `json:"group,omitempty"`
	Copy  string `json:"copy,omitempty"`
	Image string `json:"image,omitempty"`
}

// Endpoint delivers alerts to one destination
type Endpoint interface {
	// Name identifies the endpoint in logs
	Name() string

	// Deliver sends the alert once
	Deliver(ctx context.Context, alert Alert) error
}

// Notifier formats promotion alerts and fans them out to its endpoints.
// Delivery is best effort: a failing endpoint is logged and skipped.
type Notifier struct {
	endpoints []Endpoint
	label     string
	icon      string
	group     string
	timeout   time.Duration
	log       *logger.Logger
}

// New creates a notifier for the given endpoints
func New(cfg *config.Config, log *logger.Logger, endpoints ...Endpoint) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{
		endpoints: endpoints,
		label:     cfg.CampaignLabel,
		icon:      cfg.BarkIcon,
		group:     cfg.NotifyGroup,
		timeout:   cfg.NotifyTimeout,
		log:       log,
	}
}

// Send pushes one promotion alert to every endpoint
func (n *Notifier) Send(ctx context.Context, title, body, imageURL string) {
	alert := n.format(title, body, imageURL)

	n.log.Info().Str("title", title).Int("endpoints", len(n.endpoints)).Msg("Sending push notification")
	for _, ep := range n.endpoints {
		n.deliver(ctx, ep, alert)
	}
}

func (n *Notifier) deliver(ctx context.Context, ep Endpoint, alert Alert) {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	if err := ep.Deliver(ctx, alert); err != nil {
		n.log.Error().Err(err).Str("endpoint", ep.Name()).Msg("Push delivery failed")
		return
	}
	n.log.Debug().Str("endpoint", ep.Name()).Msg("Push delivered")
}

func (n *Notifier) format(title, body, imageURL string) Alert {
	alert := Alert{
		Title: title,
		Body:  body,
		Icon:  n.icon,
		Group: n.group,
		Copy:  body,
	}
	if n.label != "" {
		alert.Title = n.label + ": " + title
	}
	if isAbsoluteHTTP(imageURL) {
		alert.Image = imageURL
	}
	return alert
}

func isAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
