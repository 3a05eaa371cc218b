package service

import (
	"fmt"
	"log/slog"

	"github.com/coreos-governance/core/internal/adapter/outbound/alert"
	"github.com/coreos-governance/core/internal/config"
	domainalert "github.com/coreos-governance/core/internal/domain/alert"
)

// AlertService wires alert.Dispatcher from configuration and exposes
// its single Evaluate operation.
type AlertService struct {
	dispatcher *domainalert.Dispatcher
}

// NewAlertService builds the closed set of sinks named in cfg.Sinks and
// constructs a Dispatcher around store.
func NewAlertService(cfg config.AlertConfig, store domainalert.StateStore, clock domainalert.Clock, logger *slog.Logger) (*AlertService, error) {
	sinks, err := buildSinks(cfg.Sinks)
	if err != nil {
		return nil, err
	}

	dispatchCfg := domainalert.Config{
		DedupTTLSeconds: int64(cfg.DedupTTLSeconds),
	}
	if cfg.Escalate30mEnabled != nil {
		dispatchCfg.Escalate30mEnabled = *cfg.Escalate30mEnabled
	}
	if cfg.Escalate2hEnabled != nil {
		dispatchCfg.Escalate2hEnabled = *cfg.Escalate2hEnabled
	}

	return &AlertService{
		dispatcher: domainalert.NewDispatcher(store, sinks, dispatchCfg, clock, logger),
	}, nil
}

// Evaluate runs one health evaluation through the dedup/escalation
// decision procedure, dispatching to every configured sink as needed.
func (s *AlertService) Evaluate(in domainalert.Input) (domainalert.Result, error) {
	return s.dispatcher.Evaluate(in)
}

func buildSinks(cfgs []config.AlertSinkConfig) ([]domainalert.Sink, error) {
	sinks := make([]domainalert.Sink, 0, len(cfgs))
	for _, c := range cfgs {
		switch c.Type {
		case "message_webhook":
			sinks = append(sinks, alert.NewMessageWebhookSink(c.URL))
		case "structured_webhook":
			sinks = append(sinks, alert.NewStructuredWebhookSink(c.URL))
		case "email_transport":
			sinks = append(sinks, alert.NewEmailTransportSink(c.URL, c.From, c.To))
		default:
			return nil, fmt.Errorf("alert: unknown sink type %q", c.Type)
		}
	}
	return sinks, nil
}
