package hl7

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/ed-sim/ed-sim/sim"
	"github.com/ed-sim/ed-sim/sink"
)

const contentType = "x-application/hl7-v2+er7"

// Config configures the HL7 endpoint. The sink is disabled when Endpoint is empty.
type Config struct {
	Endpoint              string            `yaml:"endpoint" validate:"omitempty,url"`
	Headers               map[string]string `yaml:"headers"`
	VisitCreatedType      string            `yaml:"visit_created_message_type" validate:"omitempty,oneof=A01 A04"`
	SendingApplication    string            `yaml:"sending_application"`
	SendingOrganisation   string            `yaml:"sending_organisation"`
	ReceivingApplication  string            `yaml:"receiving_application"`
	ReceivingOrganisation string            `yaml:"receiving_organisation"`
	Timeout               time.Duration     `yaml:"timeout"`
	RetryCount            int               `yaml:"retry_count" validate:"gte=0"`
}

// Enabled reports whether an endpoint is configured.
func (c Config) Enabled() bool {
	return c.Endpoint != ""
}

// Sender posts ADT messages for arrivals and discharges. Other envelopes are ignored.
type Sender struct {
	client   *resty.Client
	endpoint string
	builder  *Builder
}

// NewSender builds a Sender with a resty client configured from cfg.
func NewSender(cfg Config) *Sender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Content-Type", contentType).
		SetHeaders(cfg.Headers)

	logrus.Infof("Created HL7v2 HTTP client for endpoint %s.", cfg.Endpoint)
	if len(cfg.Headers) > 0 {
		logrus.Infof("Added %d HTTP headers.", len(cfg.Headers))
	}

	return &Sender{
		client:   client,
		endpoint: cfg.Endpoint,
		builder: &Builder{
			SendingApplication:    cfg.SendingApplication,
			SendingOrganisation:   cfg.SendingOrganisation,
			ReceivingApplication:  cfg.ReceivingApplication,
			ReceivingOrganisation: cfg.ReceivingOrganisation,
			VisitCreatedType:      cfg.VisitCreatedType,
		},
	}
}

func (s *Sender) Name() string { return "hl7" }

// Deliver renders and posts the message for env, if it maps to one.
func (s *Sender) Deliver(ctx context.Context, env sink.Envelope) error {
	msg, ok, err := s.render(env)
	if err != nil || !ok {
		return err
	}
	return s.send(ctx, msg)
}

func (s *Sender) render(env sink.Envelope) (string, bool, error) {
	switch env.Kind {
	case sim.NotifyVisitCreated:
		if env.Visit == nil {
			return "", false, nil
		}
		return s.builder.VisitCreated(*env.Visit, env.At), true, nil
	case sim.NotifyEventCompleted:
		if env.Visit == nil || env.Event == nil || env.Event.Kind != sim.KindDischarge.String() {
			return "", false, nil
		}
		msg, err := s.builder.Discharged(*env.Visit, *env.Event, env.At)
		if err != nil {
			return "", false, err
		}
		return msg, true, nil
	default:
		return "", false, nil
	}
}

func (s *Sender) send(ctx context.Context, msg string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post(s.endpoint)
	if err != nil {
		return fmt.Errorf("could not send HL7v2 message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("could not send HL7v2 message: endpoint returned %s", resp.Status())
	}
	logrus.Debugf("HL7v2 message sent to %s.", s.endpoint)
	return nil
}
