package sink

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSink writes a structured debug line per envelope.
type LogSink struct {
	Logger logrus.FieldLogger
}

func (LogSink) Name() string { return "log" }

func (s LogSink) Deliver(_ context.Context, env Envelope) error {
	logger := s.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	fields := logrus.Fields{
		"kind":       env.Kind,
		"at":         env.At,
		"department": env.DepartmentID,
	}
	if env.Visit != nil {
		fields["visit"] = env.Visit.ID
		fields["state"] = env.Visit.State
	}
	if env.Event != nil {
		fields["event"] = env.Event.Kind
		fields["clinician"] = env.Event.Clinician.Number
	}
	if env.Clinician != nil {
		fields["clinician"] = env.Clinician.Number
	}
	logger.WithFields(fields).Debug("Notification delivered.")
	return nil
}
