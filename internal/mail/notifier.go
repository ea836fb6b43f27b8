// Package mail delivers verification and password reset codes.
package mail

import (
	"context"

	"go.uber.org/zap"
)

type Notifier interface {
	Send(ctx context.Context, to string, tmpl Template, data CodeData) error
}

// LogNotifier renders the message and logs it instead of delivering it.
// Used when no SMTP host is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, to string, tmpl Template, data CodeData) error {
	msg, err := render(tmpl, data)
	if err != nil {
		return err
	}
	n.log.Info("mail not delivered (no smtp host)",
		zap.String("to", to),
		zap.String("template", string(tmpl)),
		zap.String("subject", msg.Subject),
		zap.String("code", data.Code),
	)
	return nil
}
