package service

import (
	"context"

	"go.uber.org/zap"

	"kavak-agent/internal/model"
)

// LogLeadSink writes leads to the log. It is the sink used when no
// database is configured.
type LogLeadSink struct {
	logger *zap.Logger
}

// NewLogLeadSink creates a new log-backed lead sink
func NewLogLeadSink(logger *zap.Logger) *LogLeadSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogLeadSink{logger: logger}
}

// SaveLead logs the lead
func (s *LogLeadSink) SaveLead(_ context.Context, lead *model.Lead) error {
	s.logger.Info("lead captured",
		zap.String("lead_id", lead.ID),
		zap.String("channel", lead.Channel),
		zap.String("name", lead.Name),
		zap.Bool("has_email", lead.Email != ""),
		zap.Bool("has_phone", lead.Phone != ""),
		zap.String("car_id", lead.CarID),
	)
	return nil
}

var _ LeadSink = (*LogLeadSink)(nil)
