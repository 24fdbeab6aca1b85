package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"kavak-agent/internal/model"
)

func TestLogLeadSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := NewLogLeadSink(zap.New(core))

	err := sink.SaveLead(context.Background(), &model.Lead{ID: "l1", Channel: "whatsapp:521", Name: "Ana", Email: "ana@mail.com", CarID: "322722"})
	require.NoError(t, err)

	entries := logs.FilterMessage("lead captured").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "l1", fields["lead_id"])
	assert.Equal(t, "322722", fields["car_id"])
	assert.Equal(t, true, fields["has_email"])
	assert.Equal(t, false, fields["has_phone"])
	// raw contact data stays out of the log
	assert.NotContains(t, fields, "email")
}
