package service

import (
	"context"

	"kavak-agent/internal/model"
)

// StateStore keeps one ConversationContext per channel. Update runs fn on a
// private copy and persists it only when fn returns nil; calls for the same
// channel are serialized, different channels never block each other.
type StateStore interface {
	Get(ctx context.Context, channelID string) (*model.ConversationContext, error)
	Update(ctx context.Context, channelID string, fn func(*model.ConversationContext) error) error
}

// KnowledgeAnswerer answers free-form questions about Kavak.
type KnowledgeAnswerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// LeadSink receives captured contact leads.
type LeadSink interface {
	SaveLead(ctx context.Context, lead *model.Lead) error
}
