package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kavak-agent/internal/metrics"
	"kavak-agent/internal/model"
)

// DefaultChannel is used when a caller gives no channel id.
const DefaultChannel = "local"

// ChatOptions tunes a ChatService. Zero values fall back to defaults.
type ChatOptions struct {
	PageSize   int
	Finance    FinanceSettings
	Thresholds MatchThresholds
	Aliases    *AliasTables
	Logger     *zap.Logger
}

// ChatService turns one inbound message into one reply
type ChatService struct {
	catalog    *CatalogHolder
	store      StateStore
	knowledge  KnowledgeAnswerer
	leads      LeadSink
	classifier *Classifier
	aliases    *AliasTables
	thresholds MatchThresholds
	finance    FinanceSettings
	pageSize   int
	logger     *zap.Logger
}

// NewChatService creates a new chat service. knowledge and leads may be nil.
func NewChatService(catalog *CatalogHolder, store StateStore, knowledge KnowledgeAnswerer, leads LeadSink, opts ChatOptions) *ChatService {
	if opts.PageSize <= 0 {
		opts.PageSize = model.DefaultPageSize
	}
	if opts.Finance.DefaultTerm <= 0 || len(opts.Finance.AllowedTerms) == 0 {
		opts.Finance = DefaultFinanceSettings()
	}
	if opts.Thresholds == (MatchThresholds{}) {
		opts.Thresholds = DefaultMatchThresholds()
	}
	if opts.Aliases == nil {
		opts.Aliases = DefaultAliases()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = NewCatalogHolder(nil)
	}
	return &ChatService{
		catalog:    catalog,
		store:      store,
		knowledge:  knowledge,
		leads:      leads,
		classifier: NewClassifier(opts.Aliases),
		aliases:    opts.Aliases,
		thresholds: opts.Thresholds,
		finance:    opts.Finance,
		pageSize:   opts.PageSize,
		logger:     opts.Logger,
	}
}

// Handle processes one turn for channelID and always returns a non-empty
// reply. Faults are logged and turned into a fallback message.
func (s *ChatService) Handle(ctx context.Context, channelID, raw string) (reply string) {
	start := time.Now()
	intent := model.IntentHelp
	if channelID == "" {
		channelID = DefaultChannel
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while handling chat turn",
				zap.String("channel", channelID),
				zap.Any("panic", r),
			)
			reply = internalErrorText
		}
		if strings.TrimSpace(reply) == "" {
			reply = WelcomeText
		}
		elapsed := time.Since(start)
		metrics.ChatTurns.WithLabelValues(string(intent)).Inc()
		metrics.ChatTurnDuration.WithLabelValues(string(intent)).Observe(elapsed.Seconds())
		s.logger.Debug("chat turn",
			zap.String("channel", channelID),
			zap.String("intent", string(intent)),
			zap.Duration("took", elapsed),
		)
	}()

	// One snapshot for the whole turn
	cat := s.catalog.Current()
	intent = s.classifier.Classify(raw, cat.Vocabulary())

	switch intent {
	case model.IntentValueProp:
		return ValuePropText
	case model.IntentGreet, model.IntentHelp:
		return WelcomeText
	case model.IntentConfirmYes:
		return s.confirmYes(ctx, channelID)
	case model.IntentConfirmNo:
		return confirmNoText
	case model.IntentContact:
		return s.contact(ctx, channelID, raw)
	case model.IntentQuote:
		return s.quote(ctx, channelID, raw, cat)
	case model.IntentPaginate:
		return s.paginate(ctx, channelID, raw, cat)
	case model.IntentFinance:
		return s.financePlan(raw)
	case model.IntentKnowledge:
		return s.answer(ctx, raw)
	case model.IntentSearch:
		return s.search(ctx, channelID, raw, cat)
	default:
		return WelcomeText
	}
}

func (s *ChatService) confirmYes(ctx context.Context, channelID string) string {
	conv, err := s.store.Get(ctx, channelID)
	if err != nil {
		s.logger.Warn("failed to read conversation state", zap.String("channel", channelID), zap.Error(err))
		return confirmYesNoContextText
	}
	if conv != nil && conv.LastAction.Kind == model.ActionQuote {
		return RenderDetails(conv.LastAction)
	}
	return confirmYesNoContextText
}

func (s *ChatService) contact(ctx context.Context, channelID, raw string) string {
	req, _ := ParseContact(raw)
	if req.Email == "" && req.Phone == "" {
		return contactMissingText
	}

	lead := &model.Lead{
		ID:        uuid.NewString(),
		Channel:   channelID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: time.Now().UTC(),
	}
	if conv, err := s.store.Get(ctx, channelID); err != nil {
		s.logger.Warn("failed to read conversation state", zap.String("channel", channelID), zap.Error(err))
	} else if conv != nil {
		lead.CarID = conv.LastAction.CarID
	}

	if s.leads != nil {
		if err := s.leads.SaveLead(ctx, lead); err != nil {
			s.logger.Warn("failed to save lead", zap.String("channel", channelID), zap.Error(err))
			metrics.CollaboratorFailures.WithLabelValues("leads").Inc()
			return contactFailedText
		}
	}
	metrics.LeadsCaptured.Inc()
	return RenderLeadSummary(*lead)
}

func (s *ChatService) quote(ctx context.Context, channelID, raw string, cat *Catalog) string {
	q, ok := ParseQuote(raw)
	if !ok {
		return QuoteHelpText
	}

	var reply string
	err := s.store.Update(ctx, channelID, func(conv *model.ConversationContext) error {
		id, ok := conv.ResolveCarRef(q.CarRef)
		if !ok {
			reply = unknownCarRefText
			return nil
		}
		item, ok := cat.Get(id)
		if !ok {
			reply = fmt.Sprintf(carNotFoundFormat, id)
			return nil
		}

		term := s.finance.DefaultTerm
		if q.TermMonths > 0 {
			term = NearestTerm(q.TermMonths, s.finance.AllowedTerms)
		}
		rate := s.finance.AnnualRate
		monthly := MonthlyPayment(item.Price, q.DownPayment, term, rate)

		reply = RenderQuote(item, q.DownPayment, term, rate, monthly)
		if q.MentionsRate {
			reply += "\n\n" + fmt.Sprintf(rateNoteFormat, rate*100)
		}
		reply += "\n\n" + contactCTAText

		conv.LastAction = model.LastAction{
			Kind:        model.ActionQuote,
			CarID:       item.ID,
			DownPayment: q.DownPayment,
			TermMonths:  term,
			AnnualRate:  rate,
		}
		return nil
	})
	if err != nil {
		return s.stateFailure(channelID, err)
	}
	return reply
}

func (s *ChatService) paginate(ctx context.Context, channelID, raw string, cat *Catalog) string {
	requested, _ := ParsePagination(raw)

	var reply string
	err := s.store.Update(ctx, channelID, func(conv *model.ConversationContext) error {
		if !conv.Searched {
			reply = noPriorSearchText
			return nil
		}
		rows := cat.Search(conv.Filters)
		total := len(rows)

		prevSize := conv.Cursor.PageSize
		if prevSize <= 0 {
			prevSize = s.pageSize
		}
		offset := conv.Cursor.Offset + prevSize
		if offset >= total {
			reply = endOfResultsText
			return nil
		}

		step := requested
		if step <= 0 {
			step = prevSize
		}
		step = max(1, min(step, total-offset))

		page := Window(rows, offset, step)
		conv.ExtendDisplay(offset+1, itemIDs(page))
		conv.Cursor = model.Cursor{Offset: offset, PageSize: step}
		conv.LastAction.Kind = model.ActionSearch
		reply = RenderResults(conv.Filters, page, offset+1, total)
		return nil
	})
	if err != nil {
		return s.stateFailure(channelID, err)
	}
	return reply
}

func (s *ChatService) search(ctx context.Context, channelID, raw string, cat *Catalog) string {
	resolver := NewResolver(cat.Vocabulary(), s.aliases, s.thresholds)

	var reply string
	err := s.store.Update(ctx, channelID, func(conv *model.ConversationContext) error {
		ext, decision := PlanMerge(raw, resolver, conv.Filters)
		filters := MergeFilters(conv.Filters, ext.Filters, decision)
		filters = ApplyRemovals(filters, ext.Removals)
		filters = resolver.Validate(filters)
		filters.FreeText = ""

		rows := cat.Search(filters)
		page := Window(rows, 0, s.pageSize)

		conv.Filters = filters
		conv.Cursor = model.Cursor{Offset: 0, PageSize: s.pageSize}
		conv.ResetDisplay(itemIDs(page))
		conv.Searched = true
		conv.LastAction.Kind = model.ActionSearch

		s.logger.Debug("search filters merged",
			zap.String("channel", channelID),
			zap.Bool("reset", decision.Reset),
			zap.String("reason", string(decision.Reason)),
			zap.Strings("chips", filters.Chips()),
			zap.Int("total", len(rows)),
		)
		reply = RenderResults(filters, page, 1, len(rows))
		return nil
	})
	if err != nil {
		return s.stateFailure(channelID, err)
	}
	return reply
}

func (s *ChatService) financePlan(raw string) string {
	req, ok := ParseFinance(raw)
	if !ok {
		return QuoteHelpText
	}
	var terms []int
	if req.TermMonths > 0 {
		terms = []int{req.TermMonths}
	}
	plan := FinancePlan(req.Price, req.DownPayment, terms, s.finance.AnnualRate, s.finance)
	return RenderFinancePlan(req.Price, req.DownPayment, plan)
}

func (s *ChatService) answer(ctx context.Context, question string) string {
	if s.knowledge == nil {
		return knowledgeDownText
	}
	reply, err := s.knowledge.Answer(ctx, question)
	if err != nil {
		metrics.CollaboratorFailures.WithLabelValues("knowledge").Inc()
		if errors.Is(err, ErrKnowledgeUnavailable) {
			return knowledgeDownText
		}
		s.logger.Warn("knowledge answer failed", zap.Error(err))
		return knowledgeErrorText
	}
	return reply
}

func (s *ChatService) stateFailure(channelID string, err error) string {
	s.logger.Warn("conversation state update failed", zap.String("channel", channelID), zap.Error(err))
	metrics.CollaboratorFailures.WithLabelValues("state").Inc()
	if errors.Is(err, ErrStateConflict) {
		return stateUnavailableText
	}
	return internalErrorText
}

func itemIDs(items []model.CatalogItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
