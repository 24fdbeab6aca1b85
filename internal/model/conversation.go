package model

import (
	"sort"
	"strconv"
)

// DefaultPageSize is the number of cards shown on a fresh search.
const DefaultPageSize = 5

// ActionKind identifies the last completed action in a conversation.
type ActionKind string

const (
	ActionNone   ActionKind = "none"
	ActionSearch ActionKind = "search"
	ActionQuote  ActionKind = "quote"
)

// Cursor tracks the window of results last shown to the user.
type Cursor struct {
	Offset   int `json:"offset"`
	PageSize int `json:"page_size"`
}

// LastAction remembers what the previous turn did so a bare confirmation can
// follow up on it.
type LastAction struct {
	Kind        ActionKind `json:"kind"`
	CarID       string     `json:"car_id,omitempty"`
	DownPayment float64    `json:"down_payment,omitempty"`
	TermMonths  int        `json:"term_months,omitempty"`
	AnnualRate  float64    `json:"annual_rate,omitempty"`
}

// ConversationContext is the per-channel state carried between turns.
type ConversationContext struct {
	ChannelID    string         `json:"channel_id"`
	Filters      FilterSet      `json:"filters"`
	Cursor       Cursor         `json:"cursor"`
	DisplayIndex map[int]string `json:"display_index"`
	LastAction   LastAction     `json:"last_action"`
	Searched     bool           `json:"searched"`
}

// NewConversationContext returns the state for a channel seen for the first time.
func NewConversationContext(channelID string) *ConversationContext {
	return &ConversationContext{
		ChannelID:    channelID,
		Cursor:       Cursor{PageSize: DefaultPageSize},
		DisplayIndex: map[int]string{},
		LastAction:   LastAction{Kind: ActionNone},
	}
}

// Clone returns a deep copy.
func (c *ConversationContext) Clone() *ConversationContext {
	if c == nil {
		return nil
	}
	out := *c
	out.Filters = c.Filters.Clone()
	out.DisplayIndex = make(map[int]string, len(c.DisplayIndex))
	for k, v := range c.DisplayIndex {
		out.DisplayIndex[k] = v
	}
	return &out
}

// ResetDisplay rebuilds the display index as 1..len(ids).
func (c *ConversationContext) ResetDisplay(ids []string) {
	c.DisplayIndex = make(map[int]string, len(ids))
	for i, id := range ids {
		c.DisplayIndex[i+1] = id
	}
}

// ExtendDisplay maps ids to start, start+1, ... keeping earlier entries.
func (c *ConversationContext) ExtendDisplay(start int, ids []string) {
	if c.DisplayIndex == nil {
		c.DisplayIndex = map[int]string{}
	}
	for i, id := range ids {
		c.DisplayIndex[start+i] = id
	}
}

// DisplayNumbers returns the display indices in ascending order.
func (c *ConversationContext) DisplayNumbers() []int {
	nums := make([]int, 0, len(c.DisplayIndex))
	for n := range c.DisplayIndex {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// ResolveCarRef turns a user reference into a catalog id. Numbers of up to
// three digits go through the display index; longer numerals are ids.
func (c *ConversationContext) ResolveCarRef(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	if len(token) > 3 {
		return token, true
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return "", false
	}
	id, ok := c.DisplayIndex[n]
	return id, ok
}
