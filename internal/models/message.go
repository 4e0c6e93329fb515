package models

import "time"

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Intents the backend tags assistant replies with.
const (
	IntentNewsLookup      = "news_lookup"
	IntentAdvisoryQuery   = "advisory_query"
	IntentHITL            = "hitl"
	IntentOverview        = "overview"
	IntentFinancialLookup = "financial_lookup"
)

type Decision string

const (
	DecisionSave Decision = "save"
	DecisionEdit Decision = "edit"
)

type ChatMessage struct {
	ID                 string    `json:"id"`
	Content            string    `json:"content"`
	Sender             Sender    `json:"sender"`
	Timestamp          time.Time `json:"timestamp"`
	Meta               *Meta     `json:"meta,omitempty"`
	RequiresEscalation bool      `json:"requiresEscalation,omitempty"`
	AgentUsed          string    `json:"agentUsed,omitempty"`
}

// Intent is "" for messages without meta.
func (m ChatMessage) Intent() string {
	if m.Meta == nil {
		return ""
	}
	return m.Meta.Intent
}

// Meta is the decoded response envelope attached to assistant messages.
// After a message is appended only Decision changes, and it changes by
// replacing the whole Meta value.
type Meta struct {
	Intent             string           `json:"intent,omitempty"`
	Entity             string           `json:"entity,omitempty"`
	SinceDays          *int             `json:"since_days,omitempty"`
	AreArticlesRecent  *bool            `json:"are_articles_recent,omitempty"`
	Articles           []Article        `json:"articles,omitempty"`
	Advice             *AdvisoryRecord  `json:"advice,omitempty"`
	AdviceList         []AdvisoryRecord `json:"advice_list,omitempty"`
	FinancialData      *FinancialData   `json:"financial_data,omitempty"`
	Signals            *Signals         `json:"signals,omitempty"`
	Docs               []Doc            `json:"docs,omitempty"`
	DocCount           int              `json:"doc_count,omitempty"`
	HasSummary         bool             `json:"has_summary,omitempty"`
	NeedsClarification bool             `json:"needs_clarification,omitempty"`
	InsightID          string           `json:"insight_id,omitempty"`
	Decision           Decision         `json:"decision,omitempty"`
}

// Clone returns a shallow copy. Slices are shared; decoded payloads are
// never modified in place.
func (m *Meta) Clone() *Meta {
	if m == nil {
		return nil
	}
	cp := *m
	return &cp
}

// ConsideredArticles is nil-safe access to signals.articles_considered.
func (m *Meta) ConsideredArticles() []ConsideredArticle {
	if m == nil || m.Signals == nil {
		return nil
	}
	return m.Signals.ArticlesConsidered
}

type Signals struct {
	ArticlesConsidered []ConsideredArticle `json:"articles_considered"`
}

type ConsideredArticle struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Doc struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}
