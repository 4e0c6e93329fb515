package display

import "github.com/dyike/WealthGo/internal/models"

// Variant is the bubble template a chat message renders with.
type Variant int

const (
	VariantDefault Variant = iota
	VariantNews
	VariantAdvisory
	VariantOverview
	VariantFinancial
)

func (v Variant) String() string {
	switch v {
	case VariantNews:
		return "news"
	case VariantAdvisory:
		return "advisory"
	case VariantOverview:
		return "overview"
	case VariantFinancial:
		return "financial"
	default:
		return "default"
	}
}

// Select picks the template for msg. It only looks at the message shape:
// anything missing the fields a template needs falls back to the default
// bubble. A news reply whose articles key was present but empty still
// selects the news bubble, which shows its empty state.
func Select(msg models.ChatMessage) Variant {
	if msg.Sender != models.SenderAssistant || msg.Meta == nil {
		return VariantDefault
	}
	meta := msg.Meta
	switch meta.Intent {
	case models.IntentNewsLookup:
		if meta.Articles != nil {
			return VariantNews
		}
	case models.IntentAdvisoryQuery, models.IntentHITL:
		if meta.Advice != nil && meta.Advice.Advice != nil {
			return VariantAdvisory
		}
	case models.IntentOverview:
		if len(meta.AdviceList) > 0 {
			return VariantOverview
		}
	case models.IntentFinancialLookup:
		if meta.FinancialData != nil {
			return VariantFinancial
		}
	}
	return VariantDefault
}
