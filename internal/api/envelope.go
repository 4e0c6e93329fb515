package api

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/dyike/WealthGo/internal/models"
)

// Envelope is the decoded body of /chat and rerun replies: either
// EnvelopeParsed or EnvelopeUnparsed.
type Envelope interface {
	envelope()
}

type EnvelopeParsed struct {
	SessionID string
	Text      string
	Meta      *models.Meta
}

// EnvelopeUnparsed keeps a body that could not be read as a reply.
// NotJSON distinguishes an unreadable body from a JSON value of the wrong shape.
type EnvelopeUnparsed struct {
	Raw     string
	Reason  string
	NotJSON bool
}

func (EnvelopeParsed) envelope()   {}
func (EnvelopeUnparsed) envelope() {}

var adviceHeadings = []string{
	"Basic Profile", "Financial Profile", "Associations", "Risk Assessment", "Suitability Analysis",
}

// DecodeEnvelope never fails; anything it cannot use becomes EnvelopeUnparsed.
//
// Accepted shapes: {text: "...", meta: {...}}; {text: {text|message, meta, advice}, meta}
// where nested meta fields override outer ones; {message: "..."}; and bare
// advisory records carrying "advice".
func DecodeEnvelope(raw []byte) Envelope {
	trimmed := bytes.TrimSpace(raw)

	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil {
		var anyValue any
		if json.Unmarshal(trimmed, &anyValue) == nil {
			return EnvelopeUnparsed{Raw: string(raw), Reason: "response is not a JSON object"}
		}
		return EnvelopeUnparsed{Raw: string(raw), Reason: "response is not JSON", NotJSON: true}
	}
	if top == nil {
		return EnvelopeUnparsed{Raw: string(raw), Reason: "response is null"}
	}

	out := EnvelopeParsed{SessionID: rawString(top["session_id"])}

	metaFields := rawObject(top["meta"])
	if metaFields == nil {
		metaFields = map[string]json.RawMessage{}
	}

	var nestedRecord map[string]json.RawMessage
	if textRaw, ok := top["text"]; ok {
		if s, isString := asString(textRaw); isString {
			out.Text = s
		} else if nested := rawObject(textRaw); nested != nil {
			out.Text = firstString(nested, "text", "message")
			for k, v := range rawObject(nested["meta"]) {
				metaFields[k] = v
			}
			if _, hasAdvice := nested["advice"]; hasAdvice {
				nestedRecord = nested
			}
			if out.SessionID == "" {
				out.SessionID = rawString(nested["session_id"])
			}
		}
	}
	if out.Text == "" {
		out.Text = firstString(top, "message", "response")
	}

	meta := decodeMeta(metaFields)

	switch {
	case nestedRecord != nil:
		applyRecord(meta, nestedRecord)
	case top["advice"] != nil && metaFields["advice"] == nil:
		applyRecord(meta, top)
	}
	if meta.InsightID == "" {
		meta.InsightID = rawString(top["insight_id"])
	}

	if out.Text == "" && metaEmpty(meta) {
		return EnvelopeUnparsed{Raw: string(raw), Reason: "response has neither text nor meta"}
	}
	if !metaEmpty(meta) {
		out.Meta = meta
	}
	return out
}

// applyRecord sets meta.Advice from an object shaped like an advisory record.
// A null advice leaves meta untouched.
func applyRecord(meta *models.Meta, fields map[string]json.RawMessage) {
	rec := decodeRecord(fields)
	if rec == nil {
		return
	}
	if rec.EntityName == "" {
		rec.EntityName = meta.Entity
	}
	meta.Advice = rec
	if meta.InsightID == "" {
		meta.InsightID = rec.InsightID
	}
}

func decodeRecord(fields map[string]json.RawMessage) *models.AdvisoryRecord {
	if fields == nil {
		return nil
	}
	rec := &models.AdvisoryRecord{
		EntityName: firstString(fields, "entity_name", "entity", "hnwi_name"),
		InsightID:  rawString(fields["insight_id"]),
	}

	adviceRaw := rawObject(fields["advice"])
	if adviceRaw == nil && hasAnyKey(fields, adviceHeadings) {
		// The record is the advice body itself.
		adviceRaw = fields
	}
	if adviceRaw == nil {
		return nil
	}
	// A malformed section is left empty rather than dropping the record.
	var advice models.Advice
	_ = json.Unmarshal(adviceRaw["Basic Profile"], &advice.BasicProfile)
	_ = json.Unmarshal(adviceRaw["Financial Profile"], &advice.FinancialProfile)
	_ = json.Unmarshal(adviceRaw["Associations"], &advice.Associations)
	_ = json.Unmarshal(adviceRaw["Risk Assessment"], &advice.RiskAssessment)
	_ = json.Unmarshal(adviceRaw["Suitability Analysis"], &advice.SuitabilityAnalysis)
	rec.Advice = &advice
	return rec
}

// decodeMeta reads each known field on its own so one malformed field does
// not discard the rest.
func decodeMeta(fields map[string]json.RawMessage) *models.Meta {
	meta := &models.Meta{
		Intent: rawString(fields["intent"]),
		Entity: rawString(fields["entity"]),
	}

	if n, ok := asNumber(fields["since_days"]); ok {
		days := int(n)
		meta.SinceDays = &days
	}
	if b, ok := asBool(fields["are_articles_recent"]); ok {
		meta.AreArticlesRecent = &b
	}
	meta.HasSummary, _ = asBool(fields["has_summary"])
	meta.NeedsClarification, _ = asBool(fields["needs_clarification"])
	meta.InsightID = rawString(fields["insight_id"])

	switch models.Decision(rawString(fields["decision"])) {
	case models.DecisionSave:
		meta.Decision = models.DecisionSave
	case models.DecisionEdit:
		meta.Decision = models.DecisionEdit
	}

	// An empty array is kept non-nil: it means "searched, nothing found".
	if items := rawArray(fields["articles"]); items != nil {
		meta.Articles = make([]models.Article, 0, len(items))
		for _, item := range items {
			var a models.Article
			if err := json.Unmarshal(item, &a); err == nil {
				meta.Articles = append(meta.Articles, a)
			}
		}
	}

	if rec := decodeRecord(rawObject(fields["advice"])); rec != nil {
		if rec.EntityName == "" {
			rec.EntityName = meta.Entity
		}
		meta.Advice = rec
	}
	for _, item := range rawArray(fields["advice_list"]) {
		if rec := decodeRecord(rawObject(item)); rec != nil {
			meta.AdviceList = append(meta.AdviceList, *rec)
		}
	}

	if rawObject(fields["financial_data"]) != nil {
		var fd models.FinancialData
		if err := json.Unmarshal(fields["financial_data"], &fd); err == nil {
			meta.FinancialData = &fd
		}
	}

	if obj := rawObject(fields["signals"]); obj != nil {
		signals := &models.Signals{}
		for _, item := range rawArray(obj["articles_considered"]) {
			var ca models.ConsideredArticle
			if err := json.Unmarshal(item, &ca); err == nil {
				signals.ArticlesConsidered = append(signals.ArticlesConsidered, ca)
			} else if s, ok := asString(item); ok {
				signals.ArticlesConsidered = append(signals.ArticlesConsidered, models.ConsideredArticle{ID: s})
			}
		}
		meta.Signals = signals
	}

	if n, ok := asNumber(fields["docs"]); ok {
		meta.DocCount = int(n)
	} else if items := rawArray(fields["docs"]); items != nil {
		for _, item := range items {
			var d models.Doc
			if s, ok := asString(item); ok {
				meta.Docs = append(meta.Docs, models.Doc{URL: s})
			} else if err := json.Unmarshal(item, &d); err == nil {
				meta.Docs = append(meta.Docs, d)
			}
		}
		meta.DocCount = len(meta.Docs)
	}

	return meta
}

func metaEmpty(m *models.Meta) bool {
	return m.Intent == "" && m.Entity == "" && m.Advice == nil && len(m.AdviceList) == 0 &&
		m.Articles == nil && m.FinancialData == nil && m.Signals == nil && m.DocCount == 0 &&
		m.SinceDays == nil && m.InsightID == ""
}

func rawObject(raw json.RawMessage) map[string]json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

func rawArray(raw json.RawMessage) []json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items
}

func asString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// rawString also accepts numbers, since ids are sometimes numeric.
func rawString(raw json.RawMessage) string {
	if s, ok := asString(raw); ok {
		return s
	}
	if _, ok := asNumber(raw); ok {
		return string(bytes.TrimSpace(raw))
	}
	return ""
}

func asNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func asBool(raw json.RawMessage) (bool, bool) {
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func firstString(fields map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		if s, ok := asString(fields[k]); ok && s != "" {
			return s
		}
	}
	return ""
}

func hasAnyKey(fields map[string]json.RawMessage, keys []string) bool {
	for _, k := range keys {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}
