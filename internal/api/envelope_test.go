package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/WealthGo/internal/models"
)

func parsed(t *testing.T, body string) EnvelopeParsed {
	t.Helper()
	env := DecodeEnvelope([]byte(body))
	p, ok := env.(EnvelopeParsed)
	require.Truef(t, ok, "expected parsed envelope, got %#v", env)
	return p
}

func TestDecodeEnvelopePlainText(t *testing.T) {
	p := parsed(t, `{"text":"Hello","meta":{"intent":"unknown"},"session_id":"s-1"}`)
	assert.Equal(t, "Hello", p.Text)
	assert.Equal(t, "s-1", p.SessionID)
	require.NotNil(t, p.Meta)
	assert.Equal(t, "unknown", p.Meta.Intent)
}

func TestDecodeEnvelopeNestedMetaWins(t *testing.T) {
	p := parsed(t, `{
		"text": {"message": "Here is the news", "meta": {"intent": "news_lookup", "since_days": 7}},
		"meta": {"intent": "unknown", "entity": "Jane Doe", "since_days": 30}
	}`)
	assert.Equal(t, "Here is the news", p.Text)
	assert.Equal(t, models.IntentNewsLookup, p.Meta.Intent)
	assert.Equal(t, "Jane Doe", p.Meta.Entity)
	require.NotNil(t, p.Meta.SinceDays)
	assert.Equal(t, 7, *p.Meta.SinceDays)
}

func TestDecodeEnvelopeNullAdvice(t *testing.T) {
	p := parsed(t, `{"text":{"advice":null},"meta":{"intent":"advisory_query"}}`)
	assert.Empty(t, p.Text)
	assert.Equal(t, models.IntentAdvisoryQuery, p.Meta.Intent)
	assert.Nil(t, p.Meta.Advice)
}

func TestDecodeEnvelopeAdviceInTextObject(t *testing.T) {
	p := parsed(t, `{
		"text": {
			"entity_name": "Jane Doe",
			"insight_id": "ins-42",
			"advice": {"Risk Assessment": {"Reputational Risk": {"rating": 7, "justification": []}}}
		},
		"meta": {"intent": "advisory_query", "signals": {"articles_considered": [{"id": "a1", "title": "T", "url": "http://x"}]}}
	}`)
	require.NotNil(t, p.Meta.Advice)
	assert.Equal(t, "Jane Doe", p.Meta.Advice.EntityName)
	assert.Equal(t, 7.0, p.Meta.Advice.Advice.RiskAssessment.ReputationalRisk.Rating)
	assert.Equal(t, "ins-42", p.Meta.InsightID)
	assert.Len(t, p.Meta.ConsideredArticles(), 1)
}

func TestDecodeEnvelopeBareRecord(t *testing.T) {
	p := parsed(t, `{"entity_name":"Jane Doe","insight_id":9,"advice":{"Basic Profile":{"Background":{"value":"Founder"}}}}`)
	require.NotNil(t, p.Meta)
	require.NotNil(t, p.Meta.Advice)
	assert.Equal(t, "Founder", p.Meta.Advice.Advice.BasicProfile.Background.Value.String())
	assert.Equal(t, "9", p.Meta.InsightID)
}

func TestDecodeEnvelopeDocs(t *testing.T) {
	p := parsed(t, `{"text":"x","meta":{"docs":"three"}}`)
	assert.Nil(t, p.Meta)

	p = parsed(t, `{"text":"x","meta":{"docs":3}}`)
	assert.Equal(t, 3, p.Meta.DocCount)

	p = parsed(t, `{"text":"x","meta":{"docs":[{"url":"http://a"},"http://b"]}}`)
	assert.Equal(t, 2, p.Meta.DocCount)
	assert.Equal(t, "http://b", p.Meta.Docs[1].URL)
}

func TestDecodeEnvelopeKeepsGoodFieldsNextToBadOnes(t *testing.T) {
	p := parsed(t, `{"text":"x","meta":{"intent":"financial_lookup","financial_data":"oops","articles":[{"title":"ok"},42]}}`)
	assert.Equal(t, models.IntentFinancialLookup, p.Meta.Intent)
	assert.Nil(t, p.Meta.FinancialData)
	require.Len(t, p.Meta.Articles, 1)
	assert.Equal(t, "ok", p.Meta.Articles[0].Title)
}

func TestDecodeEnvelopeEmptyArticlesStayNonNil(t *testing.T) {
	p := parsed(t, `{"text":"nothing","meta":{"intent":"news_lookup","articles":[]}}`)
	assert.NotNil(t, p.Meta.Articles)
	assert.Empty(t, p.Meta.Articles)
}

func TestDecodeEnvelopeUnparsed(t *testing.T) {
	cases := map[string]struct {
		body    string
		notJSON bool
	}{
		"html":          {body: "<html>bad gateway</html>", notJSON: true},
		"array":         {body: `[1,2,3]`},
		"string":        {body: `"hi"`},
		"null":          {body: `null`},
		"empty object":  {body: `{}`},
		"unknown field": {body: `{"foo":"bar"}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			env := DecodeEnvelope([]byte(tc.body))
			u, ok := env.(EnvelopeUnparsed)
			require.Truef(t, ok, "expected unparsed, got %#v", env)
			assert.Equal(t, tc.body, u.Raw)
			assert.Equal(t, tc.notJSON, u.NotJSON)
			assert.NotEmpty(t, u.Reason)
		})
	}
}
