package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexStringAcceptsNumbersAndStrings(t *testing.T) {
	var figures FinancialFigures
	raw := `{"revenue": 383285000000, "net_income": "96,995,000,000", "total_assets": null}`
	require.NoError(t, json.Unmarshal([]byte(raw), &figures))

	assert.Equal(t, "383285000000", figures.Revenue.String())
	assert.Equal(t, "96,995,000,000", figures.NetIncome.String())
	assert.Empty(t, figures.TotalAssets)

	d, ok := figures.NetIncome.Decimal()
	require.True(t, ok)
	assert.Equal(t, "96995000000", d.String())

	_, ok = FlexString("None").Decimal()
	assert.False(t, ok)
}

func TestStringListAcceptsSingleString(t *testing.T) {
	var risk RatedRisk
	require.NoError(t, json.Unmarshal([]byte(`{"rating": 6, "justification": "one reason"}`), &risk))
	assert.Equal(t, StringList{"one reason"}, risk.Justification)

	require.NoError(t, json.Unmarshal([]byte(`{"rating": 6, "justification": ["a", "", "b"]}`), &risk))
	assert.Equal(t, StringList{"a", "b"}, risk.Justification)
}

func TestTimestampEpochHeuristic(t *testing.T) {
	var a Article
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","publish_date":1700000000}`), &a))
	assert.Equal(t, int64(1700000000), a.PublishDate.Unix())

	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","publish_date":1700000000000}`), &a))
	assert.Equal(t, int64(1700000000), a.PublishDate.Unix())

	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","publish_date":"2024-01-15T10:30:00Z"}`), &a))
	assert.Equal(t, 2024, a.PublishDate.Year())
}

func TestParseTimestampNormalisesDoubleZone(t *testing.T) {
	ts, ok := ParseTimestamp("2024-03-01T09:15:00+00:00Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC), ts)

	_, ok = ParseTimestamp("yesterday")
	assert.False(t, ok)
}

func TestClampRating(t *testing.T) {
	assert.Equal(t, 0.0, ClampRating(-3))
	assert.Equal(t, 10.0, ClampRating(14))
	assert.Equal(t, 7.5, ClampRating(7.5))
	assert.Equal(t, 0.0, ClampRating(math.NaN()))
	assert.Equal(t, 0.0, ClampRating(math.Inf(1)))

	assert.Equal(t, 0.0, RatingValue(nil))
	r := 8.0
	assert.Equal(t, 8.0, RatingValue(&r))
}

func TestNotificationTimeWithoutZone(t *testing.T) {
	n := Notification{Timestamp: "2024-05-02T08:00:00"}
	assert.Equal(t, time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC), n.Time())
	assert.True(t, Notification{}.Time().IsZero())
}

func TestAdvisoryRecordKeysWithSpaces(t *testing.T) {
	raw := `{
		"entity_name": "Jane Doe",
		"advice": {
			"Risk Assessment": {"Reputational Risk": {"rating": 8, "justification": ["press coverage"]}},
			"Suitability Analysis": {"Overall Rating": 3, "Service Usage Likelihood": 5, "Justification": []}
		}
	}`
	var rec AdvisoryRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	require.NotNil(t, rec.Advice)
	assert.Equal(t, 8.0, rec.Advice.RiskAssessment.ReputationalRisk.Rating)
	assert.Equal(t, 3.0, rec.Advice.SuitabilityAnalysis.OverallRating)
	assert.Nil(t, rec.Advice.FinancialProfile.Portfolio)
}
