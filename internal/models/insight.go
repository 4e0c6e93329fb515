package models

import (
	"math"
	"time"
)

// Insight is a saved advisory from /db/insights. Unlike chat advisories
// its keys are snake_case and every section is optional.
type Insight struct {
	ID                 string        `json:"id"`
	HNWIName           string        `json:"hnwi_name"`
	UpdatedAt          string        `json:"updated_at"`
	SessionID          string        `json:"session_id,omitempty"`
	ArticlesConsidered StringList    `json:"articles_considered,omitempty"`
	Advice             InsightAdvice `json:"advice"`
}

// Updated is the zero time when updated_at is missing or unparseable.
func (i Insight) Updated() time.Time {
	ts, _ := ParseTimestamp(i.UpdatedAt)
	return ts
}

type InsightAdvice struct {
	FinancialProfile    *InsightFinancialProfile `json:"financial_profile,omitempty"`
	Associations        *InsightAssociations     `json:"associations,omitempty"`
	RiskAssessment      *InsightRiskAssessment   `json:"risk_assessment,omitempty"`
	SuitabilityAnalysis *InsightSuitability      `json:"suitability_analysis,omitempty"`
	ModelType           string                   `json:"model_type,omitempty"`
	Success             *bool                    `json:"success,omitempty"`
}

type InsightFinancialProfile struct {
	NetWorth             *ValueField `json:"net_worth,omitempty"`
	Portfolio            *ValueField `json:"portfolio,omitempty"`
	InvestmentActiveness *ValueField `json:"investment_activeness,omitempty"`
}

type InsightAssociations struct {
	CompaniesBrands StringList `json:"companies_brands,omitempty"`
	Individuals     StringList `json:"individuals,omitempty"`
	Sources         StringList `json:"sources,omitempty"`
}

type InsightRiskAssessment struct {
	Controversies       StringList        `json:"controversies,omitempty"`
	IllegalActivityRisk *InsightRatedRisk `json:"illegal_activity_risk,omitempty"`
	ReputationalRisk    *InsightRatedRisk `json:"reputational_risk,omitempty"`
}

type InsightRatedRisk struct {
	Rating        *float64   `json:"rating,omitempty"`
	Justification StringList `json:"justification,omitempty"`
}

type InsightSuitability struct {
	OverallRating          *float64   `json:"overall_rating,omitempty"`
	ServiceUsageLikelihood *float64   `json:"service_usage_likelihood,omitempty"`
	Justification          StringList `json:"justification,omitempty"`
}

// RatingValue returns 0 for a missing or non-finite rating.
func RatingValue(r *float64) float64 {
	if r == nil || math.IsNaN(*r) || math.IsInf(*r, 0) {
		return 0
	}
	return *r
}
