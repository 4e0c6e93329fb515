package models

// AdvisoryRecord is one generated advisory. The advice keys are the
// human-readable headings the backend emits verbatim.
type AdvisoryRecord struct {
	EntityName string  `json:"entity_name"`
	InsightID  string  `json:"insight_id,omitempty"`
	Advice     *Advice `json:"advice"`
}

type Advice struct {
	BasicProfile        BasicProfile        `json:"Basic Profile"`
	FinancialProfile    FinancialProfile    `json:"Financial Profile"`
	Associations        Associations        `json:"Associations"`
	RiskAssessment      RiskAssessment      `json:"Risk Assessment"`
	SuitabilityAnalysis SuitabilityAnalysis `json:"Suitability Analysis"`
}

type ValueField struct {
	Value   FlexString `json:"value"`
	Sources StringList `json:"sources,omitempty"`
}

type BasicProfile struct {
	Background      ValueField `json:"Background"`
	PublicSentiment ValueField `json:"Public Sentiment"`
}

type FinancialProfile struct {
	NetWorth             ValueField  `json:"Net Worth"`
	Portfolio            *ValueField `json:"Portfolio,omitempty"`
	InvestmentActiveness ValueField  `json:"Investment Activeness"`
}

type Associations struct {
	CompaniesBrands StringList `json:"Companies Brands"`
	Individuals     StringList `json:"Individuals"`
	Sources         StringList `json:"Sources"`
}

type RatedRisk struct {
	Rating        float64    `json:"rating"`
	Justification StringList `json:"justification"`
}

type RiskAssessment struct {
	ReputationalRisk    RatedRisk  `json:"Reputational Risk"`
	IllegalActivityRisk RatedRisk  `json:"Illegal Activity Risk"`
	Controversies       StringList `json:"Controversies"`
}

type SuitabilityAnalysis struct {
	OverallRating          float64    `json:"Overall Rating"`
	ServiceUsageLikelihood float64    `json:"Service Usage Likelihood"`
	Justification          StringList `json:"Justification"`
}
