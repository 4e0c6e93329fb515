package models

// Article is a news item attached to a news_lookup reply.
type Article struct {
	ID              string           `json:"id,omitempty"`
	Title           string           `json:"title"`
	URL             string           `json:"url"`
	Source          string           `json:"source"`
	PublishDate     Timestamp        `json:"publish_date,omitempty"`
	Summary         ArticleSummary   `json:"summary"`
	SimilarArticles []SimilarArticle `json:"similar_articles,omitempty"`
	FactCheck       *FactCheck       `json:"fact_check,omitempty"`
}

type ArticleSummary struct {
	SummaryText     string          `json:"summary_text"`
	Sentiment       Sentiment       `json:"sentiment"`
	Topics          StringList      `json:"topics,omitempty"`
	FinancialImpact FinancialImpact `json:"financial_impact"`
}

type Sentiment struct {
	Overall    string  `json:"overall"`
	Confidence float64 `json:"confidence"`
}

type FinancialImpact struct {
	HasImpact         bool       `json:"has_impact"`
	AffectedCompanies StringList `json:"affected_companies"`
	ImpactType        string     `json:"impact_type"`
}

type SimilarArticle struct {
	ContentType string     `json:"content_type"`
	ID          string     `json:"id"`
	PublishDate FlexString `json:"publish_date"`
	Similarity  float64    `json:"similarity"`
	Title       string     `json:"title"`
	URL         string     `json:"url,omitempty"`
}

type FactCheck struct {
	ActionableInsight string  `json:"actionable_insight"`
	Confidence        float64 `json:"confidence"`
	Evidence          string  `json:"evidence"`
	Status            string  `json:"status"`
}

// DBArticle is a stored article as served by /db/articles/{person}.
type DBArticle struct {
	ID          string           `json:"id"`
	Person      string           `json:"person"`
	Title       string           `json:"title"`
	URL         string           `json:"url"`
	Source      string           `json:"source"`
	Content     string           `json:"content"`
	Summary     DBArticleSummary `json:"summary"`
	PublishDate FlexString       `json:"publish_date,omitempty"`
	Birthdate   FlexString       `json:"birthdate,omitempty"`
	Age         FlexString       `json:"age,omitempty"`
	NetWorth    FlexString       `json:"net_worth,omitempty"`
}

type DBArticleSummary struct {
	SummaryText  string `json:"summary_text"`
	SummaryTitle string `json:"summary_title"`
	SummaryURL   string `json:"summary_url"`
}

type ArticlePage struct {
	Articles []DBArticle `json:"articles"`
	Total    *int        `json:"total,omitempty"`
}

type HNWI struct {
	Person string `json:"person"`
}
