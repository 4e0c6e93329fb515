// Package display renders chat messages and status lines for the terminal.
package display

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/WealthGo/internal/models"
)

const defaultDecisionHint = "ctrl+s save · ctrl+e request edit"

// Renderer turns messages into terminal text.
type Renderer struct {
	// Width wraps bubbles to this many columns; zero leaves lines unwrapped.
	Width int
	// Expanded opens fact-check sections in news bubbles.
	Expanded bool
	// DecisionHint is shown under advisories still waiting for a decision.
	DecisionHint string
}

// Render draws msg with the template Select picks for it.
func (r Renderer) Render(msg models.ChatMessage) string {
	var body string
	switch Select(msg) {
	case VariantNews:
		body = r.news(msg)
	case VariantAdvisory:
		body = r.advisory(msg)
	case VariantOverview:
		body = r.overview(msg)
	case VariantFinancial:
		body = r.financial(msg)
	default:
		body = r.plain(msg)
	}
	return r.bubble(msg, body)
}

func (r Renderer) bubble(msg models.ChatMessage, body string) string {
	style := assistantBubbleStyle
	header := headingStyle.Render("Assistant")
	if msg.AgentUsed != "" {
		header += " " + labelStyle.Render("("+msg.AgentUsed+")")
	}
	switch {
	case msg.Sender == models.SenderUser:
		style = userBubbleStyle
		header = sectionStyle.Render("You")
	case msg.RequiresEscalation:
		style = escalationBubbleStyle
		header += " " + warnStyle.Render("⚠ escalation required")
	}
	if !msg.Timestamp.IsZero() {
		header += " " + labelStyle.Render(msg.Timestamp.Local().Format("03:04 PM"))
	}
	if r.Width > 4 {
		style = style.Width(r.Width - 2)
	}
	return style.Render(header + "\n" + body)
}

func (r Renderer) plain(msg models.ChatMessage) string {
	content := msg.Content
	if LooksLikeHTML(content) {
		content = HTMLToText(content)
	}
	var lines []string
	for _, line := range ParseLines(content) {
		text := renderSegments(line.Segments)
		if line.Kind != LinePlain {
			text = "  " + line.Marker + " " + text
		}
		lines = append(lines, text)
	}
	out := strings.Join(lines, "\n")
	if msg.Meta != nil && len(msg.Meta.Docs) > 0 {
		out += "\n\n" + labelStyle.Render("Sources:")
		for _, doc := range msg.Meta.Docs {
			label := doc.Title
			if label == "" {
				label = doc.URL
			}
			out += "\n  • " + linkStyle.Render(label)
			if label != doc.URL && doc.URL != "" {
				out += " " + mutedStyle.Render(doc.URL)
			}
		}
	}
	return out
}

func renderSegments(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case SegmentBold:
			b.WriteString(boldStyle.Render(seg.Text))
		case SegmentLink:
			b.WriteString(linkStyle.Render(seg.Text))
			if seg.Text != seg.URL {
				b.WriteString(" " + mutedStyle.Render("<"+seg.URL+">"))
			}
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// DayGroup is the articles published on one calendar day.
type DayGroup struct {
	Day      time.Time
	Articles []models.Article
}

// GroupByDay buckets articles by UTC publish day, newest day first.
// Undated articles go last in a group with a zero Day.
func GroupByDay(articles []models.Article) []DayGroup {
	index := map[time.Time]int{}
	var groups []DayGroup
	for _, a := range articles {
		var day time.Time
		if !a.PublishDate.IsZero() {
			t := a.PublishDate.UTC()
			day = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Day: day})
		}
		groups[i].Articles = append(groups[i].Articles, a)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Day.IsZero() != groups[j].Day.IsZero() {
			return groups[j].Day.IsZero()
		}
		return groups[i].Day.After(groups[j].Day)
	})
	return groups
}

func (r Renderer) news(msg models.ChatMessage) string {
	meta := msg.Meta
	entity := meta.Entity
	if entity == "" {
		entity = "this client"
	}
	window := ""
	if meta.SinceDays != nil && *meta.SinceDays > 0 {
		window = fmt.Sprintf(" in the past %d days", *meta.SinceDays)
	}

	var b strings.Builder
	if len(meta.Articles) == 0 {
		b.WriteString(headingStyle.Render("📰 No articles found"))
		b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("No news about %s%s.", entity, window)))
		if msg.Content != "" {
			b.WriteString("\n" + msg.Content)
		}
		return b.String()
	}

	b.WriteString(headingStyle.Render(fmt.Sprintf("📰 %d article(s) about %s%s", len(meta.Articles), entity, window)))
	if meta.AreArticlesRecent != nil && !*meta.AreArticlesRecent {
		b.WriteString("\n" + warnStyle.Render("No recent coverage; showing older articles."))
	}
	if msg.Content != "" {
		b.WriteString("\n" + msg.Content)
	}

	for _, group := range GroupByDay(meta.Articles) {
		day := "Undated"
		if !group.Day.IsZero() {
			day = group.Day.Format("Mon, 2 Jan 2006")
		}
		b.WriteString("\n\n" + sectionStyle.Render(day))
		for _, a := range group.Articles {
			b.WriteString("\n" + r.article(a))
		}
	}
	return b.String()
}

func (r Renderer) article(a models.Article) string {
	var b strings.Builder
	title := a.Title
	if title == "" {
		title = "(untitled)"
	}
	b.WriteString("• " + boldStyle.Render(title))
	if s := a.Summary.Sentiment.Overall; s != "" {
		badge := s
		if c := a.Summary.Sentiment.Confidence; c > 0 {
			badge = fmt.Sprintf("%s %.0f%%", s, confidencePercent(c))
		}
		b.WriteString(" " + badgeStyle.Foreground(SentimentColor(s)).Render(badge))
	}
	if a.Source != "" {
		b.WriteString(" " + labelStyle.Render(a.Source))
	}
	if a.URL != "" {
		b.WriteString("\n  " + linkStyle.Render(a.URL))
	}
	if a.Summary.SummaryText != "" {
		b.WriteString("\n" + wrapText(a.Summary.SummaryText, "  ", r.Width-4))
	}
	if impact := a.Summary.FinancialImpact; impact.HasImpact {
		line := "  Financial impact"
		if impact.ImpactType != "" {
			line += " (" + impact.ImpactType + ")"
		}
		if len(impact.AffectedCompanies) > 0 {
			line += ": " + strings.Join(impact.AffectedCompanies, ", ")
		}
		b.WriteString("\n" + labelStyle.Render(line))
	}
	if len(a.Summary.Topics) > 0 {
		b.WriteString("\n  " + mutedStyle.Render("Topics: "+strings.Join(a.Summary.Topics, ", ")))
	}
	if fc := a.FactCheck; fc != nil {
		status := fc.Status
		if status == "" {
			status = "unverified"
		}
		if !r.Expanded {
			b.WriteString("\n  " + labelStyle.Render("▸ Fact check: "+status))
		} else {
			b.WriteString("\n  " + sectionStyle.Render("▾ Fact check: "+status))
			if fc.Confidence > 0 {
				b.WriteString(fmt.Sprintf("\n    Confidence: %.0f%%", confidencePercent(fc.Confidence)))
			}
			if fc.ActionableInsight != "" {
				b.WriteString("\n" + wrapText("Insight: "+fc.ActionableInsight, "    ", r.Width-4))
			}
			if fc.Evidence != "" {
				b.WriteString("\n" + wrapText("Evidence: "+fc.Evidence, "    ", r.Width-4))
			}
		}
	}
	if len(a.SimilarArticles) > 0 {
		b.WriteString("\n  " + mutedStyle.Render(fmt.Sprintf("%d similar article(s)", len(a.SimilarArticles))))
	}
	return b.String()
}

// confidencePercent accepts both 0-1 fractions and 0-100 percentages.
func confidencePercent(c float64) float64 {
	if c <= 1 {
		return c * 100
	}
	return c
}

func (r Renderer) advisory(msg models.ChatMessage) string {
	rec := msg.Meta.Advice
	adv := rec.Advice
	name := rec.EntityName
	if name == "" {
		name = msg.Meta.Entity
	}

	var b strings.Builder
	title := "🧾 Advisory"
	if name != "" {
		title += ": " + name
	}
	if msg.Meta.Intent == models.IntentHITL {
		title += " " + labelStyle.Render("(revised)")
	}
	b.WriteString(headingStyle.Render(title))
	if msg.Content != "" {
		b.WriteString("\n" + msg.Content)
	}

	b.WriteString("\n\n" + sectionStyle.Render("Basic Profile"))
	writeValue(&b, "Background", adv.BasicProfile.Background, r.Width)
	writeValue(&b, "Public Sentiment", adv.BasicProfile.PublicSentiment, r.Width)

	b.WriteString("\n\n" + sectionStyle.Render("Financial Profile"))
	writeValue(&b, "Net Worth", adv.FinancialProfile.NetWorth, r.Width)
	if adv.FinancialProfile.Portfolio != nil {
		writeValue(&b, "Portfolio", *adv.FinancialProfile.Portfolio, r.Width)
	}
	writeValue(&b, "Investment Activeness", adv.FinancialProfile.InvestmentActiveness, r.Width)

	if len(adv.Associations.CompaniesBrands)+len(adv.Associations.Individuals) > 0 {
		b.WriteString("\n\n" + sectionStyle.Render("Associations"))
		writeList(&b, "Companies / Brands", adv.Associations.CompaniesBrands)
		writeList(&b, "Individuals", adv.Associations.Individuals)
	}

	risk := adv.RiskAssessment
	b.WriteString("\n\n" + sectionStyle.Render("Risk Assessment"))
	writeRating(&b, "Reputational Risk", risk.ReputationalRisk.Rating, RiskColor)
	writeJustification(&b, risk.ReputationalRisk.Justification, r.Width)
	writeRating(&b, "Illegal Activity Risk", risk.IllegalActivityRisk.Rating, RiskColor)
	writeJustification(&b, risk.IllegalActivityRisk.Justification, r.Width)
	writeList(&b, "Controversies", risk.Controversies)

	suit := adv.SuitabilityAnalysis
	b.WriteString("\n\n" + sectionStyle.Render("Suitability Analysis"))
	writeRating(&b, "Overall Rating", suit.OverallRating, SuitabilityColor)
	writeRating(&b, "Service Usage Likelihood", suit.ServiceUsageLikelihood, SuitabilityColor)
	writeJustification(&b, suit.Justification, r.Width)

	if considered := msg.Meta.ConsideredArticles(); len(considered) > 0 {
		b.WriteString("\n\n" + sectionStyle.Render(fmt.Sprintf("Articles considered (%d)", len(considered))))
		for _, a := range considered {
			title := a.Title
			if title == "" {
				title = a.URL
			}
			b.WriteString("\n  • " + title)
			if a.URL != "" && a.URL != title {
				b.WriteString(" " + mutedStyle.Render("<"+a.URL+">"))
			}
		}
	}

	b.WriteString("\n\n")
	switch msg.Meta.Decision {
	case models.DecisionSave:
		b.WriteString(savedStyle.Render("✅ Saved"))
	case models.DecisionEdit:
		b.WriteString(warnStyle.Render("✏️  Revision requested"))
	default:
		hint := r.DecisionHint
		if hint == "" {
			hint = defaultDecisionHint
		}
		b.WriteString(mutedStyle.Render(hint))
	}
	return b.String()
}

func writeValue(b *strings.Builder, label string, v models.ValueField, width int) {
	value := strings.TrimSpace(v.Value.String())
	if value == "" {
		value = "N/A"
	}
	b.WriteString("\n" + wrapText(labelStyle.Render(label+":")+" "+value, "  ", width-4))
	if len(v.Sources) > 0 {
		b.WriteString("\n    " + mutedStyle.Render("sources: "+strings.Join(v.Sources, ", ")))
	}
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n  " + labelStyle.Render(label+":") + " " + strings.Join(items, ", "))
}

func writeRating(b *strings.Builder, label string, rating float64, color func(float64) lipgloss.Color) {
	r := models.ClampRating(rating)
	b.WriteString("\n  " + labelStyle.Render(label+":") + " " +
		lipgloss.NewStyle().Bold(true).Foreground(color(r)).Render(Rating(r)))
}

func writeJustification(b *strings.Builder, lines []string, width int) {
	for _, line := range lines {
		b.WriteString("\n" + wrapText("- "+line, "    ", width-4))
	}
}

func (r Renderer) overview(msg models.ChatMessage) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(fmt.Sprintf("📋 Overview: %d advisory record(s)", len(msg.Meta.AdviceList))))
	if msg.Content != "" {
		b.WriteString("\n" + msg.Content)
	}
	for _, rec := range msg.Meta.AdviceList {
		b.WriteString("\n" + r.overviewCard(rec))
	}
	return b.String()
}

func (r Renderer) overviewCard(rec models.AdvisoryRecord) string {
	name := rec.EntityName
	if name == "" {
		name = "Unnamed client"
	}
	var b strings.Builder
	b.WriteString(boldStyle.Render(name))
	if rec.Advice == nil {
		b.WriteString("\n" + mutedStyle.Render("No advice recorded"))
		return cardStyle.Render(b.String())
	}
	adv := rec.Advice
	if nw := strings.TrimSpace(adv.FinancialProfile.NetWorth.Value.String()); nw != "" {
		b.WriteString("\n" + labelStyle.Render("Net Worth:") + " " + nw)
	}
	writeRating(&b, "Reputational Risk", adv.RiskAssessment.ReputationalRisk.Rating, RiskColor)
	writeRating(&b, "Illegal Activity Risk", adv.RiskAssessment.IllegalActivityRisk.Rating, RiskColor)
	writeRating(&b, "Overall Suitability", adv.SuitabilityAnalysis.OverallRating, SuitabilityColor)
	style := cardStyle
	if r.Width > 8 {
		style = style.Width(r.Width - 8)
	}
	return style.Render(b.String())
}

func (r Renderer) financial(msg models.ChatMessage) string {
	fd := msg.Meta.FinancialData
	currency := fd.Meta.Currency

	var b strings.Builder
	title := "💹 " + fd.Symbol
	if fy := fd.FiscalYear.String(); fy != "" {
		title += " · FY " + fy
	}
	b.WriteString(headingStyle.Render(title))
	if msg.Content != "" {
		b.WriteString("\n" + msg.Content)
	}

	rows := []struct {
		label          string
		formatted, raw models.FlexString
	}{
		{"Revenue", fd.Formatted.Revenue, fd.Financials.Revenue},
		{"Net Income", fd.Formatted.NetIncome, fd.Financials.NetIncome},
		{"Total Assets", fd.Formatted.TotalAssets, fd.Financials.TotalAssets},
	}
	var card strings.Builder
	for i, row := range rows {
		if i > 0 {
			card.WriteByte('\n')
		}
		card.WriteString(fmt.Sprintf("%-14s %s", labelStyle.Render(row.label), Figure(row.formatted, row.raw, currency)))
	}
	b.WriteString("\n" + cardStyle.Render(card.String()))

	var footer []string
	if currency != "" {
		footer = append(footer, "currency "+currency)
	}
	if ts := fd.Meta.Timestamp.String(); ts != "" {
		if t, ok := models.ParseTimestamp(ts); ok {
			ts = t.Format("2 Jan 2006 15:04 MST")
		} else if d, ok := fd.Meta.Timestamp.Decimal(); ok {
			ts = models.FromEpoch(d.InexactFloat64()).Format("2 Jan 2006 15:04 MST")
		}
		footer = append(footer, "as of "+ts)
	}
	if len(footer) > 0 {
		b.WriteString("\n" + mutedStyle.Render(strings.Join(footer, " · ")))
	}
	return b.String()
}
