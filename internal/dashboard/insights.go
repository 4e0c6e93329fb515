package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dyike/WealthGo/internal/display"
	"github.com/dyike/WealthGo/internal/models"
)

// UnknownSession groups insights saved without a session id.
const UnknownSession = "unknown"

var (
	insightWrapperKeys = []string{"value", "items", "documents", "docs", "results", "data"}
	insightShapeKeys   = []string{"id", "hnwi_name", "advice", "session_id", "updated_at"}
)

// ExtractInsights finds the insight list in whatever shape /db/insights
// returned: a bare array, an array under a wrapper key, a single insight,
// or an object of arrays keyed by session. In the last case items without
// their own session_id take the key.
func ExtractInsights(raw []byte) []models.Insight {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	if raw[0] == '[' {
		return decodeInsights(raw, "")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}

	for _, key := range insightWrapperKeys {
		if v := bytes.TrimSpace(obj[key]); len(v) > 0 && v[0] == '[' {
			return decodeInsights(v, "")
		}
	}
	for _, key := range insightShapeKeys {
		if _, ok := obj[key]; ok {
			var one models.Insight
			if err := json.Unmarshal(raw, &one); err != nil {
				return nil
			}
			return []models.Insight{one}
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []models.Insight
	for _, k := range keys {
		if v := bytes.TrimSpace(obj[k]); len(v) > 0 && v[0] == '[' {
			out = append(out, decodeInsights(v, k)...)
		}
	}
	return out
}

// decodeInsights keeps the elements that decode and drops the rest.
func decodeInsights(raw []byte, session string) []models.Insight {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]models.Insight, 0, len(items))
	for _, item := range items {
		var ins models.Insight
		if err := json.Unmarshal(item, &ins); err != nil {
			continue
		}
		if ins.SessionID == "" {
			ins.SessionID = session
		}
		out = append(out, ins)
	}
	return out
}

// InsightSession is every insight saved in one chat session, newest first.
type InsightSession struct {
	ID     string
	Items  []models.Insight
	Latest time.Time
}

// Names lists the distinct HNWI names in first-seen order.
func (s InsightSession) Names() []string {
	seen := map[string]bool{}
	var names []string
	for _, it := range s.Items {
		if it.HNWIName == "" || seen[it.HNWIName] {
			continue
		}
		seen[it.HNWIName] = true
		names = append(names, it.HNWIName)
	}
	return names
}

// GroupInsights groups by session id and sorts sessions and their items
// by updated_at, newest first.
func GroupInsights(items []models.Insight) []InsightSession {
	index := map[string]int{}
	var sessions []InsightSession
	for _, it := range items {
		id := it.SessionID
		if id == "" {
			id = UnknownSession
		}
		i, ok := index[id]
		if !ok {
			i = len(sessions)
			index[id] = i
			sessions = append(sessions, InsightSession{ID: id})
		}
		sessions[i].Items = append(sessions[i].Items, it)
	}
	for i := range sessions {
		s := &sessions[i]
		sort.SliceStable(s.Items, func(a, b int) bool {
			return s.Items[a].Updated().After(s.Items[b].Updated())
		})
		s.Latest = s.Items[0].Updated()
	}
	sort.SliceStable(sessions, func(a, b int) bool {
		return sessions[a].Latest.After(sessions[b].Latest)
	})
	return sessions
}

// FormatInsightDate renders Jan 2, 2006, 03:04 PM in UTC, or N/A.
func FormatInsightDate(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	t, ok := models.ParseTimestamp(s)
	if !ok {
		return "N/A"
	}
	return t.UTC().Format("Jan 2, 2006, 03:04 PM")
}

// RenderInsights prints sessions; a non-empty only limits output to that session.
func RenderInsights(w io.Writer, sessions []InsightSession, only string) {
	if only != "" {
		var kept []InsightSession
		for _, s := range sessions {
			if s.ID == only {
				kept = append(kept, s)
			}
		}
		sessions = kept
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No insights available")
		fmt.Fprintln(w, subtitleStyle.Render("No insights data found for this client."))
		return
	}

	writeTitle(w, "Client Insights (Grouped by Session)", fmt.Sprintf("Sessions: %d", len(sessions)))
	for _, s := range sessions {
		date := "Unknown date"
		if !s.Latest.IsZero() {
			date = FormatInsightDate(s.Items[0].UpdatedAt)
		}
		count := fmt.Sprintf("%d insight", len(s.Items))
		if len(s.Items) > 1 {
			count += "s"
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s • %s  %s\n", titleStyle.Render(date), count, subtitleStyle.Render(strings.Join(s.Names(), ", ")))
		fmt.Fprintln(w, subtitleStyle.Render("session "+s.ID))
		for _, it := range s.Items {
			fmt.Fprintln(w, renderInsight(it))
		}
	}
}

func renderInsight(it models.Insight) string {
	name := it.HNWIName
	if name == "" {
		name = "Unknown"
	}
	adv := it.Advice
	rows := [][]string{}

	netWorth, portfolio := "N/A", ""
	if fp := adv.FinancialProfile; fp != nil {
		if fp.NetWorth != nil && fp.NetWorth.Value != "" {
			netWorth = fp.NetWorth.Value.String()
		}
		if fp.Portfolio != nil {
			portfolio = fp.Portfolio.Value.String()
		}
	}
	rows = append(rows, []string{"Net Worth", netWorth})
	if portfolio != "" {
		rows = append(rows, []string{"Portfolio", portfolio})
	}

	var illegal, reputational *float64
	var controversies []string
	if ra := adv.RiskAssessment; ra != nil {
		if ra.IllegalActivityRisk != nil {
			illegal = ra.IllegalActivityRisk.Rating
		}
		if ra.ReputationalRisk != nil {
			reputational = ra.ReputationalRisk.Rating
		}
		controversies = ra.Controversies
	}
	rows = append(rows,
		[]string{"Illegal Activity Risk", display.Rating(models.RatingValue(illegal))},
		[]string{"Reputational Risk", display.Rating(models.RatingValue(reputational))},
	)

	var overall, likelihood *float64
	if sa := adv.SuitabilityAnalysis; sa != nil {
		overall, likelihood = sa.OverallRating, sa.ServiceUsageLikelihood
	}
	rows = append(rows,
		[]string{"Overall Rating", display.Rating(models.RatingValue(overall))},
		[]string{"Service Usage Likelihood", display.Rating(models.RatingValue(likelihood))},
	)
	if len(controversies) > 3 {
		controversies = controversies[:3]
	}
	for i, c := range controversies {
		label := ""
		if i == 0 {
			label = "Notable Controversies"
		}
		rows = append(rows, []string{label, truncate(c, 70)})
	}
	if n := len(it.ArticlesConsidered); n > 0 {
		rows = append(rows, []string{"Articles Considered", fmt.Sprint(n)})
	}

	return titleStyle.Render(name) + "\n" + newTable([]string{"Field", "Value"}, rows, nil).String()
}
