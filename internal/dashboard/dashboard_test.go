package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/WealthGo/internal/api"
	"github.com/dyike/WealthGo/internal/models"
)

func TestPaginate(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}
	for _, tc := range []struct{ page, size, want int }{
		{1, 10, 10}, {2, 10, 10}, {3, 10, 3}, {4, 10, 0}, {1, 5, 5}, {5, 5, 3},
	} {
		got := Paginate(items, tc.page, tc.size)
		want := tc.size
		if rest := len(items) - (tc.page-1)*tc.size; rest < want {
			want = max(0, rest)
		}
		assert.Len(t, got, want, "page %d size %d", tc.page, tc.size)
		assert.Equal(t, tc.want, len(got))
	}
	assert.Equal(t, []int{20, 21, 22}, Paginate(items, 3, 10))
	assert.Empty(t, Paginate(items, 0, 10))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 5, TotalPages(23, 5))
}

func TestNewPageClamps(t *testing.T) {
	p := NewPage([]string{"a", "b", "c"}, 9, 2)
	assert.Equal(t, 2, p.Number)
	assert.Equal(t, []string{"c"}, p.Items)

	empty := NewPage([]string(nil), 1, 5)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Empty(t, empty.Items)
}

func TestDebouncerRunsLastOnly(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Value
	for _, q := range []string{"j", "ja", "jan", "jane"} {
		q := q
		d.Trigger(func() {
			calls.Add(1)
			last.Store(q)
		})
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "jane", last.Load())
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

type fakeArticles struct {
	people []models.HNWI
	page   models.ArticlePage
	err    error
	got    api.ArticleQuery
}

func (f *fakeArticles) ListHNWI(ctx context.Context) ([]models.HNWI, error) { return f.people, nil }

func (f *fakeArticles) ListArticles(ctx context.Context, person string, q api.ArticleQuery) (models.ArticlePage, error) {
	f.got = q
	return f.page, f.err
}

func makeArticles(n int) []models.DBArticle {
	out := make([]models.DBArticle, n)
	for i := range out {
		out[i] = models.DBArticle{ID: fmt.Sprint(i), Title: fmt.Sprintf("Article %d", i)}
	}
	return out
}

func TestLoadArticlesClientSide(t *testing.T) {
	src := &fakeArticles{page: models.ArticlePage{Articles: makeArticles(12)}}
	view, err := LoadArticles(context.Background(), src, ArticleRequest{Person: "Jane Doe", Page: 2})
	require.NoError(t, err)
	assert.False(t, view.ServerPaged)
	assert.Equal(t, 10, src.got.Limit)
	assert.Equal(t, 10, src.got.Skip)
	assert.Len(t, view.Page.Items, 2)
	assert.Equal(t, 2, view.Page.TotalPages)
}

func TestLoadArticlesServerSide(t *testing.T) {
	total := 31
	src := &fakeArticles{page: models.ArticlePage{Articles: makeArticles(5), Total: &total}}
	view, err := LoadArticles(context.Background(), src, ArticleRequest{Person: "Jane Doe", Page: 3, Layout: LayoutContent, Search: "ipo"})
	require.NoError(t, err)
	assert.True(t, view.ServerPaged)
	assert.Equal(t, api.ArticleQuery{Search: "ipo", Limit: 5, Skip: 10}, src.got)
	assert.Equal(t, 7, view.Page.TotalPages)
	assert.Len(t, view.Page.Items, 5)
}

func TestLoadArticlesError(t *testing.T) {
	src := &fakeArticles{err: errors.New("boom")}
	_, err := LoadArticles(context.Background(), src, ArticleRequest{Person: "Jane"})
	assert.ErrorContains(t, err, "boom")
}

func TestRenderArticlesEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderArticles(&buf, ArticleView{Person: "Jane Doe", Page: NewPage([]models.DBArticle{}, 1, 10)})
	assert.Contains(t, buf.String(), "No articles found for Jane Doe")
}

func TestRenderArticles(t *testing.T) {
	articles := []models.DBArticle{{Title: "IPO filed", Source: "Reuters", PublishDate: "2024-03-05T10:00:00Z", URL: "https://r.example/1",
		Summary: models.DBArticleSummary{SummaryText: "Jane's company files"}}}
	var buf bytes.Buffer
	RenderArticles(&buf, ArticleView{Person: "Jane Doe", Page: NewPage(articles, 1, 10)})
	out := buf.String()
	assert.Contains(t, out, "Articles for Jane Doe")
	assert.Contains(t, out, "Showing 1 of 1 articles")
	assert.Contains(t, out, "5 Mar 2024")
	assert.Contains(t, out, "Page 1 of 1")
}

func TestDefaultPerson(t *testing.T) {
	p, ok := DefaultPerson([]models.HNWI{{Person: " "}, {Person: "Jane Doe"}})
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe", p)
	_, ok = DefaultPerson(nil)
	assert.False(t, ok)
}

func TestFormatArticleDate(t *testing.T) {
	assert.Equal(t, "N/A", FormatArticleDate(""))
	assert.Equal(t, "2 Jan 2024", FormatArticleDate("2024-01-02"))
	assert.Equal(t, "someday", FormatArticleDate("someday"))
}

func TestExtractInsightsShapes(t *testing.T) {
	item := `{"id":"i1","hnwi_name":"Jane Doe","updated_at":"2024-05-01T10:00:00+00:00Z","session_id":"s1"}`
	bodies := map[string]string{
		"array":   `[` + item + `]`,
		"value":   `{"value":[` + item + `]}`,
		"items":   `{"items":[` + item + `]}`,
		"docs":    `{"docs":[` + item + `],"count":1}`,
		"results": `{"results":[` + item + `]}`,
		"single":  item,
		"arrays":  `{"whatever":[` + item + `]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			got := ExtractInsights([]byte(body))
			require.Len(t, got, 1)
			assert.Equal(t, "Jane Doe", got[0].HNWIName)
			assert.Equal(t, "s1", got[0].SessionID)
		})
	}

	assert.Empty(t, ExtractInsights([]byte(`{"count":0}`)))
	assert.Empty(t, ExtractInsights([]byte(`"nope"`)))
	assert.Empty(t, ExtractInsights(nil))
}

func TestExtractInsightsGroupedBySessionKey(t *testing.T) {
	got := ExtractInsights([]byte(`{"s2":[{"id":"b","hnwi_name":"John"}],"s1":[{"id":"a","hnwi_name":"Jane"}]}`))
	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0].SessionID)
	assert.Equal(t, "s2", got[1].SessionID)
}

func TestGroupInsights(t *testing.T) {
	items := ExtractInsights([]byte(`[
		{"id":"a","hnwi_name":"Jane","updated_at":"2024-05-01T10:00:00Z","session_id":"s1"},
		{"id":"b","hnwi_name":"John","updated_at":"2024-05-03T10:00:00Z","session_id":"s1"},
		{"id":"c","hnwi_name":"Jane","updated_at":"2024-05-02T10:00:00Z","session_id":"s1"},
		{"id":"d","hnwi_name":"Ann","updated_at":"2024-06-01T10:00:00Z"}
	]`))
	sessions := GroupInsights(items)
	require.Len(t, sessions, 2)
	assert.Equal(t, UnknownSession, sessions[0].ID)
	assert.Equal(t, "s1", sessions[1].ID)
	assert.Equal(t, []string{"b", "c", "a"}, []string{sessions[1].Items[0].ID, sessions[1].Items[1].ID, sessions[1].Items[2].ID})
	assert.Equal(t, []string{"John", "Jane"}, sessions[1].Names())
}

func TestFormatInsightDate(t *testing.T) {
	assert.Equal(t, "May 1, 2024, 03:04 PM", FormatInsightDate("2024-05-01T15:04:00+00:00Z"))
	assert.Equal(t, "N/A", FormatInsightDate(""))
	assert.Equal(t, "N/A", FormatInsightDate("garbage"))
}

func TestRenderInsights(t *testing.T) {
	sessions := GroupInsights(ExtractInsights([]byte(`[{"id":"a","hnwi_name":"Jane","updated_at":"2024-05-01T10:00:00Z","session_id":"s1",
		"advice":{"risk_assessment":{"reputational_risk":{"rating":6},"controversies":["one","two","three","four"]},"suitability_analysis":{"overall_rating":8}}}]`)))
	var buf bytes.Buffer
	RenderInsights(&buf, sessions, "")
	out := buf.String()
	assert.Contains(t, out, "Sessions: 1")
	assert.Contains(t, out, "1 insight")
	assert.Contains(t, out, "6/10")
	assert.Contains(t, out, "8/10")
	assert.Contains(t, out, "three")
	assert.NotContains(t, out, "four")

	buf.Reset()
	RenderInsights(&buf, sessions, "other")
	assert.Contains(t, buf.String(), "No insights data found")
}

func TestRenderFinancials(t *testing.T) {
	stmt := &models.FinancialStatement{Symbol: "AAPL"}
	stmt.IncomeStatement.TotalRevenue = "391035000000"
	for i := 0; i < 8; i++ {
		stmt.EarningsEstimates.History = append(stmt.EarningsEstimates.History, models.EarningsHistoryItem{
			FiscalDateEnding: models.FlexString(fmt.Sprintf("202%d-09-30", i)),
			ReportedEPS:      "1.5",
		})
	}

	var buf bytes.Buffer
	RenderFinancials(&buf, stmt, FinancialOptions{})
	out := buf.String()
	assert.Contains(t, out, "Financials: AAPL")
	assert.Contains(t, out, "Income Statement")
	assert.Contains(t, out, "$391.04B")
	assert.Contains(t, out, "2024-09-30")
	assert.NotContains(t, out, "2025-09-30")
	assert.Contains(t, out, "Showing 5 of 8")

	buf.Reset()
	RenderFinancials(&buf, stmt, FinancialOptions{AllHistory: true, Quote: &models.Quote{Symbol: "AAPL", Price: 190.5, Currency: "USD"}})
	assert.Contains(t, buf.String(), "2027-09-30")
	assert.Contains(t, buf.String(), "Live: 190.50 USD")

	buf.Reset()
	RenderFinancials(&buf, nil, FinancialOptions{})
	assert.Contains(t, buf.String(), "No financial data found")
}

func TestSampleClients(t *testing.T) {
	clients, err := LoadClients("")
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "Sarah Chen", clients[0].Name)
	assert.Equal(t, "15750000", clients[0].NetWorth.String())

	matched := FilterClients(clients, "WEBER")
	require.Len(t, matched, 1)
	assert.Equal(t, "Under Review", matched[0].ComplianceStatus)

	var buf bytes.Buffer
	RenderClients(&buf, NewPage(clients, 1, ClientsPageSize), "")
	assert.Contains(t, buf.String(), "$15,750,000")

	buf.Reset()
	RenderClientDetail(&buf, clients[1])
	assert.Contains(t, buf.String(), "Geneva, Switzerland")
	assert.Contains(t, buf.String(), "Large Cash Transfer")
}

func TestLoadClientsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"9","name":"Ann Lee","netWorth":"1000"}]`), 0o644))
	clients, err := LoadClients(path)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", clients[0].Name)

	_, err = LoadClients(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestAlertsFilterAndSummary(t *testing.T) {
	data, err := LoadCompliance("")
	require.NoError(t, err)
	require.Len(t, data.Alerts, 3)

	s := Summarize(data.Alerts)
	assert.Equal(t, AlertSummary{Open: 3, Critical: 1, UnderReview: 1, CriticalUnresolved: 1}, s)

	assert.Len(t, FilterAlerts(data.Alerts, "sanctions list", "all"), 1)
	assert.Len(t, FilterAlerts(data.Alerts, "", "under review"), 1)
	assert.Len(t, FilterAlerts(data.Alerts, "marcus", "open"), 0)
	assert.Len(t, FilterAlerts(data.Alerts, "", ""), 3)

	var buf bytes.Buffer
	RenderAlerts(&buf, s, NewPage(FilterAlerts(data.Alerts, "", "all"), 1, AlertsPageSize))
	out := buf.String()
	assert.Contains(t, out, "3 open · 1 critical · 1 under review")
	assert.Contains(t, out, "1 critical compliance alert(s)")
	assert.Contains(t, out, "Unassigned")

	buf.Reset()
	RenderAuditLogs(&buf, data.AuditLogs)
	assert.Contains(t, buf.String(), "Reviewed AML alert CA001")
}

func TestRenderHNWI(t *testing.T) {
	var buf bytes.Buffer
	RenderHNWI(&buf, []models.HNWI{{Person: "Jane Doe"}})
	assert.Contains(t, buf.String(), "Jane Doe")

	buf.Reset()
	RenderHNWI(&buf, nil)
	assert.Contains(t, buf.String(), "No HNWI profiles found")
}
