package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dyike/WealthGo/internal/api"
	"github.com/dyike/WealthGo/internal/models"
)

// ArticleSource is the part of the API the articles view reads.
type ArticleSource interface {
	ListHNWI(ctx context.Context) ([]models.HNWI, error)
	ListArticles(ctx context.Context, person string, q api.ArticleQuery) (models.ArticlePage, error)
}

// ArticleLayout picks between the summary table and the raw-content table.
type ArticleLayout int

const (
	LayoutSummary ArticleLayout = iota
	LayoutContent
)

func (l ArticleLayout) PageSize() int {
	if l == LayoutContent {
		return ArticleContentPageSize
	}
	return ArticlesPageSize
}

type ArticleRequest struct {
	Person   string
	Search   string
	Page     int
	PageSize int
	Layout   ArticleLayout
}

type ArticleView struct {
	Person string
	Search string
	Layout ArticleLayout
	Page   Page[models.DBArticle]
	// ServerPaged is set when the backend reported a total and sliced for us.
	ServerPaged bool
}

// DefaultPerson is the first listed person, as the web view preselects.
func DefaultPerson(people []models.HNWI) (string, bool) {
	for _, p := range people {
		if strings.TrimSpace(p.Person) != "" {
			return p.Person, true
		}
	}
	return "", false
}

// LoadArticles fetches one page for req.Person. When the backend returns a
// total it paginates server-side; otherwise the full list is sliced here.
func LoadArticles(ctx context.Context, src ArticleSource, req ArticleRequest) (ArticleView, error) {
	size := req.PageSize
	if size <= 0 {
		size = req.Layout.PageSize()
	}
	page := req.Page
	if page < 1 {
		page = 1
	}

	resp, err := src.ListArticles(ctx, req.Person, api.ArticleQuery{
		Search: req.Search,
		Limit:  size,
		Skip:   (page - 1) * size,
	})
	if err != nil {
		return ArticleView{}, fmt.Errorf("load articles for %s: %w", req.Person, err)
	}

	view := ArticleView{Person: req.Person, Search: req.Search, Layout: req.Layout}
	if resp.Total != nil {
		total := *resp.Total
		view.ServerPaged = true
		view.Page = Page[models.DBArticle]{
			Items:      resp.Articles,
			Number:     ClampPage(page, TotalPages(total, size)),
			TotalPages: TotalPages(total, size),
			Total:      total,
		}
		return view, nil
	}
	view.Page = NewPage(resp.Articles, page, size)
	return view, nil
}

// FormatArticleDate renders 2 Jan 2006, or N/A.
func FormatArticleDate(raw models.FlexString) string {
	s := strings.TrimSpace(raw.String())
	if s == "" {
		return "N/A"
	}
	if t, ok := models.ParseTimestamp(s); ok {
		return t.Format("2 Jan 2006")
	}
	if d, ok := raw.Decimal(); ok {
		return models.FromEpoch(d.InexactFloat64()).Format("2 Jan 2006")
	}
	return s
}

func RenderHNWI(w io.Writer, people []models.HNWI) {
	if len(people) == 0 {
		fmt.Fprintln(w, "No HNWI profiles found")
		return
	}
	writeTitle(w, "High-net-worth individuals", fmt.Sprintf("%d tracked", len(people)))
	rows := make([][]string, 0, len(people))
	for i, p := range people {
		rows = append(rows, []string{fmt.Sprint(i + 1), p.Person})
	}
	fmt.Fprintln(w, newTable([]string{"#", "Person"}, rows, nil).String())
}

func RenderArticles(w io.Writer, view ArticleView) {
	if view.Page.Total == 0 {
		fmt.Fprintf(w, "No articles found for %s\n", view.Person)
		return
	}

	subtitle := fmt.Sprintf("Showing %d of %d articles", len(view.Page.Items), view.Page.Total)
	if view.Search != "" {
		subtitle += fmt.Sprintf(" matching %q", view.Search)
	}
	writeTitle(w, "Articles for "+view.Person, subtitle)

	var headers []string
	rows := make([][]string, 0, len(view.Page.Items))
	if view.Layout == LayoutContent {
		headers = []string{"Title", "Source", "Content", "Publish Date", "URL"}
		for _, a := range view.Page.Items {
			rows = append(rows, []string{
				truncate(a.Title, 40),
				orNA(a.Source),
				truncate(a.Content, 60),
				orNA(a.PublishDate.String()),
				orNA(a.URL),
			})
		}
	} else {
		headers = []string{"Title", "Source", "Summary", "Publish Date", "URL"}
		for _, a := range view.Page.Items {
			rows = append(rows, []string{
				truncate(a.Title, 40),
				orNA(a.Source),
				truncate(a.Summary.SummaryText, 60),
				FormatArticleDate(a.PublishDate),
				orNA(a.URL),
			})
		}
	}
	fmt.Fprintln(w, newTable(headers, rows, nil).String())
	writePager(w, view.Page.Number, view.Page.TotalPages)
}
