package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dyike/WealthGo/internal/dashboard"
	"github.com/dyike/WealthGo/internal/display"
	"github.com/dyike/WealthGo/internal/market"
	"github.com/dyike/WealthGo/internal/models"
)

func newArticlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "articles [PERSON]",
		Short: "Browse stored news articles for a person",
		Long: `Show stored articles for PERSON. Without PERSON the first listed person is
used, or --pick offers a menu.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			search, _ := flags.GetString("search")
			page, _ := flags.GetInt("page")
			limit, _ := flags.GetInt("limit")
			content, _ := flags.GetBool("content")
			pick, _ := flags.GetBool("pick")

			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := commandContext(cmd)

			person := ""
			if len(args) == 1 {
				person = strings.TrimSpace(args[0])
			}
			if person == "" {
				people, err := app.API.ListHNWI(ctx)
				if err != nil {
					display.DisplayError(err, "loading people")
					return err
				}
				if pick {
					person, err = PromptForPerson(people)
					if err != nil {
						return err
					}
				} else {
					var ok bool
					if person, ok = dashboard.DefaultPerson(people); !ok {
						display.DisplayEmpty("No people found")
						return nil
					}
				}
			}

			layout := dashboard.LayoutSummary
			size := app.Config.ArticlesPageSize
			if content {
				layout = dashboard.LayoutContent
				size = dashboard.ArticleContentPageSize
			}
			if limit > 0 {
				size = limit
			}
			view, err := dashboard.LoadArticles(ctx, app.API, dashboard.ArticleRequest{
				Person:   person,
				Search:   search,
				Page:     page,
				PageSize: size,
				Layout:   layout,
			})
			if err != nil {
				app.Logger.Warn("load articles failed", zap.String("person", person), zap.Error(err))
				display.DisplayError(err, "loading articles")
				return err
			}
			dashboard.RenderArticles(app.Out, view)
			return nil
		},
	}
	cmd.Flags().String("search", "", "Filter articles by text")
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("limit", 0, "Articles per page (defaults to articles_page_size)")
	cmd.Flags().Bool("content", false, "Show article content instead of summaries")
	cmd.Flags().Bool("pick", false, "Choose the person from a menu")
	return cmd
}

func newHNWICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hnwi",
		Short: "List tracked high-net-worth individuals",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()
			people, err := app.API.ListHNWI(commandContext(cmd))
			if err != nil {
				display.DisplayError(err, "loading people")
				return err
			}
			dashboard.RenderHNWI(app.Out, people)
			return nil
		},
	}
}

func newFinancialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "financials SYMBOL",
		Short: "Show stored financial statements for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			allHistory, _ := cmd.Flags().GetBool("all-history")
			withQuote, _ := cmd.Flags().GetBool("quote")

			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := commandContext(cmd)

			symbol, err := market.NormalizeSymbol(args[0])
			if err != nil {
				return err
			}
			stmt, err := app.API.GetFinancials(ctx, symbol)
			if err != nil {
				app.Logger.Warn("load financials failed", zap.String("symbol", symbol), zap.Error(err))
				display.DisplayError(err, "loading financials")
				return err
			}

			opts := dashboard.FinancialOptions{AllHistory: allHistory}
			if withQuote {
				svc := market.NewService(market.WithLogger(app.Logger.Named("market")))
				if q, err := svc.Quote(ctx, symbol); err != nil {
					display.DisplayWarning(fmt.Sprintf("live quote unavailable: %v", err))
				} else {
					opts.Quote = &q
				}
			}
			dashboard.RenderFinancials(app.Out, stmt, opts)
			return nil
		},
	}
	cmd.Flags().Bool("all-history", false, "Show the full earnings history")
	cmd.Flags().Bool("quote", false, "Add a live market quote")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List symbols with stored financials",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()
			symbols, err := app.API.ListFinancials(commandContext(cmd))
			if err != nil {
				display.DisplayError(err, "listing financials")
				return err
			}
			dashboard.RenderSymbols(app.Out, symbols)
			return nil
		},
	})
	return cmd
}

func newInsightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show saved client insights grouped by chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _ := cmd.Flags().GetString("session")
			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			raw, err := app.API.ListInsights(commandContext(cmd))
			if err != nil {
				display.DisplayError(err, "loading insights")
				return err
			}
			items := dashboard.ExtractInsights(raw)
			app.Logger.Debug("insights loaded", zap.Int("count", len(items)))
			dashboard.RenderInsights(app.Out, dashboard.GroupInsights(items), session)
			return nil
		},
	}
	cmd.Flags().String("session", "", "Only show this session")
	return cmd
}

func newClientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Browse the client book",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			search, _ := flags.GetString("search")
			file, _ := flags.GetString("file")
			page, _ := flags.GetInt("page")
			show, _ := flags.GetString("show")
			browse, _ := flags.GetBool("browse")

			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			clients, err := dashboard.LoadClients(file)
			if err != nil {
				return err
			}
			if show != "" {
				c, ok := findClient(clients, show)
				if !ok {
					display.DisplayEmpty(fmt.Sprintf("No client matches %q", show))
					return nil
				}
				dashboard.RenderClientDetail(app.Out, c)
				return nil
			}
			render := func(w io.Writer, query string, page int) int {
				p := dashboard.NewPage(dashboard.FilterClients(clients, query), page, app.Config.DashboardPageSize)
				dashboard.RenderClients(w, p, query)
				return p.TotalPages
			}
			if browse {
				return runBrowser(cmd, app, search, render)
			}
			render(app.Out, search, page)
			return nil
		},
	}
	cmd.Flags().String("search", "", "Filter by client name")
	cmd.Flags().String("file", "", "Read clients from a JSON file instead of the sample book")
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().String("show", "", "Show one client by id or name")
	cmd.Flags().Bool("browse", false, "Filter live as you type")
	return cmd
}

func findClient(clients []models.Client, key string) (models.Client, bool) {
	for _, c := range clients {
		if c.ID == key || strings.EqualFold(c.Name, key) {
			return c, true
		}
	}
	return models.Client{}, false
}

func newAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Review compliance alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			search, _ := flags.GetString("search")
			status, _ := flags.GetString("status")
			file, _ := flags.GetString("file")
			page, _ := flags.GetInt("page")
			audit, _ := flags.GetBool("audit")
			browse, _ := flags.GetBool("browse")

			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			data, err := dashboard.LoadCompliance(file)
			if err != nil {
				return err
			}
			summary := dashboard.Summarize(data.Alerts)
			render := func(w io.Writer, query string, page int) int {
				p := dashboard.NewPage(dashboard.FilterAlerts(data.Alerts, query, status), page, app.Config.DashboardPageSize)
				dashboard.RenderAlerts(w, summary, p)
				return p.TotalPages
			}
			if browse {
				return runBrowser(cmd, app, search, render)
			}
			render(app.Out, search, page)
			if audit {
				fmt.Fprintln(app.Out)
				dashboard.RenderAuditLogs(app.Out, data.AuditLogs)
			}
			return nil
		},
	}
	cmd.Flags().String("search", "", "Filter by client name or description")
	cmd.Flags().String("status", "all", "Filter by status (all, Open, Under Review, Resolved, Escalated)")
	cmd.Flags().String("file", "", "Read alerts from a JSON file instead of the sample data")
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Bool("audit", false, "Also show the audit trail")
	cmd.Flags().Bool("browse", false, "Filter live as you type")
	return cmd
}
