package dashboard

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/WealthGo/internal/display"
	"github.com/dyike/WealthGo/internal/models"
)

//go:embed data/*.json
var sampleData embed.FS

// LoadClients reads path, or the bundled sample book when path is empty.
func LoadClients(path string) ([]models.Client, error) {
	var clients []models.Client
	if err := loadJSON(path, "data/clients.json", &clients); err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	return clients, nil
}

// LoadCompliance reads path, or the bundled sample alerts when path is empty.
func LoadCompliance(path string) (models.ComplianceData, error) {
	var data models.ComplianceData
	if err := loadJSON(path, "data/compliance.json", &data); err != nil {
		return models.ComplianceData{}, fmt.Errorf("load compliance data: %w", err)
	}
	return data, nil
}

func loadJSON(path, sample string, v any) error {
	var (
		raw []byte
		err error
	)
	if path != "" {
		raw, err = os.ReadFile(path)
	} else {
		raw, err = sampleData.ReadFile(sample)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// FilterClients keeps clients whose name contains search, ignoring case.
func FilterClients(clients []models.Client, search string) []models.Client {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return clients
	}
	var out []models.Client
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

// FilterAlerts matches search against client name or description and
// status against "all" or the alert status, both ignoring case.
func FilterAlerts(alerts []models.ComplianceAlert, search, status string) []models.ComplianceAlert {
	q := strings.ToLower(strings.TrimSpace(search))
	status = strings.TrimSpace(status)
	var out []models.ComplianceAlert
	for _, a := range alerts {
		if q != "" &&
			!strings.Contains(strings.ToLower(a.ClientName), q) &&
			!strings.Contains(strings.ToLower(a.Description), q) {
			continue
		}
		if status != "" && !strings.EqualFold(status, "all") && !strings.EqualFold(a.Status, status) {
			continue
		}
		out = append(out, a)
	}
	return out
}

type AlertSummary struct {
	Open               int
	Critical           int
	UnderReview        int
	CriticalUnresolved int
}

// Summarize counts over the whole alert set, not the filtered view.
func Summarize(alerts []models.ComplianceAlert) AlertSummary {
	var s AlertSummary
	for _, a := range alerts {
		if !a.Resolved() {
			s.Open++
		}
		if a.Severity == models.SeverityCritical {
			s.Critical++
			if !a.Resolved() {
				s.CriticalUnresolved++
			}
		}
		if a.Status == models.AlertStatusUnderReview {
			s.UnderReview++
		}
	}
	return s
}

func complianceColor(status string) lipgloss.Color {
	switch status {
	case "Clear":
		return lipgloss.Color("#10B981")
	case "Under Review":
		return lipgloss.Color("#F59E0B")
	case "Flagged":
		return lipgloss.Color("#EF4444")
	default:
		return lipgloss.Color("#6B7280")
	}
}

func riskProfileColor(profile string) lipgloss.Color {
	switch profile {
	case "Conservative":
		return lipgloss.Color("#3B82F6")
	case "Moderate":
		return lipgloss.Color("#F59E0B")
	case "Aggressive":
		return lipgloss.Color("#EF4444")
	default:
		return lipgloss.Color("#6B7280")
	}
}

func severityColor(severity string) lipgloss.Color {
	switch severity {
	case "Critical":
		return lipgloss.Color("#DC2626")
	case "High":
		return lipgloss.Color("#EA580C")
	case "Medium":
		return lipgloss.Color("#CA8A04")
	case "Low":
		return lipgloss.Color("#2563EB")
	default:
		return lipgloss.Color("#6B7280")
	}
}

func alertStatusColor(status string) lipgloss.Color {
	switch status {
	case models.AlertStatusOpen:
		return lipgloss.Color("#2563EB")
	case models.AlertStatusUnderReview:
		return lipgloss.Color("#CA8A04")
	case models.AlertStatusResolved:
		return lipgloss.Color("#16A34A")
	case models.AlertStatusEscalated:
		return lipgloss.Color("#DC2626")
	default:
		return lipgloss.Color("#6B7280")
	}
}

func RenderClients(w io.Writer, page Page[models.Client], search string) {
	if page.Total == 0 {
		if search != "" {
			fmt.Fprintf(w, "No clients match %q\n", search)
		} else {
			fmt.Fprintln(w, "No clients found")
		}
		return
	}
	writeTitle(w, "Client Book", fmt.Sprintf("%d client(s)", page.Total))
	rows := make([][]string, 0, len(page.Items))
	for _, c := range page.Items {
		flags := "none"
		if len(c.RiskFlags) > 0 {
			flags = strings.Join(c.RiskFlags, ", ")
		}
		rows = append(rows, []string{
			c.Name,
			display.GroupedAmount(c.NetWorth, "USD"),
			c.RiskProfile,
			c.ComplianceStatus,
			flags,
			formatDay(c.LastActivity),
		})
	}
	fmt.Fprintln(w, newTable(
		[]string{"Name", "Net Worth", "Risk Profile", "Compliance", "Risk Flags", "Last Activity"},
		rows,
		map[int]func(string) lipgloss.Color{2: riskProfileColor, 3: complianceColor},
	).String())
	writePager(w, page.Number, page.TotalPages)
}

// RenderClientDetail prints one client's profile, portfolio and activity.
func RenderClientDetail(w io.Writer, c models.Client) {
	writeTitle(w, c.Name, fmt.Sprintf("%s · %s · client since %s", c.Profile.Industry, c.Profile.Location, formatDay(c.Profile.JoinDate)))
	fmt.Fprintf(w, "Contact: %s · %s\n", c.Profile.Contact.Phone, c.Profile.Contact.Email)

	p := c.Portfolio
	fmt.Fprintln(w, newTable([]string{"Portfolio", "Value"}, [][]string{
		{"Total Value", display.GroupedAmount(p.TotalValue, "USD")},
		{"Stocks", fmt.Sprintf("%.0f%%", p.Allocation.Stocks)},
		{"Bonds", fmt.Sprintf("%.0f%%", p.Allocation.Bonds)},
		{"Alternatives", fmt.Sprintf("%.0f%%", p.Allocation.Alternatives)},
		{"Cash", fmt.Sprintf("%.0f%%", p.Allocation.Cash)},
		{"YTD", fmt.Sprintf("%+.1f%%", p.Performance.YTD)},
		{"1 Year", fmt.Sprintf("%+.1f%%", p.Performance.OneYear)},
	}, nil).String())

	if len(c.RecentTransactions) > 0 {
		rows := make([][]string, 0, len(c.RecentTransactions))
		for _, t := range c.RecentTransactions {
			rows = append(rows, []string{formatDay(t.Date), t.Type, t.Asset, display.GroupedAmount(t.Amount, "USD")})
		}
		fmt.Fprintln(w, newTable([]string{"Date", "Type", "Asset", "Amount"}, rows, nil).String())
	}
	if len(c.RiskFlags) == 0 {
		fmt.Fprintln(w, "Risk flags: none")
	} else {
		fmt.Fprintf(w, "Risk flags (%d): %s\n", len(c.RiskFlags), strings.Join(c.RiskFlags, ", "))
	}
	if len(c.Opportunities) > 0 {
		fmt.Fprintf(w, "Opportunities (%d): %s\n", len(c.Opportunities), strings.Join(c.Opportunities, ", "))
	}
}

// RenderAlerts prints the summary, the critical banner and one page of
// the filtered alerts. summary always covers the unfiltered set.
func RenderAlerts(w io.Writer, summary AlertSummary, page Page[models.ComplianceAlert]) {
	writeTitle(w, "Compliance Alerts",
		fmt.Sprintf("%d open · %d critical · %d under review", summary.Open, summary.Critical, summary.UnderReview))
	if summary.CriticalUnresolved > 0 {
		fmt.Fprintln(w, bannerStyle.Render(fmt.Sprintf(
			"Critical Compliance Alert: you have %d critical compliance alert(s) requiring immediate attention.",
			summary.CriticalUnresolved)))
	}
	if page.Total == 0 {
		fmt.Fprintln(w, "No alerts match the current filters")
		return
	}

	rows := make([][]string, 0, len(page.Items))
	for _, a := range page.Items {
		assigned := a.AssignedTo
		if assigned == "" {
			assigned = "Unassigned"
		}
		rows = append(rows, []string{
			a.ID,
			a.Type,
			a.Severity,
			a.ClientName,
			truncate(a.Description, 50),
			a.Status,
			assigned,
			fmt.Sprint(a.Details.RiskScore),
			a.Timestamp.UTC().Format("2006-01-02 15:04"),
		})
	}
	fmt.Fprintln(w, newTable(
		[]string{"ID", "Type", "Severity", "Client", "Description", "Status", "Assigned", "Risk", "Raised"},
		rows,
		map[int]func(string) lipgloss.Color{2: severityColor, 5: alertStatusColor},
	).String())
	writePager(w, page.Number, page.TotalPages)
}

func RenderAuditLogs(w io.Writer, logs []models.AuditLog) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No audit log entries")
		return
	}
	fmt.Fprintln(w, titleStyle.Render("Audit Trail"))
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		relevant := ""
		if l.ComplianceRelevant {
			relevant = "yes"
		}
		rows = append(rows, []string{
			l.Timestamp.UTC().Format("2006-01-02 15:04"),
			l.UserID,
			l.Action,
			truncate(l.Details, 50),
			l.IPAddress,
			relevant,
		})
	}
	fmt.Fprintln(w, newTable([]string{"Time", "User", "Action", "Details", "IP", "Compliance"}, rows, nil).String())
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format("2006-01-02")
}
