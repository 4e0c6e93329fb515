package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Client, ComplianceAlert and AuditLog back the clients and alerts
// dashboards. The backend has no endpoints for them; data comes from
// bundled samples or a user-supplied file.
type Client struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	NetWorth           decimal.Decimal `json:"netWorth"`
	RiskProfile        string          `json:"riskProfile"`
	ComplianceStatus   string          `json:"complianceStatus"`
	LastActivity       time.Time       `json:"lastActivity"`
	Portfolio          Portfolio       `json:"portfolio"`
	Profile            ClientProfile   `json:"profile"`
	RecentTransactions []Transaction   `json:"recentTransactions"`
	RiskFlags          []string        `json:"riskFlags"`
	Opportunities      []string        `json:"opportunities"`
}

type Portfolio struct {
	TotalValue  decimal.Decimal `json:"totalValue"`
	Allocation  Allocation      `json:"allocation"`
	Performance Performance     `json:"performance"`
}

type Allocation struct {
	Stocks       float64 `json:"stocks"`
	Bonds        float64 `json:"bonds"`
	Alternatives float64 `json:"alternatives"`
	Cash         float64 `json:"cash"`
}

type Performance struct {
	YTD     float64 `json:"ytd"`
	OneYear float64 `json:"oneYear"`
}

type ClientProfile struct {
	Industry string    `json:"industry"`
	Location string    `json:"location"`
	JoinDate time.Time `json:"joinDate"`
	Contact  Contact   `json:"contact"`
}

type Contact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type Transaction struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

const (
	AlertStatusOpen        = "Open"
	AlertStatusUnderReview = "Under Review"
	AlertStatusResolved    = "Resolved"
	AlertStatusEscalated   = "Escalated"

	SeverityCritical = "Critical"
)

type ComplianceAlert struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Severity    string       `json:"severity"`
	ClientName  string       `json:"clientName"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
	Status      string       `json:"status"`
	AssignedTo  string       `json:"assignedTo,omitempty"`
	Details     AlertDetails `json:"details"`
}

func (a ComplianceAlert) Resolved() bool {
	return strings.EqualFold(a.Status, AlertStatusResolved)
}

type AlertDetails struct {
	RiskScore           int      `json:"riskScore"`
	Triggers            []string `json:"triggers"`
	RelatedTransactions int      `json:"relatedTransactions"`
	Jurisdiction        string   `json:"jurisdiction"`
}

type AuditLog struct {
	ID                 string    `json:"id"`
	Timestamp          time.Time `json:"timestamp"`
	UserID             string    `json:"userId"`
	Action             string    `json:"action"`
	ClientID           string    `json:"clientId,omitempty"`
	Details            string    `json:"details"`
	IPAddress          string    `json:"ipAddress"`
	ComplianceRelevant bool      `json:"complianceRelevant"`
}

type ComplianceData struct {
	Alerts    []ComplianceAlert `json:"alerts"`
	AuditLogs []AuditLog        `json:"auditLogs"`
}
