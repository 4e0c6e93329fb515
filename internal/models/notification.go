package models

import (
	"strings"
	"time"
)

type Notification struct {
	ID        string `json:"id"`
	Person    string `json:"person"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Time reads the timestamp as UTC; the backend omits the zone suffix.
func (n Notification) Time() time.Time {
	s := strings.TrimSpace(n.Timestamp)
	if s == "" {
		return time.Time{}
	}
	ts, ok := ParseTimestamp(s)
	if !ok {
		ts, _ = ParseTimestamp(s + "Z")
	}
	return ts
}

type NotificationList struct {
	Count         int            `json:"count"`
	Notifications []Notification `json:"notifications"`
}
