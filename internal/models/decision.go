package models

type DecisionAction string

const (
	ActionSave  DecisionAction = "save"
	ActionRerun DecisionAction = "rerun"
)

type ChatRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}

type DecisionRequest struct {
	SessionID       string         `json:"session_id"`
	Action          DecisionAction `json:"action"`
	TargetInsightID string         `json:"target_insight_id"`
	EditInstruction string         `json:"edit_instruction"`
}

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

type WelcomeResponse struct {
	SessionID string `json:"session_id"`
}

type MarkReadRequest struct {
	ClientID string   `json:"client_id"`
	IDs      []string `json:"ids"`
}
