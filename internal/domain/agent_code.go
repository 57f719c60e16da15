package domain

import "time"

// AgentCode is a single-use invitation token that elevates a registration
// to the AGENT role. Codes look like "AGENT-0001-X7K2QZ".
type AgentCode struct {
	ID        string
	Code      string
	Used      bool
	UsedBy    *string
	CreatedAt time.Time
}
