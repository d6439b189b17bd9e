package dto

import (
	"time"
)

type PersonaResponse struct {
	Id          string  `json:"id"`
	Name        string  `json:"name"`
	Temperature float64 `json:"temperature"`
	InEnsemble  bool    `json:"in_ensemble"`
}

type ModeDTO struct {
	Mode      string `json:"mode"`
	PersonaId string `json:"persona_id,omitempty"`
}

type ChatEntryDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionResponse struct {
	Id        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Mode      ModeDTO        `json:"mode"`
	History   []ChatEntryDTO `json:"history"`
}

type SetModeRequest struct {
	Mode      string `json:"mode" validate:"required,oneof=ensemble exclusive"`
	PersonaId string `json:"persona_id" validate:"required_if=Mode exclusive"`
}

// SendTurnRequest is the JSON form of a turn. Multipart turns carry the same
// prompt field plus "files".
type SendTurnRequest struct {
	Prompt string `json:"prompt" form:"prompt" validate:"required"`
}

type PersonaSegmentDTO struct {
	PersonaId string `json:"persona_id"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	Failed    bool   `json:"failed"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

type FileErrorDTO struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type SendTurnResponse struct {
	SessionId  string              `json:"session_id"`
	Sent       ChatEntryDTO        `json:"sent"`
	Reply      ChatEntryDTO        `json:"reply"`
	Segments   []PersonaSegmentDTO `json:"segments"`
	FileErrors []FileErrorDTO      `json:"file_errors,omitempty"`
	SearchUsed bool                `json:"search_used"`
}

type BlueprintFile struct {
	Filename string
	Content  []byte
}
