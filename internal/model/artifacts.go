package model

import "time"

// Artifacts are the outputs of one successful conversion, kept per session
// so the download endpoints can serve them.
type Artifacts struct {
	Text      string    `json:"text"`
	Strategy  string    `json:"strategy"`
	Image     []byte    `json:"image"`
	Deck      []byte    `json:"deck"`
	Document  []byte    `json:"document"`
	CreatedAt time.Time `json:"created_at"`
}
