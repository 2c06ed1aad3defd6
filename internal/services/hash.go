package services

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/dpup/territory-planner/server/internal/lib/territory"
)

// RequestHasher derives cache keys for assignment requests
type RequestHasher struct{}

// NewRequestHasher creates a new request hasher
func NewRequestHasher() *RequestHasher {
	return &RequestHasher{}
}

// Hash returns the SHA-256 of the canonical JSON encoding of the inputs that
// determine an assignment. Unit and rep order are significant: they drive seed
// selection and tie-breaks.
func (h *RequestHasher) Hash(units []territory.Unit, repIDs []territory.ID, opts territory.Options) (string, error) {
	signature, err := json.Marshal(struct {
		Units   []territory.Unit  `json:"units"`
		RepIDs  []territory.ID    `json:"rep_ids"`
		Options territory.Options `json:"options"`
	}{units, repIDs, opts})
	if err != nil {
		return "", fmt.Errorf("failed to encode request for hashing: %w", err)
	}

	hash := sha256.Sum256(signature)
	return fmt.Sprintf("%x", hash), nil
}
