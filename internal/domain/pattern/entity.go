// Package pattern holds the persisted results of the service: encoded SMARTS
// patterns and batch encode jobs.
package pattern

import (
	"encoding/hex"
	"time"

	"github.com/turtacn/molsmarts/pkg/errors"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

// Pattern is one stored SMARTS encoding of a molfile.
type Pattern struct {
	ID     common.ID `json:"id"`
	Name   string    `json:"name,omitempty"`
	SMARTS string    `json:"smarts"`
	// MolfileHash is the hex SHA-256 of the normalized molfile text.
	MolfileHash string `json:"molfile_hash"`
	// OptionsKey identifies the encoder options the pattern was written with.
	OptionsKey   string    `json:"options_key"`
	AtomCount    int       `json:"atom_count"`
	BondCount    int       `json:"bond_count"`
	Components   int       `json:"components"`
	RingClosures int       `json:"ring_closures"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewPattern returns a validated pattern with a fresh id.
func NewPattern(name, smarts, molfileHash, optionsKey string) (*Pattern, error) {
	p := &Pattern{
		ID:          common.NewID(),
		Name:        name,
		SMARTS:      smarts,
		MolfileHash: molfileHash,
		OptionsKey:  optionsKey,
		CreatedAt:   time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the id, the hash and the options key.
func (p *Pattern) Validate() error {
	if err := p.ID.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "invalid pattern id")
	}
	if !IsHash(p.MolfileHash) {
		return errors.Newf(errors.ErrCodeValidation, "molfile hash must be 64 hex characters, got %q", p.MolfileHash)
	}
	if p.OptionsKey == "" {
		return errors.New(errors.ErrCodeValidation, "options key is required")
	}
	if p.AtomCount < 0 || p.BondCount < 0 || p.Components < 0 || p.RingClosures < 0 {
		return errors.New(errors.ErrCodeValidation, "counts must not be negative")
	}
	return nil
}

// IsHash reports whether s is a hex SHA-256 digest.
func IsHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

//Personal.AI order the ending
