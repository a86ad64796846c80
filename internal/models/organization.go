package models

import (
	"regexp"
	"strings"
	"time"
)

// Organization is the tenant: the billing and access-control unit. The code is
// a lowercase slug, immutable once created.
type Organization struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	TrialStartAt time.Time `json:"trial_start_at"`
	TrialEndAt   time.Time `json:"trial_end_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var orgCodePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

const minOrgCodeLength = 3

// NormalizeOrgCode lowercases and trims a raw organization code and validates
// it against the slug rules. Returns a typed error on violation.
func NormalizeOrgCode(raw string) (string, error) {
	code := strings.ToLower(strings.TrimSpace(raw))
	if len(code) < minOrgCodeLength {
		return "", NewError(KindOrganizationCodeInvalid, "organization code must be at least 3 characters")
	}
	if !orgCodePattern.MatchString(code) {
		return "", NewError(KindOrganizationCodeInvalid, "organization code may only contain lowercase letters, digits and dashes")
	}
	return code, nil
}
