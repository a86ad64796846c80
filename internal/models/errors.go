package models

import "errors"

// Kind is a stable, machine-readable error category. Handlers translate kinds
// into HTTP statuses and user-facing messages; call sites never match on
// error text.
type Kind string

const (
	KindNotAuthenticated        Kind = "not_authenticated"
	KindInvitationNotFound      Kind = "invitation_not_found"
	KindInvitationAlreadyUsed   Kind = "invitation_already_used"
	KindInvitationExpired       Kind = "invitation_expired"
	KindEmailMismatch           Kind = "email_mismatch"
	KindOrganizationCodeTaken   Kind = "organization_code_taken"
	KindOrganizationCodeInvalid Kind = "organization_code_invalid"
	KindDuplicatePendingInvite  Kind = "duplicate_pending_invitation"
	KindAlreadyOrgMember        Kind = "already_org_member"
	KindLastManagementUser      Kind = "last_management_user_protection"
	KindCreatorRoleProtected    Kind = "creator_role_protected"
	KindTrialLimitReached       Kind = "trial_limit_reached"
	KindTimeout                 Kind = "timeout"
)

// DomainError is a typed error carrying a stable kind alongside a
// human-readable message.
type DomainError struct {
	Kind    Kind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewError builds a DomainError of the given kind.
func NewError(kind Kind, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

// KindOf extracts the kind from an error chain, or "" if the error is not a
// DomainError.
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
