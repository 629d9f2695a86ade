package handlers

// Machine-readable error codes carried in the response envelope.
// Clients branch on these, never on the message text.
const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeValidation         = "VALIDATION"
	CodeNotFound           = "NOT_FOUND"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeLastOwner          = "LAST_OWNER"
	CodeAlreadyMember      = "ALREADY_MEMBER"
	CodeInvitationExists   = "INVITATION_EXISTS"
	CodeInvitationInvalid  = "INVITATION_INVALID"
	CodeInvitationExpired  = "INVITATION_EXPIRED"
	CodeTargetTypeMismatch = "TARGET_TYPE_MISMATCH"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL"
)
