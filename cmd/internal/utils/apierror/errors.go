package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse abstracts all API error responses to the user.
//
// This interface does not implement `error`, since its only purpose
// is to be used for API responses and not for logging circumstances.
//
// In general, the whole ErrorResponse can be sent for serialization.
type ErrorResponse interface {
	// Code is the HTTP status code to be returned.
	Code() int
}

type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (a *APIError) Code() int {
	return a.Status
}

type StructuredError struct {
	Errors map[string][]string `json:"errors"`
	Status int                 `json:"-"`
}

func (s *StructuredError) Code() int {
	return s.Status
}

func (s *StructuredError) Add(field, problem string) {
	s.Errors[field] = append(s.Errors[field], problem)
}

// DispatchError is returned when every recipient of a multi-recipient
// notification failed.
type DispatchError struct {
	Message string   `json:"message"`
	Failed  []string `json:"failed"`
	Status  int      `json:"-"`
}

func (d *DispatchError) Code() int {
	return d.Status
}

var (
	MalformedBodyError    = NewSimple(400, "Malformed request body")
	InternalServerError   = NewSimple(500, "Internal server error")
	InvalidMediaTypeError = NewSimple(415, "Unsupported media type")

	NotFoundError          = NewSimple(404, "Resource not found")
	UnauthorizedError      = NewSimple(401, "Unauthorized")
	InvalidAuthTokenError  = NewSimple(401, "Invalid or expired authorization token")
	InvalidProvisionKey    = NewSimple(401, "Invalid provisioning key")
	MissingAccessError     = NewSimple(403, "Missing access")
	UserMissingPermsError  = NewSimple(403, "You do not have permission to perform this action")
	CompanyAccessError     = NewSimple(403, "You do not have access to this company")
	InvalidCNPJError       = NewSimple(400, "The provided CNPJ is invalid")
	UserAlreadyExistsError = NewSimple(400, "User already exists")

	/*
	 * Directory
	 */
	CompanyRequiredError       = NewSimple(400, "Company is required")
	CompanyNotFoundError       = NewSimple(400, "Company does not exist")
	ClientNotFoundError        = NewSimple(400, "Client does not exist")
	ResponsibleNotFoundError   = NewSimple(400, "Responsible does not exist")
	RequesterNotFoundError     = NewSimple(400, "Requester does not exist")
	ResponsibleCompanyMismatch = NewSimple(400, "Responsible does not belong to the action company")
	ClientCompanyMismatch      = NewSimple(400, "Client does not belong to the action company")
	SystemResponsibleError     = NewSimple(409, "Responsible is linked to a system user and cannot be deleted")
	CompanyInUseError          = NewSimple(409, "Company still has clients, responsibles or actions")
	ClientInUseError           = NewSimple(409, "Client is still referenced by actions")
	ResponsibleInUseError      = NewSimple(409, "Responsible is still referenced by actions")

	/*
	 * Action lifecycle
	 */
	JustificationRequiredError = NewSimple(400, "A justification is required to complete the action")
	RequesterRequiredError     = NewSimple(400, "The action has no requester to approve its completion")
	RejectReasonRequiredError  = NewSimple(400, "A reason is required to reject the completion")
	NotAwaitingApprovalError   = NewSimple(400, "The action is not awaiting approval")
	AwaitingApprovalError      = NewSimple(400, "The action is already awaiting approval")
	RequesterLockedError       = NewSimple(400, "The requester cannot change while the action awaits approval")
	NotRequesterError          = NewSimple(403, "Only the requester can approve or reject this action")
	ActionCompletedError       = NewSimple(400, "The action is already completed")
	ApprovalRequiredError      = NewSimple(400, "Actions with a requester must be completed through the approval flow")
	InvalidStatusTargetError   = NewSimple(400, "This status cannot be set manually")
	NoteNotFoundError          = NewSimple(404, "Note not found")
	AttachmentNotFoundError    = NewSimple(404, "Attachment not found")
	NoRecipientsError          = NewSimple(400, "At least one recipient must be selected")

	/*
	 * Attachments
	 */
	MissingAttachmentError = NewSimple(400, "Missing 'file' form field")
	MissingFileNameError   = NewSimple(400, "File name cannot be empty")
	StorageDisabledError   = NewSimple(503, "File storage is not configured")
	IdentityDisabledError  = NewSimple(503, "Identity provider is not configured")

	/*
	 * Provisioning
	 */
	AdminNotConfiguredError = NewSimple(500, "Administrator credentials are not configured")
	ProfileNotFoundError    = NewSimple(400, "No active profile uses this email")

	/*
	 * Used for authentications
	 */
	UserAlreadyConfirmedError   = NewSimple(400, "User is already confirmed")
	IDPInvalidPasswordError     = NewSimple(400, "Provided password does not meet requirements")
	IDPExistingEmailError       = NewSimple(400, "Email already exists")
	IDPUserNotFoundError        = NewSimple(404, "User not found")
	IDPUserNotConfirmedError    = NewSimple(400, "User is not confirmed yet")
	IDPCredentialsMismatchError = NewSimple(400, "Credentials mismatch")
	IDPConfirmCodeMismatchError = NewSimple(400, "Confirmation code mismatch")
	IDPConfirmCodeExpiredError  = NewSimple(400, "Confirmation code has expired")
	IDPInvalidParameterError    = NewSimple(400, "Invalid parameters provided, the user is likely already verified")
)

func FromValidationError(err error) *StructuredError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &StructuredError{
			Errors: map[string][]string{"body": {"Invalid value provided"}},
			Status: http.StatusBadRequest,
		}
	}

	problems := map[string][]string{}
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())

		switch fe.Tag() {
		case "required":
			problems[field] = append(problems[field], "This field is required")
		case "min":
			problems[field] = append(problems[field], "Value is too short, min: "+fe.Param())
		case "max":
			problems[field] = append(problems[field], "Value is too long, max: "+fe.Param())
		case "oneof":
			problems[field] = append(problems[field], "Value must be one of: "+fe.Param())
		case "hasupper":
			problems[field] = append(problems[field], "Value must have at least one uppercase character")
		case "haslower":
			problems[field] = append(problems[field], "Value must have at least one lowercase character")
		case "hasdigit":
			problems[field] = append(problems[field], "Value must have at least one number")
		case "hasspecial":
			problems[field] = append(problems[field], "Value must have at least one special character")
		case "email":
			problems[field] = append(problems[field], "Value must be a valid email address")
		case "cnpj":
			problems[field] = append(problems[field], "Value must be a valid CNPJ")
		case "cpf":
			problems[field] = append(problems[field], "Value must be a valid CPF")
		case "gtefield":
			problems[field] = append(problems[field], "Value must not be before "+strings.ToLower(fe.Param()))

		default:
			problems[field] = append(problems[field], "Invalid value provided")
		}
	}

	return &StructuredError{
		Errors: problems,
		Status: http.StatusBadRequest,
	}
}

func NewSimple(status int, msg string, args ...any) *APIError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &APIError{Status: status, Message: msg}
}

func NewStructured(code int) *StructuredError {
	return &StructuredError{
		Errors: make(map[string][]string),
		Status: code,
	}
}

func NewValidationError(msg string, args ...any) *APIError {
	return NewSimple(http.StatusBadRequest, msg, args...)
}

func NewForbiddenError(msg string) *APIError {
	return NewSimple(http.StatusForbidden, msg)
}

func NewPermissionError(perm int64) *APIError {
	return NewSimple(http.StatusForbidden, "Missing required permission: %d", perm)
}

func NewDispatchError(failed []string) *DispatchError {
	return &DispatchError{
		Message: "Notification could not be delivered to any recipient",
		Failed:  failed,
		Status:  http.StatusBadGateway,
	}
}

func NewMissingParamError(name string) *APIError {
	return NewSimple(http.StatusBadRequest, "Missing required parameter '%s'", name)
}

func NewInvalidParamTypeError(name, dataType string) *APIError {
	return NewSimple(http.StatusBadRequest, "Parameter '%s' has invalid type, expected: %s", name, dataType)
}

func NewAttachmentTooLargeError(maxBytes int64) *APIError {
	return NewSimple(http.StatusRequestEntityTooLarge, "Attachment exceeds the maximum size of %d bytes", maxBytes)
}

func NewInvalidFileExtError(ext string) *APIError {
	return NewSimple(http.StatusBadRequest, "File extension '%s' is not allowed", ext)
}
