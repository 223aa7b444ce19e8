package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	"github.com/smallbiznis/bookkeeper/internal/authorization"
	chartdomain "github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
	costcenterdomain "github.com/smallbiznis/bookkeeper/internal/costcenter/domain"
	dredomain "github.com/smallbiznis/bookkeeper/internal/dre/domain"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	statementdomain "github.com/smallbiznis/bookkeeper/internal/statement/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

const (
	typeValidation    = "validation_error"
	typeNotFound      = "not_found"
	typeForbidden     = "forbidden"
	typeConflict      = "conflict"
	typeUnprocessable = "unprocessable_entity"
	typeInternal      = "internal_error"
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// bindError turns a gin binding failure into field level validation errors.
func bindError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := &ValidationErrors{Errors: make([]ValidationError, 0, len(fieldErrs))}
		for _, fe := range fieldErrs {
			field := jsonField(fe.Namespace())
			out.Errors = append(out.Errors, ValidationError{
				Field:   field,
				Code:    "invalid_" + fe.Tag(),
				Message: fmt.Sprintf("%s failed the %s rule", field, fe.Tag()),
			})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return newValidationError(typeErr.Field, "invalid_type", typeErr.Field+" has the wrong type")
	}
	return invalidRequestError()
}

// jsonField drops the struct name from a validator namespace and snake-cases the rest.
func jsonField(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		namespace = namespace[idx+1:]
	}
	var b strings.Builder
	for i, r := range namespace {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && namespace[i-1] != '.' && namespace[i-1] != '[' {
				prev := rune(namespace[i-1])
				if !(prev >= 'A' && prev <= 'Z') {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, internalPayload()
	}

	if vErr := asValidationErrors(err); vErr != nil {
		code := typeValidation
		if len(vErr.Errors) == 1 {
			code = vErr.Errors[0].Code
		}
		return http.StatusBadRequest, errorPayload{
			Type:    typeValidation,
			Code:    code,
			Message: "The request is invalid.",
			Errors:  vErr.Errors,
		}
	}

	code := err.Error()
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    typeValidation,
			Code:    code,
			Message: messageFor(code),
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: messageFor(code),
				},
			},
		}
	case isForbiddenError(err):
		return http.StatusForbidden, payload(typeForbidden, "forbidden")
	case isNotFoundError(err):
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound) {
			code = "not_found"
		}
		return http.StatusNotFound, payload(typeNotFound, code)
	case isUnprocessableError(err):
		return http.StatusUnprocessableEntity, payload(typeUnprocessable, code)
	case isConflictError(err):
		return http.StatusConflict, payload(typeConflict, code)
	default:
		return http.StatusInternalServerError, internalPayload()
	}
}

func payload(errType, code string) errorPayload {
	return errorPayload{
		Type:    errType,
		Code:    code,
		Message: messageFor(code),
		Errors:  []ValidationError{},
	}
}

func internalPayload() errorPayload {
	return payload(typeInternal, "internal_error")
}

// classifyErrorForLog reports the response type and code of err for the request log.
func classifyErrorForLog(err error) (string, string) {
	_, p := mapError(err)
	return p.Type, p.Code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	return isAnyOf(err,
		ErrInvalidRequest,
		chartdomain.ErrInvalidOrganization,
		chartdomain.ErrInvalidID,
		chartdomain.ErrInvalidCode,
		chartdomain.ErrInvalidDescription,
		chartdomain.ErrInvalidPlanType,
		chartdomain.ErrInvalidRevenueOrExpense,
		chartdomain.ErrInvalidDebitOrCredit,
		chartdomain.ErrInvalidFixedOrVariable,
		chartdomain.ErrInvalidCostOrExpense,
		ledgerdomain.ErrInvalidOrganization,
		ledgerdomain.ErrInvalidID,
		ledgerdomain.ErrInvalidAmount,
		ledgerdomain.ErrInvalidOperation,
		ledgerdomain.ErrInvalidIssueDate,
		ledgerdomain.ErrInvalidAccount,
		ledgerdomain.ErrInvalidSplitAmount,
		ledgerdomain.ErrInvalidSplitChartAccount,
		accountdomain.ErrInvalidOrganization,
		accountdomain.ErrInvalidID,
		accountdomain.ErrInvalidCode,
		accountdomain.ErrInvalidDescription,
		accountdomain.ErrInvalidAccountType,
		costcenterdomain.ErrInvalidOrganization,
		costcenterdomain.ErrInvalidID,
		costcenterdomain.ErrInvalidCode,
		costcenterdomain.ErrInvalidDescription,
		statementdomain.ErrInvalidOrganization,
		statementdomain.ErrInvalidAccount,
		statementdomain.ErrInvalidDateRange,
		dredomain.ErrInvalidOrganization,
		dredomain.ErrInvalidDateFrom,
		dredomain.ErrInvalidDateTo,
		dredomain.ErrInvalidDateRange,
		auditdomain.ErrInvalidOrganization,
		auditdomain.ErrInvalidPageToken,
		auditdomain.ErrInvalidTimeRange,
	)
}

func isForbiddenError(err error) bool {
	return isAnyOf(err,
		ErrForbidden,
		chartdomain.ErrForbidden,
		authorization.ErrForbidden,
		authorization.ErrInvalidRole,
	)
}

func isNotFoundError(err error) bool {
	return isAnyOf(err,
		ErrNotFound,
		chartdomain.ErrNotFound,
		ledgerdomain.ErrNotFound,
		ledgerdomain.ErrAccountNotFound,
		ledgerdomain.ErrChartAccountNotFound,
		ledgerdomain.ErrCostCenterNotFound,
		accountdomain.ErrNotFound,
		costcenterdomain.ErrNotFound,
		gorm.ErrRecordNotFound,
	)
}

func isUnprocessableError(err error) bool {
	return isAnyOf(err,
		chartdomain.ErrAnaliticaRequiresParent,
		chartdomain.ErrParentNotFound,
		chartdomain.ErrParentScopeMismatch,
		chartdomain.ErrInvalidParent,
		ledgerdomain.ErrSplitsTotalMustMatchAmount,
		ledgerdomain.ErrCannotConfirmSplitsMismatch,
	)
}

func isConflictError(err error) bool {
	return isAnyOf(err,
		chartdomain.ErrCodeExists,
		chartdomain.ErrCannotChangeScopeWithChildren,
		chartdomain.ErrCannotChangeScopeAndParent,
		chartdomain.ErrCannotDeleteWithChildren,
		chartdomain.ErrCannotDeleteInUse,
		accountdomain.ErrCodeExists,
		accountdomain.ErrCannotDeleteInUse,
		costcenterdomain.ErrCodeExists,
		costcenterdomain.ErrCannotDeleteInUse,
	)
}

func isAnyOf(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

var messages = map[string]string{
	"forbidden":                         "You are not allowed to perform this action.",
	"not_found":                         "The resource was not found.",
	"internal_error":                    "Internal server error.",
	"analitica_requires_parent":         "An analytic account needs a parent account.",
	"parent_not_found":                  "The parent account was not found.",
	"parent_scope_mismatch":             "The parent account belongs to a different scope.",
	"invalid_parent":                    "The parent account would create a cycle.",
	"splits_total_must_match_amount":    "The splits must add up to the entry amount.",
	"cannot_confirm_splits_mismatch":    "The entry cannot be confirmed while its splits do not add up to the amount.",
	"chart_account_code_exists":         "A chart account with this code already exists.",
	"cannot_change_scope_with_children": "The scope of an account with children cannot change.",
	"cannot_change_scope_and_parent":    "Scope and parent cannot change in the same request.",
	"cannot_delete_with_children":       "An account with children cannot be deleted.",
	"cannot_delete_in_use":              "The resource is referenced by ledger entries.",
	"invalid_organization":              "The organization id is invalid.",
	"invalid_date_range":                "The start date must not be after the end date.",
}

// messageFor returns a sentence for a snake_case code.
func messageFor(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	words := strings.ReplaceAll(code, "_", " ")
	if words == "" {
		return "Internal server error."
	}
	return strings.ToUpper(words[:1]) + words[1:] + "."
}
