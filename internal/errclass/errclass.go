// Package errclass maps failures from every layer onto the fixed response
// taxonomy. Classify is the single place that decides what a caller sees.
package errclass

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"clinic-platform/internal/apperr"
	"clinic-platform/internal/auth"
	"clinic-platform/internal/store"
	"clinic-platform/internal/validation"

	"github.com/go-playground/validator/v10"
)

type Category string

const (
	Validation   Category = "Validation"
	Conflict     Category = "Conflict"
	NotFound     Category = "NotFound"
	Unauthorized Category = "Unauthorized"
	Forbidden    Category = "Forbidden"
	BadRequest   Category = "BadRequest"
	Internal     Category = "Internal"
)

const (
	MsgInternal         = "Something went wrong"
	MsgValidationFailed = "Validation failed"
	MsgNotFound         = "Resource not found"
	MsgInvalidReference = "Invalid reference to a related record"
	MsgRequiredRelation = "Required related record is missing"
)

// Classified is the caller-facing view of a failure. Fields is set only for
// input-schema validation failures.
type Classified struct {
	Category Category
	Status   int
	Message  string
	Detail   string
	Fields   []validation.FieldError
}

// Classify applies the rules in priority order; the first match wins.
func Classify(err error) Classified {
	if err == nil {
		return Classified{Category: Internal, Status: http.StatusInternalServerError, Message: MsgInternal}
	}

	if ce, ok := store.Inspect(err); ok {
		return fromStore(ce)
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		return Classified{Category: Validation, Status: http.StatusUnprocessableEntity, Message: MsgValidationFailed, Fields: verr.Fields}
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return Classified{Category: Validation, Status: http.StatusUnprocessableEntity, Message: MsgValidationFailed, Fields: validation.FromValidator(verrs).Fields}
	}

	if ae, ok := apperr.As(err); ok {
		return Classified{Category: categoryFor(ae.Status), Status: ae.Status, Message: ae.Message}
	}

	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return Classified{Category: Unauthorized, Status: http.StatusUnauthorized, Message: auth.MsgTokenExpired}
	case errors.Is(err, auth.ErrTokenInvalid):
		return Classified{Category: Unauthorized, Status: http.StatusUnauthorized, Message: auth.MsgTokenInvalid}
	}

	return Classified{Category: Internal, Status: http.StatusInternalServerError, Message: MsgInternal}
}

func fromStore(ce *store.ConstraintError) Classified {
	switch ce.Kind {
	case store.KindUnique:
		return Classified{Category: Conflict, Status: http.StatusConflict, Message: conflictMessage(ce.Field), Detail: ce.Field}
	case store.KindNotFound:
		return Classified{Category: NotFound, Status: http.StatusNotFound, Message: MsgNotFound}
	case store.KindForeignKey:
		return Classified{Category: BadRequest, Status: http.StatusBadRequest, Message: MsgInvalidReference, Detail: ce.Field}
	case store.KindRequiredRelation:
		return Classified{Category: BadRequest, Status: http.StatusBadRequest, Message: MsgRequiredRelation, Detail: ce.Field}
	case store.KindValidation:
		msg := ce.Message
		if msg == "" {
			msg = MsgValidationFailed
		}
		return Classified{Category: Validation, Status: http.StatusUnprocessableEntity, Message: msg}
	default:
		return Classified{Category: Internal, Status: http.StatusInternalServerError, Message: MsgInternal}
	}
}

func conflictMessage(field string) string {
	if field == "" {
		return "Resource already exists"
	}
	r := []rune(strings.ReplaceAll(field, "_", " "))
	r[0] = unicode.ToUpper(r[0])
	return string(r) + " already exists"
}

func categoryFor(status int) Category {
	switch {
	case status == http.StatusUnauthorized:
		return Unauthorized
	case status == http.StatusForbidden:
		return Forbidden
	case status == http.StatusNotFound:
		return NotFound
	case status == http.StatusConflict:
		return Conflict
	case status == http.StatusUnprocessableEntity:
		return Validation
	case status >= 500:
		return Internal
	default:
		return BadRequest
	}
}
