package desk

import (
	"errors"

	"github.com/mrlokans/librarydesk/internal/apperr"
)

// Describe renders an operation error for a person at the desk. Domain
// failures show their own message; store and file failures get a fixed
// sentence so driver details stay in the logs.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var e *apperr.Error
	if !errors.As(err, &e) {
		return "Something went wrong: " + err.Error()
	}

	switch e.Kind {
	case apperr.KindValidation:
		return "Please check the form: " + message(e)
	case apperr.KindNotFound:
		return "Not found: " + message(e)
	case apperr.KindDuplicate:
		return "Already exists: " + message(e)
	case apperr.KindNotAvailable:
		return "Not available: " + message(e)
	case apperr.KindOverReturn:
		return "Nothing to return: " + message(e)
	case apperr.KindTimeout:
		return "The library database did not answer in time. Please try again."
	case apperr.KindIO:
		return "The sign-in log could not be accessed. Please tell a librarian."
	case apperr.KindPersistence:
		return "The library database is unavailable. Please try again later."
	default:
		return "Something went wrong: " + message(e)
	}
}

func message(e *apperr.Error) string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}
