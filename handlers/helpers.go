package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mob-esports/esports-api/middleware"
	"github.com/mob-esports/esports-api/models"
	"github.com/mob-esports/esports-api/repositories"
	"github.com/mob-esports/esports-api/services"
)

// envelope is the uniform response body: {status, data?, error?, message?}.
type envelope struct {
	Status  bool        `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	js, err := json.Marshal(body)
	if err != nil {
		slog.Error("failed to marshal response body", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

func okResponse(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Status: true, Data: data})
}

func createdResponse(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusCreated, envelope{Status: true, Data: data})
}

func messageResponse(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, envelope{Status: true, Message: message})
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Status: false, Error: message})
}

func badRequestResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusNotFound, err.Error())
}

func forbiddenResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusForbidden, err.Error())
}

func unauthorizedResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusUnauthorized, err.Error())
}

func serverErrorResponse(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)
	errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

// mapServiceError translates service-layer sentinel errors into the HTTP
// taxonomy. Conflicts surface as 400 like every other domain rule violation.
func mapServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrInviteNotFound),
		errors.Is(err, services.ErrFriendNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		notFoundResponse(w, err)

	case errors.Is(err, services.ErrInvalidCredentials):
		unauthorizedResponse(w, err)

	case errors.Is(err, services.ErrAccountBanned),
		errors.Is(err, services.ErrForbiddenOperation),
		errors.Is(err, services.ErrEmailNotVerified),
		errors.Is(err, services.ErrOrganizerNotApproved),
		errors.Is(err, services.ErrNotTeamOwner),
		errors.Is(err, services.ErrOwnerCannotLeave),
		errors.Is(err, services.ErrProfilePrivate):
		forbiddenResponse(w, err)

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrTournamentNameRequired),
		errors.Is(err, services.ErrTournamentInvalidDates),
		errors.Is(err, services.ErrTournamentInvalidSize),
		errors.Is(err, services.ErrTournamentInvalidType),
		errors.Is(err, services.ErrPostTitleRequired),
		errors.Is(err, services.ErrPostContentRequired),
		errors.Is(err, services.ErrSelfFriendRequest),
		errors.Is(err, services.ErrInvalidFriendAction),
		errors.Is(err, services.ErrRosterPlayerNotInTeam),
		errors.Is(err, services.ErrEmptyUpdate),
		errors.Is(err, services.ErrInsufficientParticipants),
		errors.Is(err, services.ErrWinnerNotInMatch),
		errors.Is(err, services.ErrUnsupportedFileType),
		errors.Is(err, services.ErrUserEmailConflict),
		errors.Is(err, services.ErrUserUsernameConflict),
		errors.Is(err, services.ErrUserAlreadyInTeam),
		errors.Is(err, services.ErrTeamNameConflict),
		errors.Is(err, services.ErrTournamentNameConflict),
		errors.Is(err, services.ErrRegistrationConflict),
		errors.Is(err, services.ErrTournamentFull),
		errors.Is(err, services.ErrBracketAlreadyExists),
		errors.Is(err, services.ErrInviteConflict),
		errors.Is(err, services.ErrFriendRequestConflict),
		errors.Is(err, services.ErrMatchAlreadyCompleted),
		errors.Is(err, services.ErrRegistrationClosed),
		errors.Is(err, services.ErrNotRegistered):
		badRequestResponse(w, err)

	case errors.Is(err, repositories.ErrRegistrationNotFound):
		notFoundResponse(w, err)

	default:
		serverErrorResponse(w, err)
	}
}

func urlParamInt(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// principal returns the authenticated caller, or the anonymous zero value on
// public routes.
func principal(r *http.Request) models.Principal {
	p, _ := middleware.PrincipalFromContext(r.Context())
	return p
}
