package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rolesapi/internal/domain/storage"
	"rolesapi/internal/domain/users"
	"rolesapi/internal/params"
)

// RoleID is a pointer so a missing role_id is told apart from an id that
// does not exist, which the role check reports by number.
type userPayload struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	PhoneNumber string `json:"phone_number" validate:"required,max=50"`
	RoleID      *int64 `json:"role_id" validate:"required"`

	// Read-only fields of a fetched user; accepted and ignored.
	ID   json.RawMessage `json:"id,omitempty" swaggerignore:"true"`
	Role json.RawMessage `json:"role,omitempty" swaggerignore:"true"`
}

// checkUserWrite enforces, in order, that the referenced role exists and that
// no other user has the email. The unique index and foreign key still arbitrate
// races between this check and the write.
func checkUserWrite(ctx context.Context, tx *storage.Tx, user *users.User) error {
	exists, err := tx.Roles.Exists(ctx, user.RoleID)
	if err != nil {
		return err
	}
	if !exists {
		return users.ErrUnknownRole
	}

	taken, err := tx.Users.EmailTaken(ctx, user.Email, user.ID)
	if err != nil {
		return err
	}
	if taken {
		return users.ErrDuplicateEmail
	}
	return nil
}

func (app *application) userWriteError(w http.ResponseWriter, r *http.Request, user *users.User, err error) {
	switch {
	case errors.Is(err, users.ErrNotFound):
		app.notFoundResponse(w, r, fmt.Errorf("User with ID %d not found", user.ID))
	case errors.Is(err, users.ErrUnknownRole):
		app.badRequestResponse(w, r, fmt.Errorf("Role with ID %d does not exist", user.RoleID))
	case errors.Is(err, users.ErrDuplicateEmail):
		app.badRequestResponse(w, r, fmt.Errorf("User with email '%s' already exists", user.Email))
	default:
		app.internalServerError(w, r, err)
	}
}

func (app *application) readUserPayload(w http.ResponseWriter, r *http.Request) (*userPayload, bool) {
	var payload userPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return nil, false
	}
	if err := validatePayload(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return nil, false
	}
	return &payload, true
}

// ListUsers godoc
//
//	@Summary		List users
//	@Description	Returns every user with its role resolved.
//	@Tags			users
//	@Produce		json
//	@Success		200	{array}		users.User
//	@Failure		500	{object}	error	"Internal Server Error"
//	@Router			/users [get]
func (app *application) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	list, err := app.store.Users().List(ctx)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// GetUser godoc
//
//	@Summary		Get a user
//	@Tags			users
//	@Produce		json
//	@Param			userID	path		int	true	"User ID"
//	@Success		200		{object}	users.User
//	@Failure		400		{object}	error	"Invalid user ID"
//	@Failure		404		{object}	error	"User not found"
//	@Router			/users/{userID} [get]
func (app *application) getUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := params.PathID(r, "userID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			app.notFoundResponse(w, r, fmt.Errorf("User with ID %d not found", id))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

// CreateUser godoc
//
//	@Summary		Create a user
//	@Description	Creates a user. The role must exist and the email must be unused.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		userPayload	true	"User"
//	@Success		201		{object}	users.User
//	@Failure		400		{object}	error	"Unknown role, duplicate email or invalid payload"
//	@Failure		500		{object}	error	"Internal Server Error"
//	@Router			/users [post]
func (app *application) createUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	payload, ok := app.readUserPayload(w, r)
	if !ok {
		return
	}

	user := &users.User{
		Email:       payload.Email,
		PhoneNumber: payload.PhoneNumber,
		RoleID:      *payload.RoleID,
	}

	var created *users.User
	err := app.store.WithTx(ctx, func(tx *storage.Tx) error {
		if err := checkUserWrite(ctx, tx, user); err != nil {
			return err
		}
		if err := tx.Users.Create(ctx, user); err != nil {
			return err
		}

		var err error
		created, err = tx.Users.GetByID(ctx, user.ID)
		return err
	})
	if err != nil {
		app.userWriteError(w, r, user, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/users/%d", created.ID))
	if err := app.jsonResponse(w, http.StatusCreated, created); err != nil {
		app.internalServerError(w, r, err)
	}
}

// UpdateUser godoc
//
//	@Summary		Replace a user
//	@Description	Overwrites email, phone number and role of a user.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			userID	path		int			true	"User ID"
//	@Param			body	body		userPayload	true	"User"
//	@Success		200		{object}	users.User
//	@Failure		400		{object}	error	"Unknown role, duplicate email or invalid payload"
//	@Failure		404		{object}	error	"User not found"
//	@Router			/users/{userID} [put]
func (app *application) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := params.PathID(r, "userID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payload, ok := app.readUserPayload(w, r)
	if !ok {
		return
	}

	user := &users.User{
		ID:          id,
		Email:       payload.Email,
		PhoneNumber: payload.PhoneNumber,
		RoleID:      *payload.RoleID,
	}

	var updated *users.User
	err = app.store.WithTx(ctx, func(tx *storage.Tx) error {
		if _, err := tx.Users.GetByID(ctx, id); err != nil {
			return err
		}
		if err := checkUserWrite(ctx, tx, user); err != nil {
			return err
		}
		if err := tx.Users.Update(ctx, user); err != nil {
			return err
		}

		var err error
		updated, err = tx.Users.GetByID(ctx, id)
		return err
	})
	if err != nil {
		app.userWriteError(w, r, user, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, updated); err != nil {
		app.internalServerError(w, r, err)
	}
}

// DeleteUser godoc
//
//	@Summary		Delete a user
//	@Tags			users
//	@Produce		json
//	@Param			userID	path		int	true	"User ID"
//	@Success		200		{object}	messageResponse
//	@Failure		400		{object}	error	"Invalid user ID"
//	@Failure		404		{object}	error	"User not found"
//	@Router			/users/{userID} [delete]
func (app *application) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := params.PathID(r, "userID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users().GetByID(ctx, id)
	if err == nil {
		err = app.store.Users().Delete(ctx, id)
	}

	switch {
	case err == nil:
		if err := app.jsonResponse(w, http.StatusOK, messageResponse{
			Message: fmt.Sprintf("User with email '%s' deleted successfully", user.Email),
		}); err != nil {
			app.internalServerError(w, r, err)
		}
	case errors.Is(err, users.ErrNotFound):
		app.notFoundResponse(w, r, fmt.Errorf("User with ID %d not found", id))
	default:
		app.internalServerError(w, r, err)
	}
}
