package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rolesapi/internal/domain/roles"
	"rolesapi/internal/params"
)

type rolePayload struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`

	// Read-only fields of a fetched role; accepted and ignored.
	ID    json.RawMessage `json:"id,omitempty" swaggerignore:"true"`
	Users json.RawMessage `json:"users,omitempty" swaggerignore:"true"`
}

func (app *application) readRolePayload(w http.ResponseWriter, r *http.Request) (*rolePayload, bool) {
	var payload rolePayload
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

// ListRoles godoc
//
//	@Summary		List roles
//	@Description	Returns every role.
//	@Tags			roles
//	@Produce		json
//	@Success		200	{array}		roles.Role
//	@Failure		500	{object}	error	"Internal Server Error"
//	@Router			/roles [get]
func (app *application) listRolesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	list, err := app.store.Roles().List(ctx)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// GetRole godoc
//
//	@Summary		Get a role
//	@Tags			roles
//	@Produce		json
//	@Param			roleID	path		int	true	"Role ID"
//	@Success		200		{object}	roles.Role
//	@Failure		400		{object}	error	"Invalid role ID"
//	@Failure		404		{object}	error	"Role not found"
//	@Router			/roles/{roleID} [get]
func (app *application) getRoleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := params.PathID(r, "roleID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	role, err := app.store.Roles().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, roles.ErrNotFound) {
			app.notFoundResponse(w, r, fmt.Errorf("Role with ID %d not found", id))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, role); err != nil {
		app.internalServerError(w, r, err)
	}
}

// CreateRole godoc
//
//	@Summary		Create a role
//	@Description	Creates a role. Role names are unique.
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Param			body	body		rolePayload	true	"Role"
//	@Success		201		{object}	roles.Role
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		409		{object}	error	"Role name already in use"
//	@Router			/roles [post]
func (app *application) createRoleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	payload, ok := app.readRolePayload(w, r)
	if !ok {
		return
	}

	role := &roles.Role{Name: payload.Name, Description: payload.Description}
	if err := app.store.Roles().Create(ctx, role); err != nil {
		if errors.Is(err, roles.ErrDuplicateName) {
			app.conflictResponse(w, r, fmt.Errorf("Role with name '%s' already exists", role.Name))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/roles/%d", role.ID))
	if err := app.jsonResponse(w, http.StatusCreated, role); err != nil {
		app.internalServerError(w, r, err)
	}
}

// UpdateRole godoc
//
//	@Summary		Replace a role
//	@Description	Overwrites the name and description of a role.
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Param			roleID	path		int			true	"Role ID"
//	@Param			body	body		rolePayload	true	"Role"
//	@Success		200		{object}	roles.Role
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		404		{object}	error	"Role not found"
//	@Failure		409		{object}	error	"Role name already in use"
//	@Router			/roles/{roleID} [put]
func (app *application) updateRoleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := params.PathID(r, "roleID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payload, ok := app.readRolePayload(w, r)
	if !ok {
		return
	}

	role, err := app.store.Roles().GetByID(ctx, id)
	if err == nil {
		role.Name = payload.Name
		role.Description = payload.Description
		err = app.store.Roles().Update(ctx, role)
	}

	switch {
	case err == nil:
		if err := app.jsonResponse(w, http.StatusOK, role); err != nil {
			app.internalServerError(w, r, err)
		}
	case errors.Is(err, roles.ErrNotFound):
		app.notFoundResponse(w, r, fmt.Errorf("Role with ID %d not found", id))
	case errors.Is(err, roles.ErrDuplicateName):
		app.conflictResponse(w, r, fmt.Errorf("Role with name '%s' already exists", payload.Name))
	default:
		app.internalServerError(w, r, err)
	}
}

// DeleteRole godoc
//
//	@Summary		Delete a role
//	@Description	Deletes a role. Roles still assigned to users cannot be deleted.
//	@Tags			roles
//	@Produce		json
//	@Param			roleID	path		int	true	"Role ID"
//	@Success		200		{object}	messageResponse
//	@Failure		400		{object}	error	"Invalid role ID"
//	@Failure		404		{object}	error	"Role not found"
//	@Failure		409		{object}	error	"Role is assigned to users"
//	@Router			/roles/{roleID} [delete]
func (app *application) deleteRoleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := params.PathID(r, "roleID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	role, err := app.store.Roles().GetByID(ctx, id)
	if err == nil {
		err = app.store.Roles().Delete(ctx, id)
	}

	switch {
	case err == nil:
		if err := app.jsonResponse(w, http.StatusOK, messageResponse{
			Message: fmt.Sprintf("Role '%s' deleted successfully", role.Name),
		}); err != nil {
			app.internalServerError(w, r, err)
		}
	case errors.Is(err, roles.ErrNotFound):
		app.notFoundResponse(w, r, fmt.Errorf("Role with ID %d not found", id))
	case errors.Is(err, roles.ErrInUse):
		app.conflictResponse(w, r, fmt.Errorf("Role '%s' is assigned to users and cannot be deleted", role.Name))
	default:
		app.internalServerError(w, r, err)
	}
}

// ListRoleUsers godoc
//
//	@Summary		List users holding a role
//	@Tags			roles
//	@Produce		json
//	@Param			roleID	path		int	true	"Role ID"
//	@Success		200		{array}		users.User
//	@Failure		400		{object}	error	"Invalid role ID"
//	@Failure		404		{object}	error	"Role not found"
//	@Router			/roles/{roleID}/users [get]
func (app *application) listRoleUsersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := params.PathID(r, "roleID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	exists, err := app.store.Roles().Exists(ctx, id)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if !exists {
		app.notFoundResponse(w, r, fmt.Errorf("Role with ID %d not found", id))
		return
	}

	list, err := app.store.Users().ListByRole(ctx, id)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}
