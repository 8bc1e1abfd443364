package api

import (
	"net/http"
	"net/mail"

	"github.com/dekarrin/vadm/server/dao"
	"github.com/dekarrin/vadm/server/result"
)

// HTTPGetAllUsers returns a HandlerFunc that retrieves all existing users. Only
// an admin user can call this endpoint.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// the logged-in user of the client making the request.
func (api API) HTTPGetAllUsers() http.HandlerFunc {
	return api.endpoint(api.epGetAllUsers)
}

func (api API) epGetAllUsers(req *http.Request) result.Result {
	user := authUser(req)

	if user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s): forbidden", user.Username, user.Role)
	}

	users, err := api.Store.Users().GetAll(req.Context())
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]UserModel, len(users))
	for i := range users {
		resp[i] = userModel(users[i])
	}

	return result.OK(resp, "user '%s' got all users", user.Username)
}

// HTTPUpdateUser returns a HandlerFunc that replaces the username, email and
// role of an existing user. All users may update themselves, but only an admin
// may update other users or change a role.
func (api API) HTTPUpdateUser() http.HandlerFunc {
	return api.endpoint(api.epUpdateUser)
}

func (api API) epUpdateUser(req *http.Request) result.Result {
	id, err := requireIDParam(req)
	if err != nil {
		return result.NotFound(err.Error())
	}
	user := authUser(req)

	if id != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) update user %s: forbidden", user.Username, user.Role, id)
	}

	var updateReq UserUpdateRequest
	if err := parseJSON(req, &updateReq); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	existing, err := api.Store.Users().GetByID(req.Context(), id)
	if err != nil {
		return storeErr(err, "get user")
	}

	updated := existing
	if updateReq.Username != "" {
		updated.Username = updateReq.Username
	}
	if updateReq.Email != "" {
		if _, err := mail.ParseAddress(updateReq.Email); err != nil {
			return result.BadRequest("email: not a valid email address", "email: %s", err.Error())
		}
		updated.Email = updateReq.Email
	}
	if updateReq.Role != "" {
		role, err := dao.ParseRole(updateReq.Role)
		if err != nil {
			return result.BadRequest("role: "+err.Error(), "role: %s", err.Error())
		}
		if role != existing.Role && user.Role != dao.Admin {
			return result.Forbidden("user '%s' (role %s) change role: forbidden", user.Username, user.Role)
		}
		updated.Role = role
	}

	updated, err = api.Store.Users().Update(req.Context(), id, updated)
	if err != nil {
		return storeErr(err, "update user")
	}

	return result.OK(userModel(updated), "user '%s' updated user '%s'", user.Username, updated.Username)
}

// HTTPDeleteUser returns a HandlerFunc that deletes a user. All users may
// delete themselves, but only an admin may delete other users. The videos of
// the deleted user are deleted with it.
func (api API) HTTPDeleteUser() http.HandlerFunc {
	return api.endpoint(api.epDeleteUser)
}

func (api API) epDeleteUser(req *http.Request) result.Result {
	id, err := requireIDParam(req)
	if err != nil {
		return result.NotFound(err.Error())
	}
	user := authUser(req)

	if id != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) delete user %s: forbidden", user.Username, user.Role, id)
	}

	deleted, err := api.Store.Users().Delete(req.Context(), id)
	if err != nil {
		return storeErr(err, "delete user")
	}

	videos, err := api.Store.Videos().GetAllByUser(req.Context(), id)
	if err != nil {
		return result.InternalServerError("get videos of deleted user: %s", err.Error())
	}
	for i := range videos {
		if _, err := api.Store.Videos().Delete(req.Context(), videos[i].ID); err != nil {
			return result.InternalServerError("delete videos of deleted user: %s", err.Error())
		}
	}

	var otherStr string
	if id != user.ID {
		otherStr = "user '" + deleted.Username + "'"
	} else {
		otherStr = "self"
	}

	return result.NoContent("user '%s' successfully deleted %s", user.Username, otherStr)
}
