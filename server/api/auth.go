package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/dekarrin/vadm/internal/serr"
	"github.com/dekarrin/vadm/internal/version"
	"github.com/dekarrin/vadm/server/dao"
	"github.com/dekarrin/vadm/server/middle"
	"github.com/dekarrin/vadm/server/result"
	"github.com/dekarrin/vadm/server/token"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password the backend accepts.
const MinPasswordLength = 6

// HTTPGetInfo returns a HandlerFunc that retrieves version information on the
// server.
func (api API) HTTPGetInfo() http.HandlerFunc {
	return api.endpoint(api.epGetInfo)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	loggedIn, _ := req.Context().Value(middle.AuthLoggedIn).(bool)

	var resp InfoModel
	resp.Version.Server = version.ServerCurrent
	resp.Version.Console = version.Current

	userStr := "unauthed client"
	if loggedIn {
		userStr = "user '" + authUser(req).Username + "'"
	}
	return result.OK(resp, "%s got API info", userStr)
}

// HTTPLogin returns a HandlerFunc that logs in a user with a username and
// password and returns an auth token for that user.
func (api API) HTTPLogin() http.HandlerFunc {
	return api.endpoint(api.epLogin)
}

func (api API) epLogin(req *http.Request) result.Result {
	loginData := LoginRequest{}
	err := parseJSON(req, &loginData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if loginData.Username == "" {
		return result.BadRequest("username: property is empty or missing from request", "empty username")
	}
	if loginData.Password == "" {
		return result.BadRequest("password: property is empty or missing from request", "empty password")
	}

	user, err := api.Login(req.Context(), loginData.Username, loginData.Password)
	if err != nil {
		if errors.Is(err, serr.ErrBadCredentials) {
			return result.Unauthorized(serr.ErrBadCredentials.Error(), "user '%s': %s", loginData.Username, err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	tok, err := token.Generate(api.Secret, user)
	if err != nil {
		return result.InternalServerError("could not generate JWT: " + err.Error())
	}

	um := userModel(user)
	return result.OK(AuthResponse{Token: tok, User: &um}, "user '%s' successfully logged in", user.Username)
}

// HTTPRegister returns a HandlerFunc that creates a new user. Anyone may
// register a normal user; only a logged-in admin may create another admin.
func (api API) HTTPRegister() http.HandlerFunc {
	return api.endpoint(api.epRegister)
}

func (api API) epRegister(req *http.Request) result.Result {
	caller := authUser(req)

	var reg RegisterRequest
	err := parseJSON(req, &reg)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	role := dao.Normal
	if reg.Role != "" {
		role, err = dao.ParseRole(reg.Role)
		if err != nil {
			return result.BadRequest("role: "+err.Error(), "role: %s", err.Error())
		}
	}
	if role == dao.Admin && caller.Role != dao.Admin {
		return result.Forbidden("creation of admin '%s' by non-admin: forbidden", reg.Username)
	}

	newUser, err := api.CreateUser(req.Context(), reg.Username, reg.Password, reg.Email, role)
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) {
			return result.Conflict("User with that username already exists", "user '%s' already exists", reg.Username)
		} else if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	resp := AuthResponse{}
	um := userModel(newUser)
	resp.User = &um

	// self-registration logs the new user in; an admin creating an account
	// keeps their own session
	if caller.Username == "" {
		resp.Token, err = token.Generate(api.Secret, newUser)
		if err != nil {
			return result.InternalServerError("could not generate JWT: " + err.Error())
		}
	}

	return result.Created(resp, "user '%s' (%s) created", newUser.Username, newUser.ID)
}

// HTTPRefresh returns a HandlerFunc that creates a new token for the user the
// client is logged in as.
func (api API) HTTPRefresh() http.HandlerFunc {
	return api.endpoint(api.epRefresh)
}

func (api API) epRefresh(req *http.Request) result.Result {
	user := authUser(req)

	tok, err := token.Generate(api.Secret, user)
	if err != nil {
		return result.InternalServerError("could not generate JWT: " + err.Error())
	}

	return result.OK(AuthResponse{Token: tok}, "user '%s' successfully created new token", user.Username)
}

// HTTPLogout returns a HandlerFunc that invalidates every token issued to the
// logged-in user so far.
func (api API) HTTPLogout() http.HandlerFunc {
	return api.endpoint(api.epLogout)
}

func (api API) epLogout(req *http.Request) result.Result {
	user := authUser(req)

	user.LastLogoutTime = time.Now()
	if _, err := api.Store.Users().Update(req.Context(), user.ID, user); err != nil {
		return storeErr(err, "log out user")
	}

	return result.NoContent("user '%s' successfully logged out", user.Username)
}

// Login verifies the provided username and password against the existing user
// in persistence and returns that user if they match.
//
// The returned error matches serr.ErrBadCredentials if the user does not exist
// or the password is wrong.
func (api API) Login(ctx context.Context, username string, password string) (dao.User, error) {
	user, err := api.Store.Users().GetByUsername(ctx, username)
	if err != nil {
		if err == dao.ErrNotFound {
			return dao.User{}, serr.ErrBadCredentials
		}
		return dao.User{}, serr.New("", err, serr.ErrServer)
	}

	// verify password
	bcryptHash, err := base64.StdEncoding.DecodeString(user.Password)
	if err != nil {
		return dao.User{}, err
	}

	err = bcrypt.CompareHashAndPassword(bcryptHash, []byte(password))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return dao.User{}, serr.ErrBadCredentials
		}
		return dao.User{}, serr.New("", err, serr.ErrServer)
	}

	return user, nil
}

// CreateUser creates a new user with the given username, password, and email
// combo. Returns the newly-created user as it exists after creation.
//
// The returned error matches serr.ErrAlreadyExists if the username is taken
// and serr.ErrBadArgument if any of the arguments are invalid.
func (api API) CreateUser(ctx context.Context, username, password, email string, role dao.Role) (dao.User, error) {
	if username == "" {
		return dao.User{}, serr.New("username cannot be blank", serr.ErrBadArgument)
	}
	if len(password) < MinPasswordLength {
		return dao.User{}, serr.New(fmt.Sprintf("password must be at least %d characters", MinPasswordLength), serr.ErrBadArgument)
	}
	if email == "" {
		return dao.User{}, serr.New("email cannot be blank", serr.ErrBadArgument)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return dao.User{}, serr.New("email is not valid", err, serr.ErrBadArgument)
	}

	_, err := api.Store.Users().GetByUsername(ctx, username)
	if err == nil {
		return dao.User{}, serr.New("a user with that username already exists", serr.ErrAlreadyExists)
	} else if !errors.Is(err, dao.ErrNotFound) {
		return dao.User{}, serr.New("", err, serr.ErrServer)
	}

	storedPass, err := hashPassword(password)
	if err != nil {
		return dao.User{}, serr.New("", err, serr.ErrServer)
	}

	newUser := dao.User{
		Username: username,
		Password: storedPass,
		Email:    email,
		Role:     role,
	}

	user, err := api.Store.Users().Create(ctx, newUser)
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return dao.User{}, serr.New("a user with that username already exists", serr.ErrAlreadyExists)
		}
		return dao.User{}, serr.New("", err, serr.ErrServer)
	}

	return user, nil
}

func hashPassword(password string) (string, error) {
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if err == bcrypt.ErrPasswordTooLong {
			return "", serr.New("password is too long", err, serr.ErrBadArgument)
		}
		return "", err
	}
	return base64.StdEncoding.EncodeToString(passHash), nil
}
