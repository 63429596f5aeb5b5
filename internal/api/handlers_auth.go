// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/storefront/internal/auth"
	"github.com/tomtom215/storefront/internal/database"
	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/models"
	"github.com/tomtom215/storefront/internal/validation"
)

// SignUp handles POST /api/auth/sign-up. The new account is signed in
// immediately.
//
// @Summary Create a credentials account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.SignUpRequest true "Account details"
// @Success 201 {object} APIResponse{data=models.SignInResponse}
// @Failure 400 {object} APIResponse "Validation failed"
// @Failure 409 {object} APIResponse "Email already registered"
// @Router /auth/sign-up [post]
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	user, err := h.Accounts.SignUp(r.Context(), &req)
	if err != nil {
		switch {
		case respondValidation(rw, err):
			h.auditSignUp(r, nil, req.Email, "validation")
		case errors.Is(err, database.ErrEmailTaken):
			h.auditSignUp(r, nil, req.Email, "email taken")
			rw.Conflict("User already exists")
		default:
			rw.DatabaseError(err)
		}
		return
	}
	h.auditSignUp(r, user, req.Email, "")

	resp, err := h.establishSession(w, r, user)
	if err != nil {
		rw.InternalError("Failed to start session")
		return
	}
	rw.Created(resp)
}

// SignIn handles POST /api/auth/sign-in. Browsers get the session cookie and
// API clients use the returned token.
//
// @Summary Sign in with email and password
// @Description Starts a server-side session, claims the anonymous cart and returns a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.SignInRequest true "Credentials"
// @Success 200 {object} APIResponse{data=models.SignInResponse}
// @Failure 401 {object} APIResponse "Invalid email or password"
// @Router /auth/sign-in [post]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	user, err := h.Accounts.SignIn(r.Context(), &req)
	if err != nil {
		switch {
		case respondValidation(rw, err):
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.auditSignIn(r, nil, req.Email, false)
			rw.Unauthorized("Invalid email or password")
		default:
			rw.DatabaseError(err)
		}
		return
	}

	resp, err := h.establishSession(w, r, user)
	if err != nil {
		rw.InternalError("Failed to start session")
		return
	}
	rw.Success(resp)
}

// SignOut handles POST /api/auth/sign-out.
//
// @Summary End the current session
// @Tags Auth
// @Produce json
// @Success 200 {object} APIResponse
// @Router /auth/sign-out [post]
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	actor := actorFromRequest(r)
	if err := h.Authenticator.EndSession(r.Context(), w, r); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to end session")
		rw.InternalError("Failed to sign out")
		return
	}
	h.auditSignOut(r, actor)
	rw.Success(nil)
}

// establishSession starts the server-side session, moves the visitor's
// anonymous cart onto the account and issues a bearer token.
func (h *Handler) establishSession(w http.ResponseWriter, r *http.Request, user *models.User) (*models.SignInResponse, error) {
	ctx := r.Context()
	if _, err := h.Authenticator.StartSession(ctx, w, r, user); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("user_id", user.ID).Msg("Failed to create session")
		return nil, err
	}

	// A failed claim leaves the anonymous cart in place; sign-in proceeds.
	if sid := auth.CartSessionFromContext(ctx); sid != "" {
		if err := h.Cart.ClaimSessionCart(ctx, sid, user.ID); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("user_id", user.ID).Msg("Failed to claim session cart")
		} else {
			h.auditCartClaimed(r, user, sid)
		}
	}

	token, expires, err := h.JWT.GenerateToken(user)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to sign token")
		return nil, err
	}
	h.auditSignIn(r, user, user.Email, true)
	logging.Ctx(ctx).Info().Str("user_id", user.ID).Msg("User signed in")
	return &models.SignInResponse{User: user, Token: token, ExpiresAt: expires}, nil
}

// SignInForm handles the HTML sign-in form post.
func (h *Handler) SignInForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	callback := safeCallback(r.PostFormValue("callbackUrl"))
	req := models.SignInRequest{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	user, err := h.Accounts.SignIn(r.Context(), &req)
	if err != nil {
		msg := "Invalid email or password"
		if !errors.Is(err, auth.ErrInvalidCredentials) && !isValidation(err) {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Sign-in failed")
			msg = "Something went wrong, please try again"
		} else {
			h.auditSignIn(r, nil, req.Email, false)
		}
		h.renderAuthPage(w, r, "sign_in", http.StatusUnauthorized, authForm{Email: req.Email, Callback: callback, Error: msg})
		return
	}
	if _, err := h.establishSession(w, r, user); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, callback, http.StatusSeeOther)
}

// SignUpForm handles the HTML sign-up form post.
func (h *Handler) SignUpForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	callback := safeCallback(r.PostFormValue("callbackUrl"))
	req := models.SignUpRequest{
		Name:            strings.TrimSpace(r.PostFormValue("name")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
	form := authForm{Name: req.Name, Email: req.Email, Callback: callback}

	user, err := h.Accounts.SignUp(r.Context(), &req)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case isValidation(err):
			h.auditSignUp(r, nil, req.Email, "validation")
			form.Error = err.Error()
		case errors.Is(err, database.ErrEmailTaken):
			h.auditSignUp(r, nil, req.Email, "email taken")
			status = http.StatusConflict
			form.Error = "User already exists"
		default:
			logging.Ctx(r.Context()).Error().Err(err).Msg("Sign-up failed")
			status = http.StatusInternalServerError
			form.Error = "Something went wrong, please try again"
		}
		h.renderAuthPage(w, r, "sign_up", status, form)
		return
	}
	h.auditSignUp(r, user, req.Email, "")
	if _, err := h.establishSession(w, r, user); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, callback, http.StatusSeeOther)
}

// SignOutForm handles the HTML sign-out button.
func (h *Handler) SignOutForm(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	if err := h.Authenticator.EndSession(r.Context(), w, r); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to end session")
	} else {
		h.auditSignOut(r, actor)
	}
	http.Redirect(w, r, h.homePath(), http.StatusSeeOther)
}

// safeCallback keeps post-auth redirects on this site: only absolute paths
// that are not protocol-relative are honoured.
func safeCallback(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	return raw
}

func isValidation(err error) bool {
	var verr *validation.RequestValidationError
	return errors.As(err, &verr)
}
