package handlers

import (
	"errors"
	"net/http"

	"github.com/cotizador/quoter/internal/domain/auth"
	"github.com/cotizador/quoter/internal/domain/user"
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Register", err)
		return
	}
	phone, err := user.NormalizePhone(req.Phone, h.phoneRegion)
	if err != nil {
		h.fail(w, r, "Register", err)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.fail(w, r, "Register", err)
		return
	}

	u, err := h.users.Create(r.Context(), user.User{
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        phone,
		TaxID:        req.TaxID,
		PasswordHash: hash,
	})
	if err != nil {
		h.fail(w, r, "Register", err)
		return
	}
	h.issue(w, r, http.StatusCreated, u)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Login", err)
		return
	}
	u, err := h.users.GetByUsername(r.Context(), req.Username)
	if errors.Is(err, user.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "")
		return
	}
	if err != nil {
		h.fail(w, r, "Login", err)
		return
	}
	if err := auth.ComparePassword(u.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "")
		return
	}
	h.issue(w, r, http.StatusOK, u)
}

func (h *Handlers) issue(w http.ResponseWriter, r *http.Request, status int, u user.User) {
	token, exp, err := h.tokens.Issue(u.ID, u.IsStaff)
	if err != nil {
		h.fail(w, r, "issue", err)
		return
	}
	writeJSON(w, status, TokenResponse{Token: token, ExpiresAt: exp, User: userResponse(u)})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), principal(r).UserID)
	if err != nil {
		h.fail(w, r, "Me", err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse(u))
}

func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "UpdateMe", err)
		return
	}
	u, err := h.users.Get(r.Context(), principal(r).UserID)
	if err != nil {
		h.fail(w, r, "UpdateMe", err)
		return
	}

	u.FirstName, u.LastName, u.Email, u.TaxID = req.FirstName, req.LastName, req.Email, req.TaxID
	if u.Phone, err = user.NormalizePhone(req.Phone, h.phoneRegion); err != nil {
		h.fail(w, r, "UpdateMe", err)
		return
	}
	if req.Password != "" {
		if u.PasswordHash, err = auth.HashPassword(req.Password); err != nil {
			h.fail(w, r, "UpdateMe", err)
			return
		}
	}

	u, err = h.users.Update(r.Context(), u)
	if err != nil {
		h.fail(w, r, "UpdateMe", err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse(u))
}
