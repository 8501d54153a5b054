package handlers

import (
	"net/http"

	"github.com/cotizador/quoter/internal/domain/auth"
	"github.com/cotizador/quoter/internal/domain/user"
)

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.fail(w, r, "ListUsers", err)
		return
	}
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = userResponse(u)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, "GetUser", err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "GetUser", err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse(u))
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "CreateUser", err)
		return
	}
	if req.Password == "" {
		h.fail(w, r, "CreateUser", badRequest("password is required"))
		return
	}
	var u user.User
	if err := h.applyUser(&u, req); err != nil {
		h.fail(w, r, "CreateUser", err)
		return
	}
	u, err := h.users.Create(r.Context(), u)
	if err != nil {
		h.fail(w, r, "CreateUser", err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse(u))
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, "UpdateUser", err)
		return
	}
	var req UserRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "UpdateUser", err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "UpdateUser", err)
		return
	}
	if err := h.applyUser(&u, req); err != nil {
		h.fail(w, r, "UpdateUser", err)
		return
	}
	u, err = h.users.Update(r.Context(), u)
	if err != nil {
		h.fail(w, r, "UpdateUser", err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse(u))
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, "DeleteUser", err)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "DeleteUser", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) applyUser(u *user.User, req UserRequest) error {
	phone, err := user.NormalizePhone(req.Phone, h.phoneRegion)
	if err != nil {
		return err
	}
	u.Username = req.Username
	u.FirstName = req.FirstName
	u.LastName = req.LastName
	u.Email = req.Email
	u.Phone = phone
	u.TaxID = req.TaxID
	u.IsStaff = req.IsStaff
	if req.Password != "" {
		if u.PasswordHash, err = auth.HashPassword(req.Password); err != nil {
			return err
		}
	}
	return nil
}
