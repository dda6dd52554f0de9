package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opsdesk/toolbox-admin/internal/api/session"
	"github.com/opsdesk/toolbox-admin/internal/api/view"
	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

const rolesPath = "/admin/roles"

type RoleHandler struct {
	base
	roles ports.RoleService
}

func NewRoleHandler(roles ports.RoleService, sessions *session.Manager, log zerolog.Logger) *RoleHandler {
	return &RoleHandler{base: base{sessions: sessions, log: log}, roles: roles}
}

type roleForm struct {
	Name        string `form:"name" validate:"required,max=60"`
	Description string `form:"description" validate:"required,max=200"`
}

func (f roleForm) data() view.FormData {
	return view.FormData{Values: map[string]string{"name": f.Name, "description": f.Description}}
}

func (f roleForm) input() ports.RoleInput {
	return ports.RoleInput{Name: f.Name, Description: f.Description}
}

func (h *RoleHandler) form(c echo.Context, title, action string) func(view.FormData, int) error {
	return func(f view.FormData, status int) error {
		return render(c, status, view.CatalogForm(h.page(c, title), action, f, false))
	}
}

// List serves GET /admin/roles.
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.roles.List(c.Request().Context())
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, view.RoleList(h.page(c, "Roles"), roles))
}

// Add serves GET and POST /admin/roles/add.
func (h *RoleHandler) Add(c echo.Context) error {
	rerender := h.form(c, "Add Role", rolesPath+"/add")
	if !isPost(c) {
		return rerender(view.FormData{}, http.StatusOK)
	}

	var form roleForm
	err := bindForm(c, &form)
	if err == nil {
		_, err = h.roles.Create(c.Request().Context(), form.input())
	}
	observe(domain.EntityRole, opAdd, err)
	if err != nil {
		return h.formError(c, err, form.data(), rerender, rolesPath, "Failed to add the role.")
	}
	return h.redirectWithFlash(c, rolesPath, "You have successfully added a new role.")
}

// Edit serves GET and POST /admin/roles/edit/:id.
func (h *RoleHandler) Edit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	r, err := h.roles.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	rerender := h.form(c, "Edit Role", idPath(rolesPath+"/edit/", id))
	if !isPost(c) {
		return rerender(roleForm{Name: r.Name, Description: r.Description}.data(), http.StatusOK)
	}

	var form roleForm
	err = bindForm(c, &form)
	if err == nil {
		_, err = h.roles.Update(c.Request().Context(), id, form.input())
	}
	observe(domain.EntityRole, opEdit, err)
	if err != nil {
		return h.formError(c, err, form.data(), rerender, rolesPath, "Failed to edit the role.")
	}
	return h.redirectWithFlash(c, rolesPath, "You have successfully edited the role.")
}

// Delete serves GET (confirmation) and POST /admin/roles/delete/:id.
// Holders of the role are kept and lose their role.
func (h *RoleHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	r, err := h.roles.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	action := idPath(rolesPath+"/delete/", id)
	if !isPost(c) {
		return render(c, http.StatusOK, view.ConfirmDelete(h.page(c, ""), domain.EntityRole, r.Name, action, rolesPath))
	}

	err = h.roles.Delete(c.Request().Context(), id)
	observe(domain.EntityRole, opDelete, err)
	if err != nil {
		return h.mutationError(c, err, rolesPath, "Failed to delete the role.")
	}
	return h.redirectWithFlash(c, rolesPath, "You have successfully deleted the role.")
}
