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

const groupsPath = "/admin/groups"

type GroupHandler struct {
	base
	groups ports.GroupService
}

func NewGroupHandler(groups ports.GroupService, sessions *session.Manager, log zerolog.Logger) *GroupHandler {
	return &GroupHandler{base: base{sessions: sessions, log: log}, groups: groups}
}

type groupForm struct {
	Name        string `form:"name" validate:"required,max=60"`
	Description string `form:"description" validate:"required,max=200"`
}

func (f groupForm) data() view.FormData {
	return view.FormData{Values: map[string]string{"name": f.Name, "description": f.Description}}
}

func (f groupForm) input() ports.GroupInput {
	return ports.GroupInput{Name: f.Name, Description: f.Description}
}

func (h *GroupHandler) form(c echo.Context, title, action string) func(view.FormData, int) error {
	return func(f view.FormData, status int) error {
		return render(c, status, view.CatalogForm(h.page(c, title), action, f, false))
	}
}

// List serves GET /admin/groups.
func (h *GroupHandler) List(c echo.Context) error {
	groups, err := h.groups.List(c.Request().Context())
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, view.GroupList(h.page(c, "Groups"), groups))
}

// Add serves GET and POST /admin/groups/add.
func (h *GroupHandler) Add(c echo.Context) error {
	rerender := h.form(c, "Add Group", groupsPath+"/add")
	if !isPost(c) {
		return rerender(view.FormData{}, http.StatusOK)
	}

	var form groupForm
	err := bindForm(c, &form)
	if err == nil {
		_, err = h.groups.Create(c.Request().Context(), form.input())
	}
	observe(domain.EntityGroup, opAdd, err)
	if err != nil {
		return h.formError(c, err, form.data(), rerender, groupsPath, "Failed to add the group.")
	}
	return h.redirectWithFlash(c, groupsPath, "You have successfully added a new group.")
}

// Edit serves GET and POST /admin/groups/edit/:id.
func (h *GroupHandler) Edit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	g, err := h.groups.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	rerender := h.form(c, "Edit Group", idPath(groupsPath+"/edit/", id))
	if !isPost(c) {
		return rerender(groupForm{Name: g.Name, Description: g.Description}.data(), http.StatusOK)
	}

	var form groupForm
	err = bindForm(c, &form)
	if err == nil {
		_, err = h.groups.Update(c.Request().Context(), id, form.input())
	}
	observe(domain.EntityGroup, opEdit, err)
	if err != nil {
		return h.formError(c, err, form.data(), rerender, groupsPath, "Failed to edit the group.")
	}
	return h.redirectWithFlash(c, groupsPath, "You have successfully edited the group.")
}

// Delete serves GET (confirmation) and POST /admin/groups/delete/:id.
// Members of the group are kept and lose their group.
func (h *GroupHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	g, err := h.groups.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	action := idPath(groupsPath+"/delete/", id)
	if !isPost(c) {
		return render(c, http.StatusOK, view.ConfirmDelete(h.page(c, ""), domain.EntityGroup, g.Name, action, groupsPath))
	}

	err = h.groups.Delete(c.Request().Context(), id)
	observe(domain.EntityGroup, opDelete, err)
	if err != nil {
		return h.mutationError(c, err, groupsPath, "Failed to delete the group.")
	}
	return h.redirectWithFlash(c, groupsPath, "You have successfully deleted the group.")
}
