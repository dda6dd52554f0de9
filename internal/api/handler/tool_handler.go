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

const toolsPath = "/admin/tools"

type ToolHandler struct {
	base
	tools ports.ToolService
}

func NewToolHandler(tools ports.ToolService, sessions *session.Manager, log zerolog.Logger) *ToolHandler {
	return &ToolHandler{base: base{sessions: sessions, log: log}, tools: tools}
}

type toolForm struct {
	Name        string `form:"name" validate:"required,max=60"`
	Description string `form:"description" validate:"required,max=200"`
	Target      string `form:"target" validate:"required,max=200,httpurl"`
}

func (f toolForm) data() view.FormData {
	return view.FormData{Values: map[string]string{"name": f.Name, "description": f.Description, "target": f.Target}}
}

func (f toolForm) input() ports.ToolInput {
	return ports.ToolInput{Name: f.Name, Description: f.Description, Target: f.Target}
}

func (h *ToolHandler) form(c echo.Context, title, action string) func(view.FormData, int) error {
	return func(f view.FormData, status int) error {
		return render(c, status, view.CatalogForm(h.page(c, title), action, f, true))
	}
}

// List serves GET /admin/tools.
func (h *ToolHandler) List(c echo.Context) error {
	tools, err := h.tools.List(c.Request().Context())
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, view.ToolList(h.page(c, "Tools"), tools))
}

// Add serves GET and POST /admin/tools/add.
func (h *ToolHandler) Add(c echo.Context) error {
	rerender := h.form(c, "Add Tool", toolsPath+"/add")
	if !isPost(c) {
		return rerender(view.FormData{}, http.StatusOK)
	}

	var form toolForm
	err := bindForm(c, &form)
	if err == nil {
		_, err = h.tools.Create(c.Request().Context(), form.input())
	}
	observe(domain.EntityTool, opAdd, err)
	if err != nil {
		return h.formError(c, err, form.data(), rerender, toolsPath, "Failed to add the tool.")
	}
	return h.redirectWithFlash(c, toolsPath, "You have successfully added a new tool.")
}

// Edit serves GET and POST /admin/tools/edit/:id.
func (h *ToolHandler) Edit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := h.tools.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	rerender := h.form(c, "Edit Tool", idPath(toolsPath+"/edit/", id))
	if !isPost(c) {
		return rerender(toolForm{Name: t.Name, Description: t.Description, Target: t.Target}.data(), http.StatusOK)
	}

	var form toolForm
	err = bindForm(c, &form)
	if err == nil {
		_, err = h.tools.Update(c.Request().Context(), id, form.input())
	}
	observe(domain.EntityTool, opEdit, err)
	if err != nil {
		return h.formError(c, err, form.data(), rerender, toolsPath, "Failed to edit the tool.")
	}
	return h.redirectWithFlash(c, toolsPath, "You have successfully edited the tool.")
}

// Delete serves GET (confirmation) and POST /admin/tools/delete/:id.
func (h *ToolHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := h.tools.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	action := idPath(toolsPath+"/delete/", id)
	if !isPost(c) {
		return render(c, http.StatusOK, view.ConfirmDelete(h.page(c, ""), domain.EntityTool, t.Name, action, toolsPath))
	}

	err = h.tools.Delete(c.Request().Context(), id)
	observe(domain.EntityTool, opDelete, err)
	if err != nil {
		return h.mutationError(c, err, toolsPath, "Failed to delete the tool.")
	}
	return h.redirectWithFlash(c, toolsPath, "You have successfully deleted the tool.")
}
