package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opsdesk/toolbox-admin/internal/api/session"
	"github.com/opsdesk/toolbox-admin/internal/api/view"
	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

const usersPath = "/admin/users"

type UserHandler struct {
	base
	users  ports.UserService
	groups ports.GroupService
	roles  ports.RoleService
}

func NewUserHandler(users ports.UserService, groups ports.GroupService, roles ports.RoleService, sessions *session.Manager, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		base:   base{sessions: sessions, log: log},
		users:  users,
		groups: groups,
		roles:  roles,
	}
}

type userAddForm struct {
	Email     string `form:"email" validate:"required,email,max=60"`
	Name      string `form:"name" validate:"required,max=60"`
	FirstName string `form:"first_name" validate:"max=60"`
	LastName  string `form:"last_name" validate:"max=60"`
	Password  string `form:"password" validate:"required,maxbytes=72"`
	IsAdmin   bool   `form:"is_admin"`
}

func (f userAddForm) data() view.FormData {
	return view.FormData{Values: map[string]string{
		"email":      f.Email,
		"name":       f.Name,
		"first_name": f.FirstName,
		"last_name":  f.LastName,
		"is_admin":   boolValue(f.IsAdmin),
	}}
}

type userEditForm struct {
	Email     string `form:"email" validate:"required,email,max=60"`
	Name      string `form:"name" validate:"required,max=60"`
	FirstName string `form:"first_name" validate:"max=60"`
	LastName  string `form:"last_name" validate:"max=60"`
	IsAdmin   bool   `form:"is_admin"`
	IsValid   bool   `form:"is_valid"`
	IsBlocked bool   `form:"is_blocked"`
}

func newUserEditForm(u *domain.User) userEditForm {
	return userEditForm{
		Email:     u.Email,
		Name:      u.Name,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
		IsValid:   u.IsValid,
		IsBlocked: u.IsBlocked,
	}
}

func (f userEditForm) data() view.FormData {
	return view.FormData{Values: map[string]string{
		"email":      f.Email,
		"name":       f.Name,
		"first_name": f.FirstName,
		"last_name":  f.LastName,
		"is_admin":   boolValue(f.IsAdmin),
		"is_valid":   boolValue(f.IsValid),
		"is_blocked": boolValue(f.IsBlocked),
	}}
}

// assignForm keeps the raw select values; "" selects no group or role.
type assignForm struct {
	GroupID string `form:"group_id" validate:"omitempty,number"`
	RoleID  string `form:"role_id" validate:"omitempty,number"`
}

func (f assignForm) data() view.FormData {
	return view.FormData{Values: map[string]string{"group_id": f.GroupID, "role_id": f.RoleID}}
}

// input converts the selections to ids. Anything that is not empty or a
// positive int64 is a validation error on its field.
func (f assignForm) input() (ports.AssignInput, error) {
	groupID, gerr := optionalID(f.GroupID)
	roleID, rerr := optionalID(f.RoleID)
	if gerr == nil && rerr == nil {
		return ports.AssignInput{GroupID: groupID, RoleID: roleID}, nil
	}

	ve := &domain.ValidationError{Fields: map[string]string{}}
	if gerr != nil {
		ve.Fields["group_id"] = "selected group is not valid"
	}
	if rerr != nil {
		ve.Fields["role_id"] = "selected role is not valid"
	}
	return ports.AssignInput{}, ve
}

func optionalID(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, fmt.Errorf("id %d out of range", id)
	}
	return &id, nil
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func (h *UserHandler) form(c echo.Context, title, action string, add bool) func(view.FormData, int) error {
	return func(f view.FormData, status int) error {
		return render(c, status, view.UserForm(h.page(c, title), action, f, add))
	}
}

// List serves GET /admin/users.
func (h *UserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.users.List(ctx)
	if err != nil {
		return err
	}
	groups, roles, err := h.catalog(ctx)
	if err != nil {
		return err
	}

	groupNames := make(map[int64]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
	}
	roleNames := make(map[int64]string, len(roles))
	for _, r := range roles {
		roleNames[r.ID] = r.Name
	}
	return render(c, http.StatusOK, view.UserList(h.page(c, "Users"), users, groupNames, roleNames))
}

// Add serves GET and POST /admin/users/add.
func (h *UserHandler) Add(c echo.Context) error {
	rerender := h.form(c, "Add User", usersPath+"/add", true)
	if !isPost(c) {
		return rerender(view.FormData{}, http.StatusOK)
	}

	var form userAddForm
	err := bindForm(c, &form)
	if err == nil {
		_, err = h.users.Create(c.Request().Context(), ports.CreateUserInput{
			Email:     form.Email,
			Name:      form.Name,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Password:  form.Password,
			IsAdmin:   form.IsAdmin,
		})
	}
	observe(domain.EntityUser, opAdd, err)
	if err != nil {
		return h.formError(c, err, form.data(), rerender, usersPath, "Failed to add the user.")
	}
	return h.redirectWithFlash(c, usersPath, "You have successfully added a new user.")
}

// Edit serves GET and POST /admin/users/edit/:id.
func (h *UserHandler) Edit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	u, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	rerender := h.form(c, "Edit User", idPath(usersPath+"/edit/", id), false)
	if !isPost(c) {
		return rerender(newUserEditForm(u).data(), http.StatusOK)
	}

	var form userEditForm
	err = bindForm(c, &form)
	if err == nil {
		_, err = h.users.Update(c.Request().Context(), session.User(c), id, ports.UpdateUserInput{
			Email:     form.Email,
			Name:      form.Name,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			IsAdmin:   form.IsAdmin,
			IsValid:   form.IsValid,
			IsBlocked: form.IsBlocked,
		})
	}
	observe(domain.EntityUser, opEdit, err)
	if err != nil {
		return h.formError(c, err, form.data(), rerender, usersPath, "Failed to edit the user.")
	}
	return h.redirectWithFlash(c, usersPath, "You have successfully edited the user.")
}

// Delete serves GET (confirmation) and POST /admin/users/delete/:id. Admin
// accounts cannot be deleted.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	u, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if u.IsAdmin {
		observe(domain.EntityUser, opDelete, domain.ErrForbidden)
		return domain.ErrForbidden
	}

	action := idPath(usersPath+"/delete/", id)
	if !isPost(c) {
		return render(c, http.StatusOK, view.ConfirmDelete(h.page(c, ""), domain.EntityUser, u.Name, action, usersPath))
	}

	err = h.users.Delete(c.Request().Context(), session.User(c), id)
	observe(domain.EntityUser, opDelete, err)
	if err != nil {
		return h.mutationError(c, err, usersPath, "Failed to delete the user.")
	}
	return h.redirectWithFlash(c, usersPath, "You have successfully deleted the user.")
}

// Assign serves GET and POST /admin/users/assign/:id. Another admin's
// group and role cannot be changed.
func (h *UserHandler) Assign(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	u, err := h.users.Get(ctx, id)
	if err != nil {
		return err
	}
	actor := session.User(c)
	if u.IsAdmin && (actor == nil || actor.ID != u.ID) {
		observe(domain.EntityUser, opAssign, domain.ErrForbidden)
		return domain.ErrForbidden
	}

	groups, roles, err := h.catalog(ctx)
	if err != nil {
		return err
	}
	rerender := func(f view.FormData, status int) error {
		return render(c, status, view.AssignForm(h.page(c, ""), u, f, groups, roles))
	}
	if !isPost(c) {
		return rerender(assignForm{GroupID: formatID(u.GroupID), RoleID: formatID(u.RoleID)}.data(), http.StatusOK)
	}

	var form assignForm
	err = bindForm(c, &form)
	if err == nil {
		var in ports.AssignInput
		if in, err = form.input(); err == nil {
			_, err = h.users.Assign(ctx, actor, id, in)
		}
	}
	observe(domain.EntityUser, opAssign, err)
	if err != nil {
		return h.formError(c, err, form.data(), rerender, usersPath, "Failed to assign the user.")
	}
	return h.redirectWithFlash(c, usersPath, "You have successfully assigned a group and role.")
}

func (h *UserHandler) catalog(ctx context.Context) ([]*domain.Group, []*domain.Role, error) {
	groups, err := h.groups.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	roles, err := h.roles.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return groups, roles, nil
}
