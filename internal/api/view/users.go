package view

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func lookupName(names map[int64]string, id *int64) string {
	if id == nil {
		return "-"
	}
	if n, ok := names[*id]; ok {
		return n
	}
	return "-"
}

// UserList renders all accounts. Admin rows offer no assign or delete links.
func UserList(p Page, users []*domain.User, groups, roles map[int64]string) Node {
	p.Title = "Users"
	rows := make([]Node, 0, len(users))
	for _, u := range users {
		actions := []Node{A(Href(idPath("/admin/users/edit/", u.ID)), Text("Edit"))}
		if !u.IsAdmin {
			actions = append(actions,
				Text(" "), A(Href(idPath("/admin/users/assign/", u.ID)), Text("Assign")),
				Text(" "), A(Href(idPath("/admin/users/delete/", u.ID)), Text("Delete")),
			)
		}
		rows = append(rows, Tr(
			Td(Text(u.Name)),
			Td(Text(u.FullName())),
			Td(Text(u.Email)),
			Td(Text(lookupName(groups, u.GroupID))),
			Td(Text(lookupName(roles, u.RoleID))),
			Td(Text(yesNo(u.IsAdmin))),
			Td(Text(yesNo(u.IsValid))),
			Td(Text(yesNo(u.IsBlocked))),
			Td(Group(actions)),
		))
	}
	return listPage(p, "/admin/users/add", "Add user",
		table([]string{"Username", "Name", "Email", "Group", "Role", "Admin", "Valid", "Blocked", ""}, rows, "No users have been added."))
}

// UserForm renders the admin add or edit form. New accounts take a password;
// existing ones expose the validity and blocking flags.
func UserForm(p Page, action string, f FormData, add bool) Node {
	fields := []Node{
		textField(f, "Email", "email", "email", true),
		textField(f, "Username", "name", "text", true),
		textField(f, "First name", "first_name", "text", false),
		textField(f, "Last name", "last_name", "text", false),
	}
	if add {
		fields = append(fields, textField(f, "Password", "password", "password", true))
	}
	fields = append(fields, checkboxField(f, "Administrator", "is_admin"))
	if !add {
		fields = append(fields,
			checkboxField(f, "Valid", "is_valid"),
			checkboxField(f, "Blocked", "is_blocked"),
		)
	}
	return Layout(p, postForm(p, action, "Submit", fields...))
}

// AssignForm lets an admin pick a group and a role for u.
func AssignForm(p Page, u *domain.User, f FormData, groups []*domain.Group, roles []*domain.Role) Node {
	p.Title = "Assign Group and Role"
	gs := make([]choice, 0, len(groups))
	for _, g := range groups {
		gs = append(gs, choice{ID: g.ID, Name: g.Name})
	}
	rs := make([]choice, 0, len(roles))
	for _, r := range roles {
		rs = append(rs, choice{ID: r.ID, Name: r.Name})
	}
	return Layout(p,
		P(Text("Select a group and role for "), Strong(Text(u.Name)), Text(".")),
		postForm(p, idPath("/admin/users/assign/", u.ID), "Submit",
			selectField(f, "Group", "group_id", gs),
			selectField(f, "Role", "role_id", rs),
		),
	)
}
