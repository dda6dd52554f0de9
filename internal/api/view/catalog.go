package view

import (
	"net/url"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

func rowActions(base string, id int64) Node {
	return Td(
		A(Href(idPath(base+"/edit/", id)), Text("Edit")),
		Text(" "),
		A(Href(idPath(base+"/delete/", id)), Text("Delete")),
	)
}

// targetLink links http and https targets; anything else is shown as text.
func targetLink(target string) Node {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Text(target)
	}
	return A(Href(target), Rel("noopener"), Text(target))
}

func listPage(p Page, addHref, addLabel string, body Node) Node {
	return Layout(p,
		P(A(Href(addHref), Class("add"), Text(addLabel))),
		body,
	)
}

func GroupList(p Page, groups []*domain.Group) Node {
	p.Title = "Groups"
	rows := make([]Node, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, Tr(Td(Text(g.Name)), Td(Text(g.Description)), rowActions("/admin/groups", g.ID)))
	}
	return listPage(p, "/admin/groups/add", "Add group",
		table([]string{"Name", "Description", ""}, rows, "No groups have been added."))
}

func RoleList(p Page, roles []*domain.Role) Node {
	p.Title = "Roles"
	rows := make([]Node, 0, len(roles))
	for _, r := range roles {
		rows = append(rows, Tr(Td(Text(r.Name)), Td(Text(r.Description)), rowActions("/admin/roles", r.ID)))
	}
	return listPage(p, "/admin/roles/add", "Add role",
		table([]string{"Name", "Description", ""}, rows, "No roles have been added."))
}

func ToolList(p Page, tools []*domain.Tool) Node {
	p.Title = "Tools"
	rows := make([]Node, 0, len(tools))
	for _, t := range tools {
		rows = append(rows, Tr(
			Td(Text(t.Name)),
			Td(Text(t.Description)),
			Td(targetLink(t.Target)),
			rowActions("/admin/tools", t.ID),
		))
	}
	return listPage(p, "/admin/tools/add", "Add tool",
		table([]string{"Name", "Description", "Target", ""}, rows, "No tools have been added."))
}

// CatalogForm renders the add/edit form shared by groups, roles and tools.
// The target field is shown for tools only.
func CatalogForm(p Page, action string, f FormData, withTarget bool) Node {
	fields := []Node{
		textField(f, "Name", "name", "text", true),
		textField(f, "Description", "description", "text", true),
	}
	if withTarget {
		fields = append(fields, textField(f, "Target", "target", "text", true))
	}
	return Layout(p, postForm(p, action, "Submit", fields...))
}

// ConfirmDelete asks for confirmation before a delete is posted.
func ConfirmDelete(p Page, entity, name, action, cancel string) Node {
	p.Title = "Delete " + entity
	return Layout(p,
		P(Text("Are you sure you want to delete the "+entity+" "), Strong(Text(name)), Text("?")),
		postForm(p, action, "Delete"),
		P(A(Href(cancel), Text("Cancel"))),
	)
}
