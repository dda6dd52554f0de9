package view

import (
	"net/http"
	"strconv"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func Welcome(p Page) Node {
	p.Title = "Toolbox"
	var actions Node = P(
		A(Href("/signup"), Text("Sign up")),
		Text(" or "),
		A(Href("/signin"), Text("sign in")),
		Text(" to continue."),
	)
	if p.User != nil {
		home := "/home"
		if p.User.IsAdmin {
			home = "/admin/home"
		}
		actions = P(A(Href(home), Text("Go to your dashboard")))
	}
	return Layout(p,
		P(Text("Manage users, groups, roles and tools from one place.")),
		actions,
	)
}

func Home(p Page) Node {
	p.Title = "Dashboard"
	return Layout(p,
		P(Text("Welcome, "+p.User.FullName()+".")),
		P(Text("You are signed in as "+p.User.Email+".")),
	)
}

func AdminHome(p Page, counts map[string]int) Node {
	p.Title = "Admin Dashboard"
	items := make([]Node, 0, len(adminNav)-1)
	for _, item := range adminNav[1:] {
		label := item.Label
		if n, ok := counts[item.Label]; ok {
			label += " (" + strconv.Itoa(n) + ")"
		}
		items = append(items, Li(A(Href(item.Href), Text(label))))
	}
	return Layout(p,
		P(Text("Welcome, "+p.User.FullName()+". You are an administrator.")),
		Ul(Class("admin-links"), Group(items)),
	)
}

// ErrorPage renders the page shown for HTTP errors.
func ErrorPage(p Page, code int, message string) Node {
	p.Title = strconv.Itoa(code) + " " + http.StatusText(code)
	return Layout(p,
		P(Text(message)),
		P(A(Href("/"), Text("Back to the welcome page"))),
	)
}
