// Package view renders the HTML pages of the application with gomponents.
package view

import (
	"strconv"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

// CSRFField is the form field carrying the CSRF token.
const CSRFField = "csrf_token"

// Page holds what every page needs besides its own content.
type Page struct {
	Title   string
	User    *domain.User
	Flashes []string
	CSRF    string
}

// FormData is the submitted (or pre-populated) state of a form together with
// per-field validation messages.
type FormData struct {
	Values map[string]string
	Errors map[string]string
}

func (f FormData) Value(name string) string {
	return f.Values[name]
}

func (f FormData) Checked(name string) bool {
	switch f.Values[name] {
	case "y", "on", "true", "1":
		return true
	}
	return false
}

type navItem struct {
	Label string
	Href  string
}

var adminNav = []navItem{
	{Label: "Dashboard", Href: "/admin/home"},
	{Label: "Groups", Href: "/admin/groups"},
	{Label: "Roles", Href: "/admin/roles"},
	{Label: "Tools", Href: "/admin/tools"},
	{Label: "Users", Href: "/admin/users"},
}

func navigation(u *domain.User) Node {
	var items []navItem
	switch {
	case u == nil:
		items = []navItem{{Label: "Home", Href: "/"}, {Label: "Sign up", Href: "/signup"}, {Label: "Sign in", Href: "/signin"}}
	case u.IsAdmin:
		items = append(items, adminNav...)
		items = append(items, navItem{Label: "Sign out", Href: "/signout"})
	default:
		items = []navItem{{Label: "Home", Href: "/home"}, {Label: "Sign out", Href: "/signout"}}
	}

	links := make([]Node, 0, len(items)+1)
	for _, item := range items {
		links = append(links, Li(A(Href(item.Href), Text(item.Label))))
	}
	if u != nil {
		links = append(links, Li(Class("nav-user"), Text("Hi, "+u.Name+"!")))
	}
	return Nav(Ul(Group(links)))
}

func flashes(msgs []string) Node {
	if len(msgs) == 0 {
		return nil
	}
	items := make([]Node, 0, len(msgs))
	for _, msg := range msgs {
		items = append(items, Li(Text(msg)))
	}
	return Ul(Class("flashes"), Role("alert"), Group(items))
}

// Layout wraps body in the common document shell.
func Layout(p Page, body ...Node) Node {
	return Doctype(HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(p.Title+" | Toolbox")),
		),
		Body(
			Header(navigation(p.User)),
			Main(
				flashes(p.Flashes),
				H1(Text(p.Title)),
				Group(body),
			),
		),
	))
}

func csrfInput(token string) Node {
	if token == "" {
		return nil
	}
	return Input(Type("hidden"), Name(CSRFField), Value(token))
}

// postForm renders a POST form with the CSRF token and a submit button.
func postForm(p Page, action, submit string, fields ...Node) Node {
	return Form(
		Method("post"),
		Action(action),
		csrfInput(p.CSRF),
		Group(fields),
		Div(Class("form-actions"), Button(Type("submit"), Text(submit))),
	)
}

func fieldError(f FormData, name string) Node {
	msg, ok := f.Errors[name]
	if !ok {
		return nil
	}
	return Span(Class("field-error"), Text(msg))
}

func textField(f FormData, label, name, typ string, required bool) Node {
	attrs := []Node{Type(typ), ID(name), Name(name)}
	if typ != "password" {
		attrs = append(attrs, Value(f.Value(name)))
	}
	if required {
		attrs = append(attrs, Required())
	}
	return Div(
		Class("field"),
		Label(For(name), Text(label)),
		Input(attrs...),
		fieldError(f, name),
	)
}

func checkboxField(f FormData, label, name string) Node {
	attrs := []Node{Type("checkbox"), ID(name), Name(name), Value("true")}
	if f.Checked(name) {
		attrs = append(attrs, Checked())
	}
	return Div(
		Class("field"),
		Input(attrs...),
		Label(For(name), Text(label)),
		fieldError(f, name),
	)
}

type choice struct {
	ID   int64
	Name string
}

// selectField renders a select with a leading "none" option.
func selectField(f FormData, label, name string, choices []choice) Node {
	selected := f.Value(name)
	opts := []Node{Option(Value(""), Text("None"))}
	for _, ch := range choices {
		v := strconv.FormatInt(ch.ID, 10)
		if v == selected {
			opts = append(opts, Option(Value(v), Selected(), Text(ch.Name)))
		} else {
			opts = append(opts, Option(Value(v), Text(ch.Name)))
		}
	}
	return Div(
		Class("field"),
		Label(For(name), Text(label)),
		Select(ID(name), Name(name), Group(opts)),
		fieldError(f, name),
	)
}

func table(headers []string, rows []Node, empty string) Node {
	if len(rows) == 0 {
		return P(Class("empty"), Text(empty))
	}
	ths := make([]Node, 0, len(headers))
	for _, h := range headers {
		ths = append(ths, Th(Text(h)))
	}
	return Table(THead(Tr(Group(ths))), TBody(Group(rows)))
}

func idPath(base string, id int64) string {
	return base + strconv.FormatInt(id, 10)
}
