package view

import (
	"net/url"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func SignUp(p Page, f FormData) Node {
	p.Title = "Sign up"
	return Layout(p,
		postForm(p, "/signup", "Sign up",
			textField(f, "Email", "email", "email", true),
			textField(f, "Username", "name", "text", true),
			textField(f, "First name", "first_name", "text", false),
			textField(f, "Last name", "last_name", "text", false),
			textField(f, "Password", "password", "password", true),
			textField(f, "Confirm password", "confirm_password", "password", true),
		),
		P(Text("Already have an account? "), A(Href("/signin"), Text("Sign in"))),
	)
}

// SignIn renders the sign-in form. next is echoed back so the user lands on
// the page that required authentication.
func SignIn(p Page, f FormData, next string) Node {
	p.Title = "Sign in"
	action := "/signin"
	if next != "" {
		action += "?" + url.Values{"next": {next}}.Encode()
	}
	return Layout(p,
		postForm(p, action, "Sign in",
			textField(f, "Email", "email", "email", true),
			textField(f, "Password", "password", "password", true),
		),
		P(Text("No account yet? "), A(Href("/signup"), Text("Sign up"))),
	)
}
