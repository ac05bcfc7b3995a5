package mailer

import (
	"bytes"
	"html/template"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<p>Hi {{.Name}}, welcome aboard!</p>
<p>Your TaskHive account is ready.</p>
`))

var inviteTmpl = template.Must(template.New("invite").Parse(`
<p>You have been invited to join the team <strong>{{.TeamName}}</strong> as {{.Role}}.</p>
<p>Use this token to accept the invite: <code>{{.Token}}</code></p>
`))

type WelcomeData struct {
	Name string
}

type InviteData struct {
	TeamName string
	Role     string
	Token    string
}

func RenderWelcome(data WelcomeData) (string, error) {
	var body bytes.Buffer
	if err := welcomeTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

func RenderInvite(data InviteData) (string, error) {
	var body bytes.Buffer
	if err := inviteTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}
