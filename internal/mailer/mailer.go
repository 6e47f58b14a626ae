package mailer

import "embed"

const (
	FromName                  = "Campus"
	maxRetires                = 3
	UserWelcomeTemplate       = "user_invitation.tmpl"
	ApplicationStatusTemplate = "application_status.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
