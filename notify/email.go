package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/Dosada05/league-system/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// UserLookup resolves a recipient's address.
type UserLookup interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// EmailNotifier renders notifications as HTML emails and hands them to a Mailer.
type EmailNotifier struct {
	users     UserLookup
	mailer    Mailer
	publicURL string
}

func NewEmailNotifier(users UserLookup, mailer Mailer, publicURL string) *EmailNotifier {
	return &EmailNotifier{users: users, mailer: mailer, publicURL: strings.TrimRight(publicURL, "/")}
}

type emailData struct {
	Recipient      string
	TournamentName string
	TeamName       string
	From           string
	To             string
	Automatic      bool
	Link           string
}

func (n *EmailNotifier) TournamentStatusChanged(ctx context.Context, msg StatusChange) error {
	data := emailData{
		TournamentName: msg.TournamentName,
		From:           humanStatus(msg.From),
		To:             humanStatus(msg.To),
		Automatic:      msg.Automatic,
		Link:           n.tournamentLink(msg.TournamentID),
	}
	subject := fmt.Sprintf("%s is now %s", msg.TournamentName, data.To)
	return n.send(ctx, msg.OrganizerID, subject, "status_changed.html", data)
}

func (n *EmailNotifier) TeamRegistrationRequested(ctx context.Context, msg Registration) error {
	subject := fmt.Sprintf("New registration for %s", msg.TournamentName)
	return n.send(ctx, msg.RecipientID, subject, "registration_requested.html", n.registrationData(msg))
}

func (n *EmailNotifier) TeamApproved(ctx context.Context, msg Registration) error {
	subject := fmt.Sprintf("%s approved for %s", msg.TeamName, msg.TournamentName)
	return n.send(ctx, msg.RecipientID, subject, "team_approved.html", n.registrationData(msg))
}

func (n *EmailNotifier) TeamRejected(ctx context.Context, msg Registration) error {
	subject := fmt.Sprintf("%s registration for %s declined", msg.TeamName, msg.TournamentName)
	return n.send(ctx, msg.RecipientID, subject, "team_rejected.html", n.registrationData(msg))
}

func (n *EmailNotifier) registrationData(msg Registration) emailData {
	return emailData{
		TournamentName: msg.TournamentName,
		TeamName:       msg.TeamName,
		Link:           n.tournamentLink(msg.TournamentID),
	}
}

func (n *EmailNotifier) send(ctx context.Context, userID int, subject, tmpl string, data emailData) error {
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup recipient %d: %w", userID, err)
	}
	data.Recipient = user.DisplayName()

	body, err := render(tmpl, data)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, user.Email, subject, body)
}

func (n *EmailNotifier) tournamentLink(id int) string {
	if n.publicURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/tournaments/%d", n.publicURL, id)
}

func render(name string, data emailData) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return body.String(), nil
}

func humanStatus(s models.TournamentStatus) string {
	return strings.ReplaceAll(string(s), "_", " ")
}
