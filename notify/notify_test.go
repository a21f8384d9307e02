package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return m.err
}

type userMap map[int]*models.User

func (u userMap) GetByID(_ context.Context, id int) (*models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, errors.New("user not found")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmailNotifier_StatusChanged(t *testing.T) {
	mailer := &recordingMailer{}
	users := userMap{1: {ID: 1, Email: "org@example.com", FirstName: "Ann", LastName: "Lee"}}
	n := NewEmailNotifier(users, mailer, "https://league.example.com/")

	err := n.TournamentStatusChanged(context.Background(), StatusChange{
		TournamentID: 9, TournamentName: "Spring Cup", OrganizerID: 1,
		From: models.StatusDraft, To: models.StatusRegistrationOpen, Automatic: true,
	})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	mail := mailer.sent[0]
	assert.Equal(t, "org@example.com", mail.to)
	assert.Equal(t, "Spring Cup is now registration open", mail.subject)
	assert.Contains(t, mail.body, "Hello Ann Lee")
	assert.Contains(t, mail.body, "according to its schedule")
	assert.Contains(t, mail.body, "https://league.example.com/tournaments/9")
}

func TestEmailNotifier_EscapesNames(t *testing.T) {
	mailer := &recordingMailer{}
	users := userMap{2: {ID: 2, Email: "owner@example.com"}}
	n := NewEmailNotifier(users, mailer, "")

	require.NoError(t, n.TeamApproved(context.Background(), Registration{
		TournamentName: "Cup", TeamName: "<script>x</script>", RecipientID: 2,
	}))
	assert.NotContains(t, mailer.sent[0].body, "<script>")
	assert.Contains(t, mailer.sent[0].body, "Hello owner@example.com")
}

func TestEmailNotifier_UnknownRecipient(t *testing.T) {
	n := NewEmailNotifier(userMap{}, &recordingMailer{}, "")
	err := n.TeamRejected(context.Background(), Registration{RecipientID: 99})
	assert.Error(t, err)
}

type failingNotifier struct {
	err   error
	panic bool
	calls chan string
}

func (f *failingNotifier) fail(ctx context.Context, kind string) error {
	f.calls <- kind
	if f.panic {
		panic("boom")
	}
	// the caller's context is already cancelled; ours must not be
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return f.err
}

func (f *failingNotifier) TournamentStatusChanged(ctx context.Context, _ StatusChange) error {
	return f.fail(ctx, "status")
}
func (f *failingNotifier) TeamRegistrationRequested(ctx context.Context, _ Registration) error {
	return f.fail(ctx, "requested")
}
func (f *failingNotifier) TeamApproved(ctx context.Context, _ Registration) error {
	return f.fail(ctx, "approved")
}
func (f *failingNotifier) TeamRejected(ctx context.Context, _ Registration) error {
	return f.fail(ctx, "rejected")
}

type failureCounter struct {
	mu    sync.Mutex
	kinds []string
}

func (c *failureCounter) NotificationFailed(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kinds = append(c.kinds, kind)
}

func TestBestEffort_FailuresAreCountedNotReturned(t *testing.T) {
	next := &failingNotifier{err: errors.New("smtp down"), calls: make(chan string, 4)}
	counter := &failureCounter{}
	b := NewBestEffort(next, discardLogger(), counter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b.TournamentStatusChanged(ctx, StatusChange{TournamentID: 1})
	b.TeamRegistrationRequested(ctx, Registration{})
	b.TeamApproved(ctx, Registration{})
	b.TeamRejected(ctx, Registration{})
	b.Wait()

	assert.Len(t, next.calls, 4)
	assert.ElementsMatch(t, []string{
		"tournament_status_changed", "team_registration_requested", "team_approved", "team_rejected",
	}, counter.kinds)
}

func TestBestEffort_RecoversPanics(t *testing.T) {
	next := &failingNotifier{panic: true, calls: make(chan string, 1)}
	counter := &failureCounter{}
	b := NewBestEffort(next, discardLogger(), counter).WithTimeout(time.Second)

	assert.NotPanics(t, func() {
		b.TeamApproved(context.Background(), Registration{})
		b.Wait()
	})
	assert.Equal(t, []string{"team_approved"}, counter.kinds)
}

func TestBestEffort_DropsAfterWait(t *testing.T) {
	next := &failingNotifier{calls: make(chan string, 64)}
	counter := &failureCounter{}
	b := NewBestEffort(next, discardLogger(), counter)

	// отправки, идущие одновременно с остановкой, либо доставляются, либо отбрасываются
	var senders sync.WaitGroup
	for i := 0; i < 32; i++ {
		senders.Add(1)
		go func() {
			defer senders.Done()
			b.TeamApproved(context.Background(), Registration{})
		}()
	}
	b.Wait()
	senders.Wait()
	b.Wait()

	delivered := len(next.calls)
	counter.mu.Lock()
	dropped := len(counter.kinds)
	counter.mu.Unlock()
	assert.Equal(t, 32, delivered+dropped)

	b.TeamRejected(context.Background(), Registration{})
	assert.Len(t, next.calls, delivered)
	counter.mu.Lock()
	defer counter.mu.Unlock()
	assert.Equal(t, "team_rejected", counter.kinds[len(counter.kinds)-1])
}

type fakeSES struct {
	input *sesv2.SendEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	return &sesv2.SendEmailOutput{}, nil
}

func TestSESMailer_SendsHTML(t *testing.T) {
	api := &fakeSES{}
	m := &SESMailer{client: api, sender: "league@example.com"}

	require.NoError(t, m.Send(context.Background(), "a@example.com", "Hi", "<p>x</p>"))
	require.NotNil(t, api.input)
	assert.Equal(t, []string{"a@example.com"}, api.input.Destination.ToAddresses)
	assert.Equal(t, "league@example.com", *api.input.FromEmailAddress)
	assert.Equal(t, "<p>x</p>", *api.input.Content.Simple.Body.Html.Data)

	assert.Error(t, m.Send(context.Background(), "", "Hi", "x"))
}

func TestBuildMIME(t *testing.T) {
	msg := string(buildMIME("from@x", "to@x", "Subj", "<b>hi</b>"))
	assert.Contains(t, msg, "Subject: Subj\r\n")
	assert.Contains(t, msg, "Content-Type: text/html")
	assert.Contains(t, msg, "\r\n\r\n<b>hi</b>")
}
