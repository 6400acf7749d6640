// Package reminders persists reminder definitions as pages in a reminders
// database and registers their triggers with the external scheduler. At
// trigger time the scheduler calls back into the service, which writes the
// reminder content onto the page and flips its status.
package reminders

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	yaml "gopkg.in/yaml.v2"

	"github.com/notework/timekeeper/internal/pkg/infrastructure/scheduler"
	"github.com/notework/timekeeper/pkg/notion/client"
	"github.com/notework/timekeeper/pkg/notion/errors"
	"github.com/notework/timekeeper/pkg/notion/properties"
	"github.com/notework/timekeeper/pkg/notion/query"
)

const (
	titleColumn   = "name"
	jobIDColumn   = "job_id"
	statusColumn  = "reminder_status"
	nextRunColumn = "next_run_time"
	notifyColumn  = "notification"
)

const (
	StatusAwaiting  = "awaiting"
	StatusComplete  = "complete"
	StatusCancelled = "cancelled"
)

// missed triggers older than this are dropped by the scheduler
const misfireGraceSeconds = 60

type Config struct {
	Database    string `yaml:"database"`
	DefaultUser string `yaml:"default_user"`
	CallbackURL string `yaml:"callback_url"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	wrapper := struct {
		Reminders Config `yaml:"reminders"`
	}{}

	if err = yaml.Unmarshal(buf, &wrapper); err != nil {
		return nil, err
	}

	cfg := wrapper.Reminders
	if cfg.Database == "" || cfg.DefaultUser == "" || cfg.CallbackURL == "" {
		return nil, fmt.Errorf("configuration must name the reminders database, a default user and a callback url")
	}

	return &cfg, nil
}

type Reminder struct {
	PageID  string
	JobID   string
	Message string
	RunAt   time.Time
	URL     string
}

type ReminderService interface {
	Schedule(ctx context.Context, message string, runAt time.Time) (*Reminder, error)
	ScheduleRecurring(ctx context.Context, message, cronSpec string) (*Reminder, error)
	Cancel(ctx context.Context, jobID string) error
	Pause(ctx context.Context, jobID string) error
	Resume(ctx context.Context, jobID string) error

	Deliver(ctx context.Context, jobID string) error
}

type reminderSvc struct {
	client   client.NotionClient
	jobs     scheduler.SchedulerClient
	database *client.DatabaseHandle
	cfg      *Config
}

func New(c client.NotionClient, jobs scheduler.SchedulerClient, cfg *Config) (ReminderService, error) {
	database, err := c.Database(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("reminders database: %w", err)
	}

	return &reminderSvc{
		client:   c,
		jobs:     jobs,
		database: database,
		cfg:      cfg,
	}, nil
}

func (s *reminderSvc) Schedule(ctx context.Context, message string, runAt time.Time) (*Reminder, error) {
	return s.schedule(ctx, scheduler.Job{Name: message, RunAt: runAt})
}

func (s *reminderSvc) ScheduleRecurring(ctx context.Context, message, cronSpec string) (*Reminder, error) {
	return s.schedule(ctx, scheduler.Job{Name: message, CronSpec: cronSpec})
}

// schedule registers the trigger first and creates the page second, so a
// page always refers to a job that exists. The job id is generated here to
// have the callback route known before registration.
func (s *reminderSvc) schedule(ctx context.Context, job scheduler.Job) (*Reminder, error) {
	job.ID = uuid.New().String()
	job.Callback = s.cfg.CallbackURL + "/api/v1/jobs/" + job.ID + "/deliver"
	job.MisfireGraceTime = misfireGraceSeconds

	accepted, err := s.jobs.AddJob(ctx, job)
	if err != nil {
		return nil, err
	}

	result, err := s.client.CreatePageWithTitle(ctx, properties.DatabaseParent(s.database.ID()), job.Name)
	if err != nil {
		return nil, err
	}

	props, err := properties.NewProperties(
		properties.NewRichTextValue(properties.Text(accepted.ID), properties.Named(jobIDColumn)),
		properties.NewStatusValue(properties.Option{Name: StatusAwaiting}, properties.Named(statusColumn)),
		properties.NewDateValueFromTime(accepted.RunAt, nil, properties.Named(nextRunColumn)),
	)
	if err != nil {
		return nil, err
	}

	page, err := s.client.Page(result.PageID())
	if err != nil {
		return nil, err
	}

	if _, err = page.Update(ctx, props); err != nil {
		return nil, err
	}

	return &Reminder{
		PageID:  result.PageID(),
		JobID:   accepted.ID,
		Message: job.Name,
		RunAt:   accepted.RunAt,
		URL:     result.URL(),
	}, nil
}

func (s *reminderSvc) Cancel(ctx context.Context, jobID string) error {
	if err := s.jobs.RemoveJob(ctx, jobID); err != nil {
		return err
	}

	pageID, _, err := s.findByJobID(ctx, jobID)
	if err != nil {
		return err
	}

	return s.setStatus(ctx, pageID, StatusCancelled)
}

func (s *reminderSvc) Pause(ctx context.Context, jobID string) error {
	return s.jobs.PauseJob(ctx, jobID)
}

func (s *reminderSvc) Resume(ctx context.Context, jobID string) error {
	return s.jobs.ResumeJob(ctx, jobID)
}

// Deliver writes the reminder onto its page: a mention of the recipient with
// a timestamp, the message below it and a trailing divider. Setting the
// people column is what triggers the workspace notification.
func (s *reminderSvc) Deliver(ctx context.Context, jobID string) error {
	pageID, message, err := s.findByJobID(ctx, jobID)
	if err != nil {
		return err
	}

	stamp := properties.Annotations{Code: true, Bold: true, Color: properties.ColorPurple}
	dateStamp := properties.Annotations{Code: true, Bold: true, Color: properties.ColorPurple.Background()}

	children := properties.NewChildren(
		properties.NewInlineParagraphBlock(
			properties.MentionUser(properties.NewUser(s.cfg.DefaultUser)).Annotated(stamp),
			properties.NewRichText(" - "),
			properties.MentionDate(time.Now().Format(properties.Timestamp), "").Annotated(dateStamp),
			properties.NewRichText(":"),
		),
		properties.NewParagraphBlock(properties.Text(message)),
		properties.NewDividerBlock(),
	)

	block, err := s.client.Block(pageID)
	if err != nil {
		return err
	}

	if _, err = block.AppendChildren(ctx, children); err != nil {
		return err
	}

	props, err := properties.NewProperties(
		properties.NewStatusValue(properties.Option{Name: StatusComplete}, properties.Named(statusColumn)),
		properties.NewPeopleValue([]properties.User{properties.NewUser(s.cfg.DefaultUser)}, properties.Named(notifyColumn)),
	)
	if err != nil {
		return err
	}

	page, err := s.client.Page(pageID)
	if err != nil {
		return err
	}

	_, err = page.Update(ctx, props)
	return err
}

func (s *reminderSvc) findByJobID(ctx context.Context, jobID string) (pageID, message string, err error) {
	page, err := s.database.QueryPage(ctx, "",
		query.Where(query.RichText(jobIDColumn, query.TextEquals(jobID))),
		nil,
	)
	if err != nil {
		return "", "", err
	}

	if len(page.Entries) == 0 {
		return "", "", errors.NewNotFoundError(fmt.Sprintf("no reminder page for job %s", jobID))
	}

	entry := page.Entries[0]
	message, _ = entry.PropertyString(titleColumn, "title", 0, "text", "content")

	return entry.ID(), message, nil
}

func (s *reminderSvc) setStatus(ctx context.Context, pageID, status string) error {
	props, err := properties.NewProperties(
		properties.NewStatusValue(properties.Option{Name: status}, properties.Named(statusColumn)),
	)
	if err != nil {
		return err
	}

	page, err := s.client.Page(pageID)
	if err != nil {
		return err
	}

	_, err = page.Update(ctx, props)
	return err
}
