package application

import (
	"context"
	"net/mail"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/event"
)

var (
	// errors
	ErrNotFound       = errors.New("application not found")
	ErrAlreadyApplied = errors.New("you have already applied to this event")
	ErrCannotWithdraw = errors.New("only pending applications can be withdrawn")
	ErrStatusFinal    = errors.New("rejected applications cannot be changed")
)

const statusMailTemplate = "application_status"

func init() {
	core.MustRegisterEmailTemplate(
		statusMailTemplate,
		`Hello,

Your application to "{{.EventName}}" has been {{.Status}}.
`,
		`<p>Hello,</p>
<p>Your application to <strong>{{.EventName}}</strong> has been {{.Status}}.</p>`,
	)
}

type (
	Repository interface {
		// CreateApplication returns ErrAlreadyApplied when the key is taken.
		CreateApplication(ctx context.Context, app Application) (Application, error)
		GetApplication(ctx context.Context, id string) (Application, error)
		QueryApplicationsByUser(ctx context.Context, email string) ([]Application, error)
		// QueryApplicationsIn is a membership query: applications whose field is one of values.
		// Stores reject more than core.MaxInQueryValues values with core.ErrTooManyValues.
		QueryApplicationsIn(ctx context.Context, field string, values []string) ([]Application, error)
		UpdateApplicationStatus(ctx context.Context, id string, status Status, updatedAt time.Time) (Application, error)
		DeleteApplication(ctx context.Context, id string) error
	}

	// EventStore is the part of the event collection applications depend on.
	EventStore interface {
		GetEvent(ctx context.Context, id string) (event.Event, error)
		QueryEvents(ctx context.Context, filter event.QueryFilter) ([]event.Event, error)
	}

	Service struct {
		repo     Repository
		events   EventStore
		mailSvc  core.EmailService
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	events EventStore,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		events:   events,
		mailSvc:  mailSvc,
		validate: validate,
		logger:   logger,
	}
}

// Apply creates a pending application of p to the event.
func (svc *Service) Apply(ctx context.Context, p core.Principal, eventID string) (Application, error) {
	email, err := p.Key()
	if err != nil {
		return Application{}, err
	}
	e, err := svc.events.GetEvent(ctx, core.CleanString(eventID))
	if err != nil {
		return Application{}, err
	}

	now := time.Now().UTC()
	app, err := svc.repo.CreateApplication(ctx, Application{
		ID:        Key(email, e.ID),
		EventID:   e.ID,
		EventName: e.Name,
		UserEmail: email,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyApplied {
			return Application{}, core.NewValidationError(ErrAlreadyApplied)
		}
		return Application{}, errors.Wrap(err, "creating application")
	}
	return app, nil
}

// Withdraw deletes the application of p to the event, as long as it is still pending.
func (svc *Service) Withdraw(ctx context.Context, p core.Principal, eventID string) error {
	email, err := p.Key()
	if err != nil {
		return err
	}
	app, err := svc.repo.GetApplication(ctx, Key(email, core.CleanString(eventID)))
	if err != nil {
		return err
	}
	if app.Status != StatusPending {
		return core.NewValidationError(ErrCannotWithdraw)
	}
	return errors.Wrap(svc.repo.DeleteApplication(ctx, app.ID), "deleting application")
}

// ListMine returns the applications of p, newest first.
func (svc *Service) ListMine(ctx context.Context, p core.Principal) ([]Application, error) {
	email, err := p.Key()
	if err != nil {
		return nil, err
	}
	apps, err := svc.repo.QueryApplicationsByUser(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "querying applications")
	}
	sortNewestFirst(apps)
	return apps, nil
}

// ListManaged returns the applications to the events p administers, newest first.
// A blank status lists every application but the rejected ones.
func (svc *Service) ListManaged(ctx context.Context, p core.Principal, status Status) ([]Application, error) {
	email, err := p.Key()
	if err != nil {
		return nil, err
	}
	if status != "" && !status.IsValid() {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid status"})
	}

	events, err := svc.events.QueryEvents(ctx, event.QueryFilter{AdminEmail: email})
	if err != nil {
		return nil, errors.Wrap(err, "querying managed events")
	}
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}

	apps := make([]Application, 0)
	for _, batch := range core.Chunk(ids, core.MaxInQueryValues) {
		batchApps, err := svc.repo.QueryApplicationsIn(ctx, FieldEventID, batch)
		if err != nil {
			return nil, errors.Wrap(err, "querying applications")
		}
		for _, app := range batchApps {
			if (status == "" && app.Status != StatusRejected) || app.Status == status {
				apps = append(apps, app)
			}
		}
	}
	sortNewestFirst(apps)
	return apps, nil
}

// SetStatus records the decision of the event's admin on an application and notifies the applicant.
func (svc *Service) SetStatus(ctx context.Context, p core.Principal, id string, su StatusUpdate) (Application, error) {
	if err := svc.validate.Struct(su); err != nil {
		return Application{}, err
	}

	app, err := svc.repo.GetApplication(ctx, core.CleanString(id))
	if err != nil {
		return Application{}, err
	}
	e, err := svc.events.GetEvent(ctx, app.EventID)
	if err != nil {
		return Application{}, errors.Wrap(err, "getting application event")
	}
	if !p.Owns(e.AdminEmail) {
		return Application{}, core.ErrForbidden
	}
	if app.Status == su.Status {
		return app, nil
	}
	if app.Status == StatusRejected {
		return Application{}, core.NewValidationError(ErrStatusFinal)
	}

	app, err = svc.repo.UpdateApplicationStatus(ctx, app.ID, su.Status, time.Now().UTC())
	if err != nil {
		return Application{}, errors.Wrap(err, "updating application status")
	}
	svc.sendStatusMail(app)
	return app, nil
}

func (svc *Service) sendStatusMail(app Application) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: app.UserEmail}},
		Subject:      "Application " + string(app.Status),
		TemplateName: statusMailTemplate,
		TemplateData: map[string]interface{}{
			"EventName": app.EventName,
			"Status":    string(app.Status),
		},
	})
}

func sortNewestFirst(apps []Application) {
	sort.SliceStable(apps, func(i, j int) bool { return apps[i].CreatedAt.After(apps[j].CreatedAt) })
}
