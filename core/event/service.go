package event

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
)

var (
	// errors
	ErrNotFound   = errors.New("event not found")
	ErrNameExists = errors.New("an event with this name already exists")
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, e Event) (Event, error)
		GetEvent(ctx context.Context, id string) (Event, error)
		// EventNameExists reports whether an event other than the excluded IDs uses name.
		EventNameExists(ctx context.Context, name string, excludedIDs ...string) (bool, error)
		// QueryEvents applies AND operation on available QueryFilter fields.
		QueryEvents(ctx context.Context, filter QueryFilter) ([]Event, error)
		// QueryEventsIn is a membership query: events whose field is one of values.
		// Stores reject more than core.MaxInQueryValues values with core.ErrTooManyValues.
		QueryEventsIn(ctx context.Context, field string, values []string) ([]Event, error)
		UpdateEvent(ctx context.Context, e Event) (Event, error)
		IncrementViews(ctx context.Context, id string) error
		SetEventSummary(ctx context.Context, id string, summary Summary) error
		SetEventApproval(ctx context.Context, id string, approved bool) error
		DeleteEvent(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		blobs    core.BlobStore
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewService(repo Repository, blobs core.BlobStore, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		blobs:    blobs,
		validate: validate,
		logger:   logger,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, name string, excludedIDs ...string) error {
	exists, err := svc.repo.EventNameExists(ctx, name, excludedIDs...)
	if err != nil {
		return errors.Wrap(err, "checking name uniqueness")
	}
	if exists {
		return core.NewValidationError(ErrNameExists, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
	}
	return nil
}

func (svc *Service) uploadImage(ctx context.Context, img *core.Blob) (string, error) {
	prepared, err := prepareImage(*img)
	if err != nil {
		return "", err
	}
	url, err := svc.blobs.Upload(ctx, prepared)
	if err != nil {
		return "", errors.Wrap(err, "uploading image")
	}
	return url, nil
}

// Create validates ne and stores it as a new Event administered by p. img is optional.
func (svc *Service) Create(ctx context.Context, p core.Principal, ne NewEvent, img *core.Blob) (Event, error) {
	adminEmail, err := p.Key()
	if err != nil {
		return Event{}, err
	}
	if err = ne.Validate(svc.validate); err != nil {
		return Event{}, err
	}
	if err = svc.checkUniqueness(ctx, ne.Name); err != nil {
		return Event{}, err
	}

	var imageURL string
	if img != nil {
		if imageURL, err = svc.uploadImage(ctx, img); err != nil {
			return Event{}, err
		}
	}

	now := time.Now().UTC()
	e, err := svc.repo.CreateEvent(ctx, Event{
		Name:        ne.Name,
		Category:    ne.Category,
		About:       ne.About,
		ImageURL:    imageURL,
		InstaID:     ne.InstaID,
		Date:        ne.Date,
		Email:       ne.Email,
		OrganizedBy: ne.OrganizedBy,
		AdminEmail:  adminEmail,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Event{}, errors.Wrap(err, "creating event")
	}
	svc.logger.Info("event created", map[string]interface{}{"id": e.ID, "name": e.Name}, p)
	return e, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEvent(ctx, core.CleanString(id))
}

// View returns the event after counting one more view of it.
func (svc *Service) View(ctx context.Context, id string) (Event, error) {
	id = core.CleanString(id)
	if err := svc.repo.IncrementViews(ctx, id); err != nil {
		return Event{}, err
	}
	return svc.repo.GetEvent(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	filter.Clean()
	return svc.repo.QueryEvents(ctx, filter)
}

// Search returns the events whose name contains text, best matches first.
// A blank text returns every event.
func (svc *Service) Search(ctx context.Context, text string) ([]Event, error) {
	events, err := svc.repo.QueryEvents(ctx, QueryFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	return rank(events, core.CleanString(text)), nil
}

func (svc *Service) getOwned(ctx context.Context, p core.Principal, id string) (Event, error) {
	e, err := svc.repo.GetEvent(ctx, core.CleanString(id))
	if err != nil {
		return Event{}, err
	}
	if !p.Owns(e.AdminEmail) {
		return Event{}, core.ErrForbidden
	}
	return e, nil
}

// Update modifies an event. Only its admin, or a global admin, may do so. img is optional.
func (svc *Service) Update(ctx context.Context, p core.Principal, id string, ue UpdateEvent, img *core.Blob) (Event, error) {
	orig, err := svc.getOwned(ctx, p, id)
	if err != nil {
		return Event{}, err
	}
	if err = ue.Validate(orig, svc.validate); err != nil {
		return Event{}, err
	}
	if ue.Name != orig.Name {
		if err = svc.checkUniqueness(ctx, ue.Name, orig.ID); err != nil {
			return Event{}, err
		}
	}

	e := orig
	if img != nil {
		if e.ImageURL, err = svc.uploadImage(ctx, img); err != nil {
			return Event{}, err
		}
	}
	e.Name = ue.Name
	e.Category = ue.Category
	e.About = ue.About
	e.InstaID = ue.InstaID
	e.Date = ue.Date
	e.Email = ue.Email
	e.OrganizedBy = ue.OrganizedBy
	e.UpdatedAt = time.Now().UTC()

	e, err = svc.repo.UpdateEvent(ctx, e)
	if err != nil {
		return Event{}, errors.Wrap(err, "updating event")
	}
	return e, nil
}

func (svc *Service) Delete(ctx context.Context, p core.Principal, id string) error {
	e, err := svc.getOwned(ctx, p, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteEvent(ctx, e.ID); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	svc.logger.Info("event deleted", map[string]interface{}{"id": e.ID, "name": e.Name}, p)
	return nil
}

// SubmitSummary files the post-event report of an event administered by p.
func (svc *Service) SubmitSummary(ctx context.Context, p core.Principal, id string, form SummaryForm) (Event, error) {
	e, err := svc.getOwned(ctx, p, id)
	if err != nil {
		return Event{}, err
	}
	if err = form.Validate(svc.validate); err != nil {
		return Event{}, err
	}

	summary := form.Summary()
	if err = svc.repo.SetEventSummary(ctx, e.ID, summary); err != nil {
		return Event{}, errors.Wrap(err, "setting event summary")
	}
	e.Summary = &summary
	return e, nil
}

// SetApproval records a manager's moderation decision on an event.
func (svc *Service) SetApproval(ctx context.Context, p core.Principal, id string, form ApprovalForm) (Event, error) {
	if _, err := p.Key(); err != nil {
		return Event{}, err
	}
	if !(p.IsManager() || p.IsAdmin()) {
		return Event{}, core.ErrForbidden
	}
	if err := svc.validate.Struct(form); err != nil {
		return Event{}, err
	}

	e, err := svc.repo.GetEvent(ctx, core.CleanString(id))
	if err != nil {
		return Event{}, err
	}
	if err = svc.repo.SetEventApproval(ctx, e.ID, *form.Approved); err != nil {
		return Event{}, errors.Wrap(err, "setting event approval")
	}
	e.ApprovedByManager = form.Approved
	svc.logger.Info("event moderated", map[string]interface{}{"id": e.ID, "approved": *form.Approved}, p)
	return e, nil
}
