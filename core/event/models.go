package event

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campuslink/campuslink/core"
)

// Queryable fields, as stored.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldCategory    = "category"
	FieldAdminEmail  = "adminEmail"
	FieldOrganizedBy = "organizedBy"
)

type Event struct {
	ID          string `json:"id" firestore:"-" bson:"_id"` // document ID
	Name        string `json:"name" firestore:"name" bson:"name"`
	Category    string `json:"category" firestore:"category" bson:"category"`
	About       string `json:"about" firestore:"about" bson:"about"`
	ImageURL    string `json:"imageUrl" firestore:"imageUrl" bson:"imageUrl"`
	InstaID     string `json:"instaId" firestore:"instaId" bson:"instaId"`
	Date        string `json:"date" firestore:"date" bson:"date"`
	Email       string `json:"email" firestore:"email" bson:"email"` // contact
	OrganizedBy string `json:"organizedBy" firestore:"organizedBy" bson:"organizedBy"`
	AdminEmail  string `json:"adminEmail" firestore:"adminEmail" bson:"adminEmail"`
	Views       int64  `json:"views" firestore:"views" bson:"views"`

	// ApprovedByManager is nil until a manager moderates the event.
	ApprovedByManager *bool `json:"approved_by_manager,omitempty" firestore:"approved_by_manager,omitempty" bson:"approved_by_manager,omitempty"`

	// Summary is decoded by the firestore store itself: legacy reports do not fit the struct.
	Summary   *Summary  `json:"event_summary,omitempty" firestore:"-" bson:"event_summary,omitempty"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"` // UTC
}

// Key returns the value of the field favorites are joined on.
func (e Event) Key(field string) string {
	if field == FieldName {
		return e.Name
	}
	return e.ID
}

func (e Event) HasSummary() bool { return e.Summary != nil }

// Summary is the post-event report filed by the event's admin.
type Summary struct {
	Headcount         int      `json:"headcount" firestore:"headcount" bson:"headcount"`
	Winners           []string `json:"winners" firestore:"winners" bson:"winners"`
	WinnersWithPrizes []string `json:"winnersWithPrizes,omitempty" firestore:"winnersWithPrizes,omitempty" bson:"winnersWithPrizes,omitempty"`
	NotableProjects   []string `json:"notableProjects,omitempty" firestore:"notableProjects,omitempty" bson:"notableProjects,omitempty"`
	Workshops         []string `json:"workshops,omitempty" firestore:"workshops,omitempty" bson:"workshops,omitempty"`
	HackathonThemes   []string `json:"hackathonThemes" firestore:"hackathonThemes" bson:"hackathonThemes"`
	InnovativeIdeas   []string `json:"innovativeIdeas,omitempty" firestore:"innovativeIdeas,omitempty" bson:"innovativeIdeas,omitempty"`
	GuestSpeakers     []string `json:"guestSpeakers,omitempty" firestore:"guestSpeakers,omitempty" bson:"guestSpeakers,omitempty"`
	Performances      []string `json:"performances,omitempty" firestore:"performances,omitempty" bson:"performances,omitempty"`
	IssuesFaced       string   `json:"issuesFaced,omitempty" firestore:"issuesFaced,omitempty" bson:"issuesFaced,omitempty"`
	Suggestions       string   `json:"suggestions,omitempty" firestore:"suggestions,omitempty" bson:"suggestions,omitempty"`
	Details           string   `json:"details,omitempty" firestore:"details,omitempty" bson:"details,omitempty"`
}

// NewEvent contains information needed to create a new Event.
type NewEvent struct {
	Name        string `json:"name" form:"name" validate:"required,notblank"`
	Category    string `json:"category" form:"category" validate:"required,notblank"`
	About       string `json:"about" form:"about" validate:"required,notblank"`
	InstaID     string `json:"instaId" form:"instaId" validate:"required,notblank"`
	Date        string `json:"date" form:"date" validate:"required,notblank"`
	Email       string `json:"email" form:"email" validate:"required,email"`
	OrganizedBy string `json:"organizedBy" form:"organizedBy"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	ne.Category = core.CleanString(ne.Category)
	ne.About = core.CleanString(ne.About)
	ne.InstaID = core.CleanString(ne.InstaID)
	ne.Date = core.CleanString(ne.Date)
	ne.Email = core.CleanEmail(ne.Email)
	ne.OrganizedBy = core.CleanString(ne.OrganizedBy)
	return validate.Struct(ne)
}

// UpdateEvent defines what information may be provided to modify an existing Event.
// Blank fields keep their current value.
type UpdateEvent struct {
	Name        string `json:"name" form:"name"`
	Category    string `json:"category" form:"category"`
	About       string `json:"about" form:"about"`
	InstaID     string `json:"instaId" form:"instaId"`
	Date        string `json:"date" form:"date"`
	Email       string `json:"email" form:"email" validate:"omitempty,email"`
	OrganizedBy string `json:"organizedBy" form:"organizedBy"`
}

func (ue *UpdateEvent) Validate(orig Event, validate *validator.Validate) error {
	keep := func(val, origVal string) string {
		if val = core.CleanString(val); val != "" {
			return val
		}
		return origVal
	}
	ue.Name = keep(ue.Name, orig.Name)
	ue.Category = keep(ue.Category, orig.Category)
	ue.About = keep(ue.About, orig.About)
	ue.InstaID = keep(ue.InstaID, orig.InstaID)
	ue.Date = keep(ue.Date, orig.Date)
	ue.Email = keep(core.CleanEmail(ue.Email), orig.Email)
	ue.OrganizedBy = keep(ue.OrganizedBy, orig.OrganizedBy)
	return validate.Struct(ue)
}

// ApprovalForm is a manager's moderation decision.
type ApprovalForm struct {
	Approved *bool `json:"approved" validate:"required"`
}

// SummaryForm is the post-event report as typed by the admin: list fields are comma-separated.
type SummaryForm struct {
	Headcount         int    `json:"headcount" validate:"gt=0"`
	Winners           string `json:"winners" validate:"required,notblank"`
	WinnersWithPrizes string `json:"winnersWithPrizes"`
	NotableProjects   string `json:"notableProjects"`
	Workshops         string `json:"workshops"`
	HackathonThemes   string `json:"hackathonThemes" validate:"required,notblank"`
	InnovativeIdeas   string `json:"innovativeIdeas"`
	GuestSpeakers     string `json:"guestSpeakers"`
	Performances      string `json:"performances"`
	IssuesFaced       string `json:"issuesFaced"`
	Suggestions       string `json:"suggestions"`
	Details           string `json:"details"`
}

func (sf SummaryForm) Validate(validate *validator.Validate) error { return validate.Struct(sf) }

func (sf SummaryForm) Summary() Summary {
	return Summary{
		Headcount:         sf.Headcount,
		Winners:           core.SplitList(sf.Winners),
		WinnersWithPrizes: core.SplitList(sf.WinnersWithPrizes),
		NotableProjects:   core.SplitList(sf.NotableProjects),
		Workshops:         core.SplitList(sf.Workshops),
		HackathonThemes:   core.SplitList(sf.HackathonThemes),
		InnovativeIdeas:   core.SplitList(sf.InnovativeIdeas),
		GuestSpeakers:     core.SplitList(sf.GuestSpeakers),
		Performances:      core.SplitList(sf.Performances),
		IssuesFaced:       core.CleanString(sf.IssuesFaced),
		Suggestions:       core.CleanString(sf.Suggestions),
		Details:           core.CleanString(sf.Details),
	}
}

// QueryFilter applies equality predicates; blank fields are ignored.
type QueryFilter struct {
	Category    string `query:"category"`
	AdminEmail  string `query:"admin_email"`
	OrganizedBy string `query:"organized_by"`
}

func (qf *QueryFilter) Clean() {
	qf.Category = core.CleanString(qf.Category)
	qf.AdminEmail = core.CleanEmail(qf.AdminEmail)
	qf.OrganizedBy = core.CleanString(qf.OrganizedBy)
}

func (qf QueryFilter) IsEmpty() bool {
	return qf.Category == "" && qf.AdminEmail == "" && qf.OrganizedBy == ""
}

// Match reports whether e satisfies every set predicate. Used by stores without native filtering.
func (qf QueryFilter) Match(e Event) bool {
	return (qf.Category == "" || e.Category == qf.Category) &&
		(qf.AdminEmail == "" || e.AdminEmail == qf.AdminEmail) &&
		(qf.OrganizedBy == "" || e.OrganizedBy == qf.OrganizedBy)
}
