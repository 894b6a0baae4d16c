package student

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/elevezen/elevezen/core"
)

// Subjects
const (
	SubjectJavaScript = "javascript"
	SubjectLinux      = "linux"
	SubjectDocker     = "docker"
	SubjectJQuery     = "jquery"
	SubjectBootstrap  = "bootstrap"
)

var Subjects = []string{SubjectJavaScript, SubjectLinux, SubjectDocker, SubjectJQuery, SubjectBootstrap}

// Genders & classes as captured on the enrollment form.
const (
	GenderMale   = "Masculin"
	GenderFemale = "Féminin"

	Class1 = "Classe 1"
	Class2 = "Classe 2"
)

// Grade color buckets, derived from the 0-20 average.
const (
	GradeExcellent = "excellent"
	GradeGood      = "good"
	GradePoor      = "poor"
)

type Student struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	Class     string    `json:"class"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	UserID    string    `json:"-"` // creating user
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type Grade struct {
	ID        string    `json:"id"`
	StudentID string    `json:"-"`
	Subject   string    `json:"subject"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Comment struct {
	ID        string      `json:"id"`
	StudentID string      `json:"-"`
	Subject   null.String `json:"subject,omitempty"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"` // UTC
}

// Detail is a student with their grades rolled up for display.
type Detail struct {
	Student
	Grades     map[string][]Grade `json:"grades"`
	Average    float64            `json:"average"`
	GradeColor string             `json:"grade_color"`
	Comments   []Comment          `json:"comments"`
}

// Average computes the overall average across all subjects; 0 when no grade
// has been recorded yet.
func Average(grades []Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += g.Value
	}
	return sum / float64(len(grades))
}

// GradeColor buckets an average for display.
func GradeColor(average float64) string {
	if average > 10 {
		return GradeExcellent
	}
	if average >= 7 {
		return GradeGood
	}
	return GradePoor
}

// GroupBySubject indexes grades by subject, with every known subject present.
func GroupBySubject(grades []Grade) map[string][]Grade {
	grouped := make(map[string][]Grade, len(Subjects))
	for _, s := range Subjects {
		grouped[s] = []Grade{}
	}
	for _, g := range grades {
		grouped[g.Subject] = append(grouped[g.Subject], g)
	}
	return grouped
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Age       int    `json:"age" validate:"omitempty,gte=0,lte=120"`
	Gender    string `json:"gender" validate:"omitempty,oneof='Masculin' 'Féminin'"`
	Class     string `json:"class" validate:"omitempty,oneof='Classe 1' 'Classe 2'"`
	Comment   string `json:"comment"` // optional initial comment
}

func (ns *NewStudent) Validate() error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Comment = core.CleanString(ns.Comment)
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       *int   `json:"age" validate:"omitempty,gte=0,lte=120"`
	Gender    string `json:"gender" validate:"omitempty,oneof='Masculin' 'Féminin'"`
	Class     string `json:"class" validate:"omitempty,oneof='Classe 1' 'Classe 2'"`
}

func (us *UpdateStudent) Validate(orig Student) error {
	if name := core.CleanString(us.FirstName); name != "" {
		us.FirstName = name
	} else {
		us.FirstName = orig.FirstName
	}
	if name := core.CleanString(us.LastName); name != "" {
		us.LastName = name
	} else {
		us.LastName = orig.LastName
	}
	return core.Validate.Struct(us)
}

// NewGrade records one mark for one subject, on a 0-20 scale.
type NewGrade struct {
	Subject string  `json:"subject" validate:"required,subject"`
	Value   float64 `json:"value" validate:"gte=0,lte=20"`
}

func (ng *NewGrade) Validate() error {
	ng.Subject = core.CleanString(ng.Subject, true /* lower */)
	return core.Validate.Struct(ng)
}

type NewComment struct {
	Content string `json:"content" validate:"required"`
	Subject string `json:"subject" validate:"omitempty,subject"`
}

func (nc *NewComment) Validate() error {
	nc.Content = core.CleanString(nc.Content)
	nc.Subject = core.CleanString(nc.Subject, true /* lower */)
	return core.Validate.Struct(nc)
}
