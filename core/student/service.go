package student

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/elevezen/elevezen/core"
)

var (
	// errors
	ErrNotFound      = errors.New("student not found")
	ErrGradeNotFound = errors.New("grade not found")
)

type (
	Repository interface {
		CreateStudent(st Student) (Student, error)
		// QueryAllStudents returns students ordered per `ordering`,
		// newest first by default.
		QueryAllStudents(ordering ...core.DBOrdering) ([]Student, error)
		GetStudentByID(id string) (Student, error)
		// UpdateStudent only saves set fields; Age is updated when non-nil.
		UpdateStudent(st Student, age *int) (Student, error)
		DeleteStudent(id string) error

		CreateGrade(g Grade) (Grade, error)
		QueryGradesByStudentID(studentID string) ([]Grade, error)
		DeleteGrade(studentID, gradeID string) error

		CreateComment(c Comment) (Comment, error)
		QueryCommentsByStudentID(studentID string) ([]Comment, error)
	}

	Service interface {
		Create(usrID string, ns NewStudent) (Student, error)
		QueryAll(ordering ...core.DBOrdering) ([]Student, error)
		GetByID(id string) (Student, error)
		GetDetail(id string) (Detail, error)
		Update(id string, us UpdateStudent) (Student, error)
		Delete(id string) error
		SetAvatarURL(id, url string) (Student, error)

		AddGrade(studentID string, ng NewGrade) (Grade, error)
		DeleteGrade(studentID, gradeID string) error

		AddComment(studentID string, nc NewComment) (Comment, error)
		Comments(studentID string) ([]Comment, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(usrID string, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	st, err := svc.repo.CreateStudent(Student{
		FirstName: ns.FirstName,
		LastName:  ns.LastName,
		Age:       ns.Age,
		Gender:    ns.Gender,
		Class:     ns.Class,
		UserID:    usrID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Student{}, err
	}

	if ns.Comment != "" {
		if _, err := svc.repo.CreateComment(Comment{
			StudentID: st.ID,
			Content:   ns.Comment,
			CreatedAt: now,
		}); err != nil {
			return Student{}, errors.Wrap(err, "creating initial comment")
		}
	}
	return st, nil
}

func (svc *service) QueryAll(ordering ...core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryAllStudents(ordering...)
}

func (svc *service) GetByID(id string) (Student, error) {
	return svc.repo.GetStudentByID(id)
}

// GetDetail returns the student with grades grouped by subject, the overall
// average and its display color, and all comments.
func (svc *service) GetDetail(id string) (Detail, error) {
	st, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Detail{}, err
	}
	grades, err := svc.repo.QueryGradesByStudentID(id)
	if err != nil {
		return Detail{}, errors.Wrap(err, "querying grades")
	}
	comments, err := svc.repo.QueryCommentsByStudentID(id)
	if err != nil {
		return Detail{}, errors.Wrap(err, "querying comments")
	}

	avg := Average(grades)
	return Detail{
		Student:    st,
		Grades:     GroupBySubject(grades),
		Average:    avg,
		GradeColor: GradeColor(avg),
		Comments:   comments,
	}, nil
}

func (svc *service) Update(id string, us UpdateStudent) (Student, error) {
	st := Student{
		ID:        id,
		FirstName: us.FirstName,
		LastName:  us.LastName,
		Gender:    us.Gender,
		Class:     us.Class,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateStudent(st, us.Age)
}

func (svc *service) Delete(id string) error {
	return svc.repo.DeleteStudent(id)
}

func (svc *service) SetAvatarURL(id, url string) (Student, error) {
	return svc.repo.UpdateStudent(Student{ID: id, AvatarURL: url, UpdatedAt: time.Now().UTC()}, nil)
}

func (svc *service) AddGrade(studentID string, ng NewGrade) (Grade, error) {
	if _, err := svc.repo.GetStudentByID(studentID); err != nil {
		return Grade{}, err
	}
	return svc.repo.CreateGrade(Grade{
		StudentID: studentID,
		Subject:   ng.Subject,
		Value:     ng.Value,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) DeleteGrade(studentID, gradeID string) error {
	return svc.repo.DeleteGrade(studentID, gradeID)
}

func (svc *service) AddComment(studentID string, nc NewComment) (Comment, error) {
	if _, err := svc.repo.GetStudentByID(studentID); err != nil {
		return Comment{}, err
	}
	return svc.repo.CreateComment(Comment{
		StudentID: studentID,
		Subject:   null.NewString(nc.Subject, nc.Subject != ""),
		Content:   nc.Content,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) Comments(studentID string) ([]Comment, error) {
	return svc.repo.QueryCommentsByStudentID(studentID)
}
