package inmemdb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/elevezen/elevezen/core"
	"github.com/elevezen/elevezen/core/student"
)

type studentRepository struct {
	db *studentTable
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) CreateStudent(st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	st.ID = uuid.New().String()
	repo.db.students[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) QueryAllStudents(ordering ...core.DBOrdering) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0, len(repo.db.students))
	for _, st := range repo.db.students {
		students = append(students, *st)
	}

	// newest first by default
	sort.Slice(students, func(i, j int) bool { return students[i].CreatedAt.After(students[j].CreatedAt) })
	if len(ordering) > 0 {
		sortStudents(students, ordering[0])
	}
	return students, nil
}

func sortStudents(students []student.Student, ord core.DBOrdering) {
	var less func(a, b student.Student) bool
	switch ord.Field {
	case "first_name":
		less = func(a, b student.Student) bool { return a.FirstName < b.FirstName }
	case "last_name":
		less = func(a, b student.Student) bool { return a.LastName < b.LastName }
	case "age":
		less = func(a, b student.Student) bool { return a.Age < b.Age }
	case "class":
		less = func(a, b student.Student) bool { return a.Class < b.Class }
	case "created_at":
		less = func(a, b student.Student) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return
	}
	sort.SliceStable(students, func(i, j int) bool {
		if ord.Ascending {
			return less(students[i], students[j])
		}
		return less(students[j], students[i])
	})
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if st, ok := repo.db.students[id]; ok {
		return *st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(st student.Student, age *int) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	origSt, ok := repo.db.students[st.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if st.FirstName != "" {
		origSt.FirstName = st.FirstName
	}
	if st.LastName != "" {
		origSt.LastName = st.LastName
	}
	if age != nil {
		origSt.Age = *age
	}
	if st.Gender != "" {
		origSt.Gender = st.Gender
	}
	if st.Class != "" {
		origSt.Class = st.Class
	}
	if st.AvatarURL != "" {
		origSt.AvatarURL = st.AvatarURL
	}
	if !st.UpdatedAt.IsZero() {
		origSt.UpdatedAt = st.UpdatedAt
	}

	repo.db.students[st.ID] = origSt
	return *origSt, nil
}

func (repo *studentRepository) DeleteStudent(id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.students, id)
	for gid, g := range repo.db.grades {
		if g.StudentID == id {
			delete(repo.db.grades, gid)
		}
	}
	for cid, c := range repo.db.comments {
		if c.StudentID == id {
			delete(repo.db.comments, cid)
		}
	}
	return nil
}

func (repo *studentRepository) CreateGrade(g student.Grade) (student.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	g.ID = uuid.New().String()
	repo.db.grades[g.ID] = &g
	return g, nil
}

func (repo *studentRepository) QueryGradesByStudentID(studentID string) ([]student.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	grades := make([]student.Grade, 0)
	for _, g := range repo.db.grades {
		if g.StudentID == studentID {
			grades = append(grades, *g)
		}
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].CreatedAt.Before(grades[j].CreatedAt) })
	return grades, nil
}

func (repo *studentRepository) DeleteGrade(studentID, gradeID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if g, ok := repo.db.grades[gradeID]; ok && g.StudentID == studentID {
		delete(repo.db.grades, gradeID)
		return nil
	}
	return student.ErrGradeNotFound
}

func (repo *studentRepository) CreateComment(c student.Comment) (student.Comment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c.ID = uuid.New().String()
	repo.db.comments[c.ID] = &c
	return c, nil
}

func (repo *studentRepository) QueryCommentsByStudentID(studentID string) ([]student.Comment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	comments := make([]student.Comment, 0)
	for _, c := range repo.db.comments {
		if c.StudentID == studentID {
			comments = append(comments, *c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}
