package sqlxrepos

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/elevezen/elevezen/core"
	"github.com/elevezen/elevezen/core/student"
)

type studentRow struct {
	ID        string    `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Age       int       `db:"age"`
	Gender    string    `db:"gender"`
	Class     string    `db:"class"`
	AvatarURL string    `db:"avatar_url"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r studentRow) toDomain() student.Student {
	return student.Student{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Age:       r.Age,
		Gender:    r.Gender,
		Class:     r.Class,
		AvatarURL: r.AvatarURL,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type gradeRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	Subject   string    `db:"subject"`
	Value     float64   `db:"value"`
	CreatedAt time.Time `db:"created_at"`
}

type commentRow struct {
	ID        string      `db:"id"`
	StudentID string      `db:"student_id"`
	Subject   null.String `db:"subject"`
	Content   string      `db:"content"`
	CreatedAt time.Time   `db:"created_at"`
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CreateStudent(st student.Student) (student.Student, error) {
	st.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO student (id, first_name, last_name, age, gender, class, avatar_url, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		st.ID, st.FirstName, st.LastName, st.Age, st.Gender, st.Class, st.AvatarURL, st.UserID, st.CreatedAt, st.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

// allowed ordering columns; anything else is silently dropped
var studentOrderFields = map[string]bool{
	"first_name": true,
	"last_name":  true,
	"age":        true,
	"class":      true,
	"created_at": true,
}

func (repo studentRepository) QueryAllStudents(ordering ...core.DBOrdering) ([]student.Student, error) {
	orderBy := "created_at DESC"
	if len(ordering) > 0 {
		clauses := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			if studentOrderFields[ord.Field] {
				clauses = append(clauses, ord.String())
			}
		}
		if len(clauses) > 0 {
			orderBy = strings.Join(clauses, ", ")
		}
	}

	var rows []studentRow
	if err := repo.db.Select(&rows, `SELECT * FROM student ORDER BY `+orderBy); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toDomain())
	}
	return students, nil
}

func (repo studentRepository) GetStudentByID(id string) (student.Student, error) {
	var row studentRow
	if err := repo.db.Get(&row, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "getting student by ID")
	}
	return row.toDomain(), nil
}

func (repo studentRepository) UpdateStudent(st student.Student, age *int) (student.Student, error) {
	res, err := repo.db.Exec(
		`UPDATE student SET
			first_name = COALESCE(NULLIF($2, ''), first_name),
			last_name  = COALESCE(NULLIF($3, ''), last_name),
			age        = COALESCE($4, age),
			gender     = COALESCE(NULLIF($5, ''), gender),
			class      = COALESCE(NULLIF($6, ''), class),
			avatar_url = COALESCE(NULLIF($7, ''), avatar_url),
			updated_at = COALESCE($8, updated_at)
		 WHERE id = $1`,
		st.ID, st.FirstName, st.LastName, age, st.Gender, st.Class, st.AvatarURL,
		null.NewTime(st.UpdatedAt, !st.UpdatedAt.IsZero()),
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(st.ID)
}

func (repo studentRepository) DeleteStudent(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM student WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return nil
}

func (repo studentRepository) CreateGrade(g student.Grade) (student.Grade, error) {
	g.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO grade (id, student_id, subject, value, created_at) VALUES ($1, $2, $3, $4, $5)`,
		g.ID, g.StudentID, g.Subject, g.Value, g.CreatedAt,
	)
	if err != nil {
		return student.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (repo studentRepository) QueryGradesByStudentID(studentID string) ([]student.Grade, error) {
	var rows []gradeRow
	err := repo.db.Select(&rows, `SELECT * FROM grade WHERE student_id = $1 ORDER BY created_at`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]student.Grade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, student.Grade(row))
	}
	return grades, nil
}

func (repo studentRepository) DeleteGrade(studentID, gradeID string) error {
	res, err := repo.db.Exec(`DELETE FROM grade WHERE id = $1 AND student_id = $2`, gradeID, studentID)
	if err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrGradeNotFound
	}
	return nil
}

func (repo studentRepository) CreateComment(c student.Comment) (student.Comment, error) {
	c.ID = uuid.New().String()
	_, err := repo.db.Exec(
		`INSERT INTO comment (id, student_id, subject, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.StudentID, c.Subject, c.Content, c.CreatedAt,
	)
	if err != nil {
		return student.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return c, nil
}

func (repo studentRepository) QueryCommentsByStudentID(studentID string) ([]student.Comment, error) {
	var rows []commentRow
	err := repo.db.Select(&rows, `SELECT * FROM comment WHERE student_id = $1 ORDER BY created_at`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying comments")
	}
	comments := make([]student.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, student.Comment(row))
	}
	return comments, nil
}
