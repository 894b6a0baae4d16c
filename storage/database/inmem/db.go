package inmemdb

import (
	"sync"

	"github.com/elevezen/elevezen/core/adminreq"
	"github.com/elevezen/elevezen/core/student"
	"github.com/elevezen/elevezen/core/user"
)

// DB is an in-memory stand-in for the record store, used in tests and local
// tinkering. Each table is guarded by its own RWMutex.
type (
	DB struct {
		user    *userTable
		request *requestTable
		student *studentTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}

	requestTable struct {
		table map[string]*adminreq.Request
		mutex sync.RWMutex
	}

	studentTable struct {
		students map[string]*student.Student
		grades   map[string]*student.Grade
		comments map[string]*student.Comment
		mutex    sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		request: &requestTable{table: make(map[string]*adminreq.Request)},
		student: &studentTable{
			students: make(map[string]*student.Student),
			grades:   make(map[string]*student.Grade),
			comments: make(map[string]*student.Comment),
		},
	}
	return db, nil
}
