package inmemdb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/elevezen/elevezen/core/adminreq"
)

type adminRequestRepository struct {
	db *requestTable
}

func NewAdminRequestRepository(db *DB) adminreq.Repository {
	return &adminRequestRepository{db: db.request}
}

func (repo *adminRequestRepository) query() []adminreq.Request {
	reqs := make([]adminreq.Request, 0, len(repo.db.table))
	for _, req := range repo.db.table {
		reqs = append(reqs, *req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.Before(reqs[j].CreatedAt) })
	return reqs
}

func (repo *adminRequestRepository) CreateRequest(req adminreq.Request) (adminreq.Request, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	req.ID = uuid.New().String()
	repo.db.table[req.ID] = &req
	return req, nil
}

func (repo *adminRequestRepository) GetRequestByID(id string) (adminreq.Request, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if req, ok := repo.db.table[id]; ok {
		return *req, nil
	}
	return adminreq.Request{}, adminreq.ErrNotFound
}

func (repo *adminRequestRepository) GetRequestByUserID(userID string) (adminreq.Request, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var latest *adminreq.Request
	for _, req := range repo.db.table {
		if req.UserID != userID {
			continue
		}
		if latest == nil || req.CreatedAt.After(latest.CreatedAt) {
			latest = req
		}
	}
	if latest == nil {
		return adminreq.Request{}, adminreq.ErrNotFound
	}
	return *latest, nil
}

func (repo *adminRequestRepository) QueryRequestsByStatus(status string) ([]adminreq.Request, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	reqs := make([]adminreq.Request, 0)
	for _, req := range repo.query() {
		if req.Status == status {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}

func (repo *adminRequestRepository) UpdateRequest(req adminreq.Request) (adminreq.Request, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[req.ID]; !ok {
		return adminreq.Request{}, adminreq.ErrNotFound
	}
	repo.db.table[req.ID] = &req
	return req, nil
}
