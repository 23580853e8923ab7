package dummydb

import (
	"context"
	"sort"

	"github.com/roshna21/DevOps-project/core/account"
)

type accountRepository struct {
	parents    *parentTable
	professors *professorTable
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{parents: db.parent, professors: db.professor}
}

func (repo *accountRepository) CreateParent(_ context.Context, p account.Parent) (account.Parent, error) {
	repo.parents.Lock()
	defer repo.parents.Unlock()

	for _, other := range repo.parents.table {
		if other.Mobile == p.Mobile {
			return account.Parent{}, account.ErrMobileExists
		}
	}
	repo.parents.table[p.ID] = &p
	return p, nil
}

func (repo *accountRepository) UpdateParent(_ context.Context, p account.Parent) (account.Parent, error) {
	repo.parents.Lock()
	defer repo.parents.Unlock()

	if _, ok := repo.parents.table[p.ID]; !ok {
		return account.Parent{}, account.ErrNotFound
	}
	for _, other := range repo.parents.table {
		if other.ID != p.ID && other.Mobile == p.Mobile {
			return account.Parent{}, account.ErrMobileExists
		}
	}
	repo.parents.table[p.ID] = &p
	return p, nil
}

func (repo *accountRepository) GetParentByID(_ context.Context, id string) (account.Parent, error) {
	repo.parents.RLock()
	defer repo.parents.RUnlock()

	if p, ok := repo.parents.table[id]; ok {
		return *p, nil
	}
	return account.Parent{}, account.ErrNotFound
}

func (repo *accountRepository) GetParentByMobile(_ context.Context, mobile string) (account.Parent, error) {
	repo.parents.RLock()
	defer repo.parents.RUnlock()

	for _, p := range repo.parents.table {
		if p.Mobile == mobile {
			return *p, nil
		}
	}
	return account.Parent{}, account.ErrNotFound
}

func (repo *accountRepository) ListParentsByStudent(_ context.Context, usn string) ([]account.Parent, error) {
	repo.parents.RLock()
	defer repo.parents.RUnlock()

	parents := make([]account.Parent, 0)
	for _, p := range repo.parents.table {
		if p.StudentUSN == usn {
			parents = append(parents, *p)
		}
	}
	sort.Slice(parents, func(i, j int) bool { return parents[i].CreatedAt.Before(parents[j].CreatedAt) })
	return parents, nil
}

func copyProfessor(p account.Professor) account.Professor {
	p.MenteeUSNs = append([]string(nil), p.MenteeUSNs...)
	return p
}

func (repo *accountRepository) CreateProfessor(_ context.Context, p account.Professor) (account.Professor, error) {
	repo.professors.Lock()
	defer repo.professors.Unlock()

	for _, other := range repo.professors.table {
		if other.Mobile == p.Mobile {
			return account.Professor{}, account.ErrMobileExists
		}
	}
	stored := copyProfessor(p)
	repo.professors.table[p.ID] = &stored
	return copyProfessor(p), nil
}

func (repo *accountRepository) UpdateProfessor(_ context.Context, p account.Professor) (account.Professor, error) {
	repo.professors.Lock()
	defer repo.professors.Unlock()

	if _, ok := repo.professors.table[p.ID]; !ok {
		return account.Professor{}, account.ErrNotFound
	}
	stored := copyProfessor(p)
	repo.professors.table[p.ID] = &stored
	return copyProfessor(p), nil
}

func (repo *accountRepository) findProfessor(match func(p *account.Professor) bool) (account.Professor, error) {
	repo.professors.RLock()
	defer repo.professors.RUnlock()

	for _, p := range repo.professors.table {
		if match(p) {
			return copyProfessor(*p), nil
		}
	}
	return account.Professor{}, account.ErrNotFound
}

func (repo *accountRepository) GetProfessorByID(_ context.Context, id string) (account.Professor, error) {
	return repo.findProfessor(func(p *account.Professor) bool { return p.ID == id })
}

func (repo *accountRepository) GetProfessorByCode(_ context.Context, code string) (account.Professor, error) {
	return repo.findProfessor(func(p *account.Professor) bool { return p.Code == code })
}

func (repo *accountRepository) GetProfessorByMobile(_ context.Context, mobile string) (account.Professor, error) {
	return repo.findProfessor(func(p *account.Professor) bool { return p.Mobile == mobile })
}

func (repo *accountRepository) CountProfessors(_ context.Context) (int, error) {
	repo.professors.RLock()
	defer repo.professors.RUnlock()
	return len(repo.professors.table), nil
}
