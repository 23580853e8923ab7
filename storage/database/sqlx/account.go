package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/roshna21/DevOps-project/core/account"
)

type (
	accountRepository struct {
		db *sqlx.DB
	}

	menteeRow struct {
		ProfessorID string `db:"professor_id"`
		StudentUSN  string `db:"student_usn"`
	}
)

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *sqlx.DB) account.Repository {
	return &accountRepository{db: db}
}

const (
	parentColumns    = `id, name, mobile, email, student_usn, created_at`
	professorColumns = `id, code, name, mobile, department, approved, created_at`
)

func (repo *accountRepository) CreateParent(ctx context.Context, p account.Parent) (account.Parent, error) {
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO parents (`+parentColumns+`)
		VALUES (:id, :name, :mobile, :email, :student_usn, :created_at)`, p)
	if isUniqueViolation(err) {
		return account.Parent{}, account.ErrMobileExists
	}
	if err != nil {
		return account.Parent{}, errors.Wrap(err, "inserting parent")
	}
	return p, nil
}

func (repo *accountRepository) UpdateParent(ctx context.Context, p account.Parent) (account.Parent, error) {
	res, err := repo.db.NamedExecContext(ctx,
		`UPDATE parents SET name = :name, mobile = :mobile, email = :email, student_usn = :student_usn
		WHERE id = :id`, p)
	if isUniqueViolation(err) {
		return account.Parent{}, account.ErrMobileExists
	}
	if err != nil {
		return account.Parent{}, errors.Wrap(err, "updating parent")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return account.Parent{}, account.ErrNotFound
	}
	return p, nil
}

func (repo *accountRepository) getParent(ctx context.Context, where string, arg interface{}) (account.Parent, error) {
	var p account.Parent
	err := repo.db.GetContext(ctx, &p, `SELECT `+parentColumns+` FROM parents WHERE `+where, arg)
	if err == sql.ErrNoRows {
		return account.Parent{}, account.ErrNotFound
	}
	if err != nil {
		return account.Parent{}, errors.Wrap(err, "selecting parent")
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (repo *accountRepository) GetParentByID(ctx context.Context, id string) (account.Parent, error) {
	return repo.getParent(ctx, `id = $1`, id)
}

func (repo *accountRepository) GetParentByMobile(ctx context.Context, mobile string) (account.Parent, error) {
	return repo.getParent(ctx, `mobile = $1`, mobile)
}

func (repo *accountRepository) ListParentsByStudent(ctx context.Context, usn string) ([]account.Parent, error) {
	parents := make([]account.Parent, 0)
	err := repo.db.SelectContext(ctx, &parents,
		`SELECT `+parentColumns+` FROM parents WHERE student_usn = $1 ORDER BY created_at`, usn)
	if err != nil {
		return nil, errors.Wrap(err, "selecting parents")
	}
	for i := range parents {
		parents[i].CreatedAt = parents[i].CreatedAt.UTC()
	}
	return parents, nil
}

func setMentees(ctx context.Context, tx *sqlx.Tx, professorID string, usns []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM professor_mentees WHERE professor_id = $1`, professorID); err != nil {
		return errors.Wrap(err, "clearing mentees")
	}
	if len(usns) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO professor_mentees (professor_id, student_usn)
		SELECT $1, usn FROM UNNEST($2::text[]) AS usn
		ON CONFLICT DO NOTHING`,
		professorID, pq.Array(usns),
	)
	return errors.Wrap(err, "inserting mentees")
}

func (repo *accountRepository) CreateProfessor(ctx context.Context, p account.Professor) (account.Professor, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return account.Professor{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO professors (`+professorColumns+`)
		VALUES (:id, :code, :name, :mobile, :department, :approved, :created_at)`, p)
	if isUniqueViolation(err) {
		return account.Professor{}, account.ErrMobileExists
	}
	if err != nil {
		return account.Professor{}, errors.Wrap(err, "inserting professor")
	}
	if err = setMentees(ctx, tx, p.ID, p.MenteeUSNs); err != nil {
		return account.Professor{}, err
	}
	return p, errors.Wrap(tx.Commit(), "committing transaction")
}

func (repo *accountRepository) UpdateProfessor(ctx context.Context, p account.Professor) (account.Professor, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return account.Professor{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.NamedExecContext(ctx,
		`UPDATE professors SET name = :name, mobile = :mobile, department = :department, approved = :approved
		WHERE id = :id`, p)
	if isUniqueViolation(err) {
		return account.Professor{}, account.ErrMobileExists
	}
	if err != nil {
		return account.Professor{}, errors.Wrap(err, "updating professor")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return account.Professor{}, account.ErrNotFound
	}
	if err = setMentees(ctx, tx, p.ID, p.MenteeUSNs); err != nil {
		return account.Professor{}, err
	}
	return p, errors.Wrap(tx.Commit(), "committing transaction")
}

func (repo *accountRepository) getProfessor(ctx context.Context, where string, arg interface{}) (account.Professor, error) {
	var p account.Professor
	err := repo.db.GetContext(ctx, &p, `SELECT `+professorColumns+` FROM professors WHERE `+where, arg)
	if err == sql.ErrNoRows {
		return account.Professor{}, account.ErrNotFound
	}
	if err != nil {
		return account.Professor{}, errors.Wrap(err, "selecting professor")
	}
	p.CreatedAt = p.CreatedAt.UTC()

	rows := make([]menteeRow, 0)
	err = repo.db.SelectContext(ctx, &rows,
		`SELECT professor_id, student_usn FROM professor_mentees WHERE professor_id = $1 ORDER BY student_usn`, p.ID)
	if err != nil {
		return account.Professor{}, errors.Wrap(err, "selecting mentees")
	}
	p.MenteeUSNs = make([]string, 0, len(rows))
	for _, row := range rows {
		p.MenteeUSNs = append(p.MenteeUSNs, row.StudentUSN)
	}
	return p, nil
}

func (repo *accountRepository) GetProfessorByID(ctx context.Context, id string) (account.Professor, error) {
	return repo.getProfessor(ctx, `id = $1`, id)
}

func (repo *accountRepository) GetProfessorByCode(ctx context.Context, code string) (account.Professor, error) {
	return repo.getProfessor(ctx, `code = $1`, code)
}

func (repo *accountRepository) GetProfessorByMobile(ctx context.Context, mobile string) (account.Professor, error) {
	return repo.getProfessor(ctx, `mobile = $1`, mobile)
}

func (repo *accountRepository) CountProfessors(ctx context.Context) (int, error) {
	var n int
	err := repo.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM professors`)
	return n, errors.Wrap(err, "counting professors")
}
