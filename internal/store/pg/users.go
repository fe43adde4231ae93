package pg

import (
	"context"
	"database/sql"

	"crewbase.org/internal/org"
)

type userStore Store

const userColumns = `id, external_id, username, password_hash, created_at, updated_at, deleted_at`

func (s *userStore) Create(ctx context.Context, u *org.User) error {
	_, err := (*Store)(s).q(ctx).ExecContext(ctx, `
		insert into users(id, external_id, username, password_hash, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6)
	`, u.ID, u.ExternalID, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	return mapError(err)
}

func (s *userStore) FindByID(ctx context.Context, id string) (*org.User, error) {
	row := (*Store)(s).q(ctx).QueryRowContext(ctx, `
		select `+userColumns+` from users where id=$1
	`, id)
	return scanUser(row)
}

func (s *userStore) FindByExternalID(ctx context.Context, externalID string) (*org.User, error) {
	row := (*Store)(s).q(ctx).QueryRowContext(ctx, `
		select `+userColumns+` from users where external_id=$1
	`, externalID)
	return scanUser(row)
}

func (s *userStore) FindByUsername(ctx context.Context, username string) (*org.User, error) {
	row := (*Store)(s).q(ctx).QueryRowContext(ctx, `
		select `+userColumns+` from users
		where lower(username)=lower($1) and deleted_at is null
	`, username)
	return scanUser(row)
}

func (s *userStore) Update(ctx context.Context, u *org.User) error {
	res, err := (*Store)(s).q(ctx).ExecContext(ctx, `
		update users
		set username=$2, password_hash=$3, updated_at=$4, deleted_at=$5
		where id=$1
	`, u.ID, u.Username, u.PasswordHash, u.UpdatedAt, nullTime(u.DeletedAt))
	if err != nil {
		return mapError(err)
	}
	return requireRow(res)
}

func (s *userStore) List(ctx context.Context) ([]*org.User, error) {
	rows, err := (*Store)(s).q(ctx).QueryContext(ctx, `
		select `+userColumns+` from users order by created_at, id
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]*org.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*org.User, error) {
	var u org.User
	var deleted sql.NullTime
	err := row.Scan(&u.ID, &u.ExternalID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &deleted)
	if err != nil {
		return nil, mapError(err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	u.DeletedAt = timePtr(deleted)
	return &u, nil
}

// requireRow turns a zero-row update into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return org.ErrNotFound
	}
	return nil
}
