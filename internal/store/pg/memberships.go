package pg

import (
	"context"
	"database/sql"

	"crewbase.org/internal/org"
)

type membershipStore Store

const membershipColumns = `id, user_id, username, organization_id, role_code,
	invited_at, joined_at, left_at, deleted_at, created_at, updated_at`

func (s *membershipStore) Create(ctx context.Context, m *org.Membership) error {
	_, err := (*Store)(s).q(ctx).ExecContext(ctx, `
		insert into memberships(id, user_id, username, organization_id, role_code,
			invited_at, joined_at, left_at, deleted_at, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, m.ID, nullString(m.UserID), m.Username, m.OrganizationID, string(m.RoleCode),
		nullTime(m.InvitedAt), nullTime(m.JoinedAt), nullTime(m.LeftAt), nullTime(m.DeletedAt),
		m.CreatedAt, m.UpdatedAt)
	return mapError(err)
}

func (s *membershipStore) FindByID(ctx context.Context, id string) (*org.Membership, error) {
	row := (*Store)(s).q(ctx).QueryRowContext(ctx, `
		select `+membershipColumns+` from memberships where id=$1
	`, id)
	return scanMembership(row)
}

func (s *membershipStore) FindActiveByUser(ctx context.Context, orgID, userID string) (*org.Membership, error) {
	row := (*Store)(s).q(ctx).QueryRowContext(ctx, `
		select `+membershipColumns+` from memberships
		where organization_id=$1 and user_id=$2
		  and joined_at is not null and left_at is null and deleted_at is null
	`, orgID, userID)
	return scanMembership(row)
}

func (s *membershipStore) FindPendingByUsername(ctx context.Context, orgID, username string) (*org.Membership, error) {
	row := (*Store)(s).q(ctx).QueryRowContext(ctx, `
		select `+membershipColumns+` from memberships
		where organization_id=$1 and lower(username)=lower($2)
		  and joined_at is null and left_at is null and deleted_at is null
	`, orgID, username)
	return scanMembership(row)
}

func (s *membershipStore) ListByOrganization(ctx context.Context, orgID string) ([]*org.Membership, error) {
	rows, err := (*Store)(s).q(ctx).QueryContext(ctx, `
		select `+membershipColumns+` from memberships
		where organization_id=$1
		order by created_at, id
	`, orgID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]*org.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *membershipStore) Update(ctx context.Context, m *org.Membership) error {
	res, err := (*Store)(s).q(ctx).ExecContext(ctx, `
		update memberships
		set user_id=$2, username=$3, role_code=$4,
		    invited_at=$5, joined_at=$6, left_at=$7, deleted_at=$8, updated_at=$9
		where id=$1
	`, m.ID, nullString(m.UserID), m.Username, string(m.RoleCode),
		nullTime(m.InvitedAt), nullTime(m.JoinedAt), nullTime(m.LeftAt), nullTime(m.DeletedAt),
		m.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return requireRow(res)
}

func scanMembership(row rowScanner) (*org.Membership, error) {
	var m org.Membership
	var userID sql.NullString
	var role string
	var invited, joined, left, deleted sql.NullTime
	err := row.Scan(&m.ID, &userID, &m.Username, &m.OrganizationID, &role,
		&invited, &joined, &left, &deleted, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	m.UserID = stringPtr(userID)
	m.RoleCode = org.RoleCode(role)
	m.InvitedAt = timePtr(invited)
	m.JoinedAt = timePtr(joined)
	m.LeftAt = timePtr(left)
	m.DeletedAt = timePtr(deleted)
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return &m, nil
}
