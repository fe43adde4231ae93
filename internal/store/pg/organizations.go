package pg

import (
	"context"
	"database/sql"
	"encoding/json"

	"crewbase.org/internal/org"
)

type orgStore Store

const orgColumns = `id, name, owner_user_id, metadata, created_at, updated_at`

func (s *orgStore) Create(ctx context.Context, o *org.Organization) error {
	meta, err := marshalMetadata(o.Metadata)
	if err != nil {
		return err
	}
	_, err = (*Store)(s).q(ctx).ExecContext(ctx, `
		insert into organizations(id, name, owner_user_id, metadata, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6)
	`, o.ID, o.Name, o.OwnerUserID, meta, o.CreatedAt, o.UpdatedAt)
	return mapError(err)
}

func (s *orgStore) FindByID(ctx context.Context, id string) (*org.Organization, error) {
	row := (*Store)(s).q(ctx).QueryRowContext(ctx, `
		select `+orgColumns+` from organizations where id=$1
	`, id)
	return scanOrganization(row)
}

func (s *orgStore) Update(ctx context.Context, o *org.Organization) error {
	meta, err := marshalMetadata(o.Metadata)
	if err != nil {
		return err
	}
	res, err := (*Store)(s).q(ctx).ExecContext(ctx, `
		update organizations
		set name=$2, owner_user_id=$3, metadata=$4, updated_at=$5
		where id=$1
	`, o.ID, o.Name, o.OwnerUserID, meta, o.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return requireRow(res)
}

func (s *orgStore) Delete(ctx context.Context, id string) error {
	res, err := (*Store)(s).q(ctx).ExecContext(ctx, `
		delete from organizations where id=$1
	`, id)
	if err != nil {
		return mapError(err)
	}
	return requireRow(res)
}

func (s *orgStore) List(ctx context.Context) ([]*org.Organization, error) {
	rows, err := (*Store)(s).q(ctx).QueryContext(ctx, `
		select `+orgColumns+` from organizations order by created_at, id
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]*org.Organization, 0)
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrganization(row rowScanner) (*org.Organization, error) {
	var o org.Organization
	var meta []byte
	err := row.Scan(&o.ID, &o.Name, &o.OwnerUserID, &meta, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &o.Metadata); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

func marshalMetadata(meta map[string]any) (sql.NullString, error) {
	if meta == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}
