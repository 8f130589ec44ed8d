package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/store"
)

type templateStore struct{ s *Store }

func (t templateStore) List(ctx context.Context, filter store.ListFilter) ([]model.FormTemplate, error) {
	query := `SELECT id FROM form_templates WHERE 1=1`
	args := []any{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query += ` AND lower(name) LIKE ?`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	if filter.IsActive != nil {
		query += ` AND is_active = ?`
		args = append(args, boolInt(*filter.IsActive))
	}
	query += ` ORDER BY id`

	rows, err := t.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, t.s.fail("list templates", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, t.s.fail("list templates", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, t.s.fail("list templates", err)
	}
	rows.Close()

	out := make([]model.FormTemplate, 0, len(ids))
	for _, id := range ids {
		template, err := t.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, template)
	}
	return out, nil
}

func (t templateStore) Get(ctx context.Context, id int64) (model.FormTemplate, error) {
	var (
		template             model.FormTemplate
		active               int
		createdAt, updatedAt string
	)
	err := t.s.db.QueryRowContext(ctx, `SELECT id, name, description, is_active, created_at, updated_at
		FROM form_templates WHERE id = ?`, id).Scan(&template.ID, &template.Name, &template.Description, &active, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FormTemplate{}, notFound("template", id)
	}
	if err != nil {
		return model.FormTemplate{}, t.s.fail("load template", err)
	}
	template.IsActive = active == 1
	template.CreatedAt = parseTime(createdAt)
	template.UpdatedAt = parseTime(updatedAt)

	fields, err := loadFields(ctx, t.s.db, id)
	if err != nil {
		return model.FormTemplate{}, t.s.fail("load template", err)
	}
	template.Fields = fields
	return template, nil
}

func (t templateStore) Create(ctx context.Context, payload model.TemplatePayload) (model.FormTemplate, error) {
	if err := payload.Validate(); err != nil {
		return model.FormTemplate{}, store.Newf(err, "%s", err.Error())
	}

	tx, err := t.s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.FormTemplate{}, t.s.fail("create template", err)
	}
	defer tx.Rollback()

	now := t.s.timestamp()
	result, err := tx.ExecContext(ctx, `INSERT INTO form_templates (name, description, is_active, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)`, payload.Name, payload.Description, now, now)
	if err != nil {
		return model.FormTemplate{}, t.s.fail("create template", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.FormTemplate{}, t.s.fail("create template", err)
	}
	for _, field := range payload.Fields {
		if err := insertField(ctx, tx, id, field); err != nil {
			return model.FormTemplate{}, t.s.fail("create template", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return model.FormTemplate{}, t.s.fail("create template", err)
	}
	t.s.logger.Debug("template created", zap.Int64("template_id", id), zap.Int("fields", len(payload.Fields)))
	return t.Get(ctx, id)
}

// Update rewrites the template's fields. Fields are matched to the stored
// ones by field name so their ids, and the answers referencing them, survive
// relabelling and reordering.
func (t templateStore) Update(ctx context.Context, id int64, payload model.TemplatePayload) (model.FormTemplate, error) {
	if err := payload.Validate(); err != nil {
		return model.FormTemplate{}, store.Newf(err, "%s", err.Error())
	}

	tx, err := t.s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.FormTemplate{}, t.s.fail("update template", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE form_templates SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		payload.Name, payload.Description, t.s.timestamp(), id)
	if err != nil {
		return model.FormTemplate{}, t.s.fail("update template", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return model.FormTemplate{}, notFound("template", id)
	}

	existing, err := loadFields(ctx, tx, id)
	if err != nil {
		return model.FormTemplate{}, t.s.fail("update template", err)
	}
	byName := make(map[string]int64, len(existing))
	for _, field := range existing {
		fieldID, _ := field.ID.Int64()
		byName[field.FieldName] = fieldID
	}

	kept := make(map[int64]struct{}, len(payload.Fields))
	for _, field := range payload.Fields {
		fieldID, ok := byName[field.FieldName]
		if _, taken := kept[fieldID]; ok && !taken {
			if err := updateField(ctx, tx, fieldID, field); err != nil {
				return model.FormTemplate{}, t.s.fail("update template", err)
			}
			kept[fieldID] = struct{}{}
			continue
		}
		if err := insertField(ctx, tx, id, field); err != nil {
			return model.FormTemplate{}, t.s.fail("update template", err)
		}
	}
	for _, fieldID := range byName {
		if _, ok := kept[fieldID]; ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM form_fields WHERE id = ?`, fieldID); err != nil {
			return model.FormTemplate{}, t.s.fail("update template", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.FormTemplate{}, t.s.fail("update template", err)
	}
	t.s.logger.Debug("template updated", zap.Int64("template_id", id), zap.Int("fields", len(payload.Fields)))
	return t.Get(ctx, id)
}

func (t templateStore) Delete(ctx context.Context, id int64) error {
	var inUse int
	if err := t.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees WHERE template_id = ?`, id).Scan(&inUse); err != nil {
		return t.s.fail("delete template", err)
	}
	if inUse > 0 {
		return &store.CollaboratorError{Message: "Template is in use by employee records"}
	}
	result, err := t.s.db.ExecContext(ctx, `DELETE FROM form_templates WHERE id = ?`, id)
	if err != nil {
		return t.s.fail("delete template", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return notFound("template", id)
	}
	return nil
}

func (t templateStore) Duplicate(ctx context.Context, id int64) (model.FormTemplate, error) {
	source, err := t.Get(ctx, id)
	if err != nil {
		return model.FormTemplate{}, err
	}
	return t.Create(ctx, store.DuplicatePayload(source))
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertField(ctx context.Context, tx execer, templateID int64, field model.FieldPayload) error {
	options, rules, err := encodeFieldJSON(field)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO form_fields
		(template_id, field_name, field_label, field_type, is_required, field_order, field_options, validation_rules)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		templateID, field.FieldName, field.FieldLabel, string(model.ParseFieldType(string(field.FieldType))),
		boolInt(field.IsRequired), field.FieldOrder, options, rules)
	return err
}

func updateField(ctx context.Context, tx execer, fieldID int64, field model.FieldPayload) error {
	options, rules, err := encodeFieldJSON(field)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE form_fields SET field_label = ?, field_type = ?, is_required = ?,
		field_order = ?, field_options = ?, validation_rules = ? WHERE id = ?`,
		field.FieldLabel, string(model.ParseFieldType(string(field.FieldType))), boolInt(field.IsRequired),
		field.FieldOrder, options, rules, fieldID)
	return err
}

func encodeFieldJSON(field model.FieldPayload) (sql.NullString, sql.NullString, error) {
	options, err := encodeJSON(field.FieldOptions, len(field.FieldOptions) == 0)
	if err != nil {
		return sql.NullString{}, sql.NullString{}, err
	}
	rules, err := encodeJSON(field.ValidationRules, field.ValidationRules.IsZero())
	if err != nil {
		return sql.NullString{}, sql.NullString{}, err
	}
	return options, rules, nil
}
