package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/store"
)

type employeeStore struct{ s *Store }

func (e employeeStore) List(ctx context.Context) ([]model.Employee, error) {
	rows, err := e.s.db.QueryContext(ctx, `SELECT id FROM employees ORDER BY id`)
	if err != nil {
		return nil, e.s.fail("list employees", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, e.s.fail("list employees", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, e.s.fail("list employees", err)
	}
	rows.Close()

	out := make([]model.Employee, 0, len(ids))
	for _, id := range ids {
		employee, err := e.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, employee)
	}
	return out, nil
}

func (e employeeStore) Get(ctx context.Context, id int64) (model.Employee, error) {
	var (
		employee             model.Employee
		active               int
		createdAt, updatedAt string
	)
	err := e.s.db.QueryRowContext(ctx, `SELECT id, template_id, is_active, created_at, updated_at FROM employees WHERE id = ?`, id).
		Scan(&employee.ID, &employee.FormTemplateID, &active, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Employee{}, notFound("employee", id)
	}
	if err != nil {
		return model.Employee{}, e.s.fail("load employee", err)
	}
	employee.IsActive = active == 1
	employee.CreatedAt = parseTime(createdAt)
	employee.UpdatedAt = parseTime(updatedAt)

	rows, err := e.s.db.QueryContext(ctx, `SELECT field_id, field_value FROM employee_values WHERE employee_id = ? ORDER BY position`, id)
	if err != nil {
		return model.Employee{}, e.s.fail("load employee", err)
	}
	defer rows.Close()

	employee.FieldValues = []model.EmployeeFieldValue{}
	for rows.Next() {
		var (
			fieldID int64
			value   string
		)
		if err := rows.Scan(&fieldID, &value); err != nil {
			return model.Employee{}, e.s.fail("load employee", err)
		}
		employee.FieldValues = append(employee.FieldValues, model.EmployeeFieldValue{
			FormFieldID: model.FieldIDFromInt(fieldID),
			FieldValue:  value,
		})
	}
	if err := rows.Err(); err != nil {
		return model.Employee{}, e.s.fail("load employee", err)
	}
	return employee, nil
}

func (e employeeStore) Create(ctx context.Context, submission model.EmployeeSubmission) (model.Employee, error) {
	if err := e.check(ctx, submission); err != nil {
		return model.Employee{}, err
	}

	tx, err := e.s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Employee{}, e.s.fail("create employee", err)
	}
	defer tx.Rollback()

	now := e.s.timestamp()
	result, err := tx.ExecContext(ctx, `INSERT INTO employees (template_id, is_active, created_at, updated_at) VALUES (?, 1, ?, ?)`,
		submission.FormTemplateID, now, now)
	if err != nil {
		return model.Employee{}, e.s.fail("create employee", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Employee{}, e.s.fail("create employee", err)
	}
	if err := writeValues(ctx, tx, id, submission.FieldValues); err != nil {
		return model.Employee{}, e.s.fail("create employee", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Employee{}, e.s.fail("create employee", err)
	}
	e.s.logger.Debug("employee created", zap.Int64("employee_id", id), zap.Int64("template_id", submission.FormTemplateID))
	return e.Get(ctx, id)
}

func (e employeeStore) Update(ctx context.Context, id int64, submission model.EmployeeSubmission) (model.Employee, error) {
	existing, err := e.Get(ctx, id)
	if err != nil {
		return model.Employee{}, err
	}
	if existing.FormTemplateID != submission.FormTemplateID {
		return model.Employee{}, &store.CollaboratorError{
			Message: "Form template cannot be changed",
			Fields:  map[string][]string{"form_template_id": {"Form template cannot be changed"}},
		}
	}
	if err := e.check(ctx, submission); err != nil {
		return model.Employee{}, err
	}

	tx, err := e.s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Employee{}, e.s.fail("update employee", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE employees SET updated_at = ? WHERE id = ?`, e.s.timestamp(), id); err != nil {
		return model.Employee{}, e.s.fail("update employee", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM employee_values WHERE employee_id = ?`, id); err != nil {
		return model.Employee{}, e.s.fail("update employee", err)
	}
	if err := writeValues(ctx, tx, id, submission.FieldValues); err != nil {
		return model.Employee{}, e.s.fail("update employee", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Employee{}, e.s.fail("update employee", err)
	}
	e.s.logger.Debug("employee updated", zap.Int64("employee_id", id))
	return e.Get(ctx, id)
}

func (e employeeStore) Delete(ctx context.Context, id int64) error {
	result, err := e.s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return e.s.fail("delete employee", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return notFound("employee", id)
	}
	return nil
}

// check validates the submission shape and that every field belongs to the
// referenced template.
func (e employeeStore) check(ctx context.Context, submission model.EmployeeSubmission) error {
	if err := submission.Validate(); err != nil {
		return store.Newf(err, "%s", err.Error())
	}
	template, err := e.s.Templates().Get(ctx, submission.FormTemplateID)
	if errors.Is(err, store.ErrNotFound) {
		return &store.CollaboratorError{
			Message: "Form template does not exist",
			Fields:  map[string][]string{"form_template_id": {"Form template does not exist"}},
		}
	}
	if err != nil {
		return err
	}
	for idx, value := range submission.FieldValues {
		if _, ok := template.Field(model.FieldIDFromInt(value.FormFieldID)); !ok {
			return &store.CollaboratorError{
				Message: "Field does not belong to the form template",
				Fields:  map[string][]string{fmt.Sprintf("field_values.%d", idx): {"Field does not belong to the form template"}},
			}
		}
	}
	return nil
}

func writeValues(ctx context.Context, tx execer, employeeID int64, values []model.FieldValuePayload) error {
	for idx, value := range values {
		if _, err := tx.ExecContext(ctx, `INSERT INTO employee_values (employee_id, field_id, position, field_value) VALUES (?, ?, ?, ?)`,
			employeeID, value.FormFieldID, idx, value.FieldValue); err != nil {
			return err
		}
	}
	return nil
}
