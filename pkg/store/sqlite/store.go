package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/store"
)

const timeLayout = time.RFC3339Nano

// Option customises a Store.
type Option func(*Store)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store implements the template and employee stores on a migrated database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// New wraps db. Call Migrate before first use.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// OpenStore opens, migrates and wraps the database at path.
func OpenStore(ctx context.Context, path string, opts ...Option) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, opts...), nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Templates returns the TemplateStore view of s.
func (s *Store) Templates() store.TemplateStore { return templateStore{s} }

// Employees returns the EmployeeStore view of s.
func (s *Store) Employees() store.EmployeeStore { return employeeStore{s} }

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

// fail logs err and converts it into a CollaboratorError.
func (s *Store) fail(op string, err error) error {
	var collaborator *store.CollaboratorError
	if errors.As(err, &collaborator) {
		return err
	}
	s.logger.Error("sqlite store failure", zap.String("op", op), zap.Error(err))
	return store.Newf(fmt.Errorf("sqlite: %s: %w", op, err), "Unable to %s", op)
}

func notFound(kind string, id int64) error {
	return &store.CollaboratorError{
		Message: fmt.Sprintf("%s %d not found", kind, id),
		Cause:   store.ErrNotFound,
	}
}

func parseTime(raw string) time.Time {
	parsed, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func encodeJSON(value any, empty bool) (sql.NullString, error) {
	if empty {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadFields(ctx context.Context, q queryer, templateID int64) ([]model.FieldDefinition, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, field_name, field_label, field_type, is_required, field_order, field_options, validation_rules
		FROM form_fields WHERE template_id = ? ORDER BY field_order, id`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := []model.FieldDefinition{}
	for rows.Next() {
		var (
			id                int64
			field             model.FieldDefinition
			fieldType         string
			required          int
			options, rulesRaw sql.NullString
		)
		if err := rows.Scan(&id, &field.FieldName, &field.FieldLabel, &fieldType, &required, &field.FieldOrder, &options, &rulesRaw); err != nil {
			return nil, err
		}
		field.ID = model.FieldIDFromInt(id)
		field.FieldType = model.ParseFieldType(fieldType)
		field.IsRequired = required == 1
		if options.Valid && strings.TrimSpace(options.String) != "" {
			if err := json.Unmarshal([]byte(options.String), &field.FieldOptions); err != nil {
				return nil, fmt.Errorf("field %d options: %w", id, err)
			}
		}
		if rulesRaw.Valid && strings.TrimSpace(rulesRaw.String) != "" {
			var rules model.ValidationRules
			if err := json.Unmarshal([]byte(rulesRaw.String), &rules); err != nil {
				return nil, fmt.Errorf("field %d rules: %w", id, err)
			}
			field.ValidationRules = &rules
		}
		fields = append(fields, field)
	}
	return fields, rows.Err()
}
