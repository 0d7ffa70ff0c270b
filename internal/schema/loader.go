package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/fgardt/lldap/internal/domain"
	"github.com/fgardt/lldap/internal/logging"
)

// ErrTooManyErrors ends a lenient load that reached LoaderConfig.MaxErrors.
var ErrTooManyErrors = errors.New("too many invalid rows")

// SchemaRow is a stored attribute description. Type holds the stored type
// name, which is validated when the row is loaded.
type SchemaRow struct {
	Name        string
	Type        string
	IsList      bool
	IsVisible   bool
	IsEditable  bool
	IsHardcoded bool
}

// AttributeRow is a stored attribute value belonging to Owner, a user id or
// group id in text form.
type AttributeRow struct {
	Owner string
	Name  string
	Value domain.Serialized
}

// RowError locates a failed row within its batch.
type RowError struct {
	Index int
	Name  string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Loader turns stored rows into a Schema and attribute values.
type Loader struct {
	cfg    LoaderConfig
	entity string
	logger logging.Logger
}

// NewLoader creates a loader for the attributes of entity ("user" or "group").
// A nil logger discards output.
func NewLoader(cfg LoaderConfig, entity string, logger logging.Logger) *Loader {
	return &Loader{
		cfg:    cfg,
		entity: entity,
		logger: logging.OrNop(logger),
	}
}

// LoadSchema validates rows and builds a schema from them.
//
// In strict mode the first invalid row aborts the load and no schema is
// returned. In lenient mode the schema holds every valid row and the error,
// if any, joins a *RowError per skipped row. A lenient load that reaches
// MaxErrors returns no schema and an error matching ErrTooManyErrors.
func (l *Loader) LoadSchema(ctx context.Context, rows []SchemaRow) (*Schema, error) {
	var result *Schema

	err := logging.LogOperation(l.logger, "load_schema", l.fields(len(rows)), func() error {
		s := &Schema{
			attributes: make([]AttributeSchema, 0, len(rows)),
			byName:     make(map[string]int, len(rows)),
		}
		c := l.collector()

		for i, row := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}

			a, err := schemaFromRow(row)
			if err == nil {
				err = s.add(a)
			}
			if err != nil {
				if stop := c.reject(i, row.Name, err); stop != nil {
					return stop
				}
			}
		}

		result = s
		return c.result(len(rows))
	})

	if err != nil && l.cfg.Strict {
		return nil, err
	}
	return result, err
}

func schemaFromRow(row SchemaRow) (AttributeSchema, error) {
	t, err := domain.ParseAttributeType(row.Type)
	if err != nil {
		return AttributeSchema{}, err
	}

	return AttributeSchema{
		Name:        row.Name,
		Type:        t,
		IsList:      row.IsList,
		IsVisible:   row.IsVisible,
		IsEditable:  row.IsEditable,
		IsHardcoded: row.IsHardcoded,
	}, nil
}

// LoadAttributes validates each row against s and groups the values by owner,
// keeping row order.
//
// Failure handling follows LoadSchema.
func (l *Loader) LoadAttributes(ctx context.Context, s *Schema, rows []AttributeRow) (map[string][]domain.AttributeValue, error) {
	var result map[string][]domain.AttributeValue

	err := logging.LogOperation(l.logger, "load_attributes", l.fields(len(rows)), func() error {
		byOwner := make(map[string][]domain.AttributeValue)
		c := l.collector()

		for i, row := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}

			value, err := l.attributeFromRow(s, row)
			if err != nil {
				if stop := c.reject(i, row.Name, err); stop != nil {
					return stop
				}
				continue
			}

			byOwner[row.Owner] = append(byOwner[row.Owner], value)
		}

		result = byOwner
		return c.result(len(rows))
	})

	if err != nil && l.cfg.Strict {
		return nil, err
	}
	return result, err
}

func (l *Loader) attributeFromRow(s *Schema, row AttributeRow) (domain.AttributeValue, error) {
	a, ok := s.Get(row.Name)
	if !ok {
		return domain.AttributeValue{}, fmt.Errorf("%w: %q", ErrUnknownAttribute, row.Name)
	}

	if err := a.Type.Validate(row.Value); err != nil {
		return domain.AttributeValue{}, domain.Annotate(err, l.entity, a.Name)
	}

	return domain.AttributeValue{Name: a.Name, Value: row.Value}, nil
}

func (l *Loader) fields(rows int) map[string]any {
	return map[string]any{
		"entity": l.entity,
		"rows":   rows,
		"strict": l.cfg.Strict,
	}
}

func (l *Loader) collector() *rowErrors {
	return &rowErrors{loader: l}
}

type rowErrors struct {
	loader *Loader
	errs   []error
}

// reject records a failed row. It returns a non-nil error when loading must
// stop.
func (r *rowErrors) reject(index int, name string, err error) error {
	rowErr := &RowError{Index: index, Name: name, Err: domain.Annotate(err, r.loader.entity, name)}

	if r.loader.cfg.Strict {
		return rowErr
	}

	logging.LogValidationError(r.loader.logger, "Skipping invalid row", rowErr.Err, map[string]any{
		"entity":    r.loader.entity,
		"row":       index,
		"attribute": name,
	})

	r.errs = append(r.errs, rowErr)
	if limit := r.loader.cfg.MaxErrors; limit > 0 && len(r.errs) >= limit {
		return errors.Join(append(r.errs, ErrTooManyErrors)...)
	}
	return nil
}

func (r *rowErrors) result(total int) error {
	if len(r.errs) == 0 {
		return nil
	}

	r.loader.logger.Info("Loaded with skipped rows", map[string]any{
		"entity":  r.loader.entity,
		"rows":    total,
		"skipped": len(r.errs),
	})
	return errors.Join(r.errs...)
}
