package vanilla

import (
	"fmt"
	"net/url"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/render"
	"github.com/goliatone/go-emsforms/pkg/widgets"
)

// Collect feeds posted form values back through onChange, one call per field
// present in the submission. Checkbox groups post one entry per checked
// option under the same input name; they are aggregated into a JSON array in
// option order. Fields absent from values are left untouched, except
// checkbox groups, which browsers omit entirely when nothing is checked.
func Collect(fields []model.FieldDefinition, values url.Values, onChange render.ChangeFunc) error {
	if onChange == nil {
		return fmt.Errorf("vanilla renderer: collect requires a change handler")
	}
	for _, field := range fields {
		if field.ID == "" {
			continue
		}
		posted, present := values[InputName(field.ID)]
		widget := widgets.For(field.FieldType)

		var value string
		switch {
		case widget.Multiple:
			value = model.EncodeChoices(field.FieldOptions, posted)
		case !present:
			continue
		case len(posted) > 0:
			value = posted[0]
		}

		if err := onChange(field.ID, value); err != nil {
			return fmt.Errorf("vanilla renderer: collect %q: %w", field.ID, err)
		}
	}
	return nil
}
