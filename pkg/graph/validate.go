package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct validates v against its `validate` struct tags and joins
// every field failure into one readable error.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateIdentifiers applies the editor's identifier rules to wire nodes
// and edges: every id and endpoint must pass [nferrors.ValidateID] and every
// non-empty type tag must pass [nferrors.ValidateNodeType].
func ValidateIdentifiers(nodes []Node, edges []Edge) error {
	for i, n := range nodes {
		if err := nferrors.ValidateID(n.ID); err != nil {
			return fmt.Errorf("nodes[%d].id: %w", i, err)
		}
		if n.Type == "" {
			continue
		}
		if err := nferrors.ValidateNodeType(n.Type); err != nil {
			return fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for i, e := range edges {
		for _, f := range [...]struct{ name, id string }{{"id", e.ID}, {"source", e.Source}, {"target", e.Target}} {
			if err := nferrors.ValidateID(f.id); err != nil {
				return fmt.Errorf("edges[%d].%s: %w", i, f.name, err)
			}
		}
	}
	return nil
}

func formatValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Namespace())
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
