package plans

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance for catalog files.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateCatalog checks every plan's field rules plus catalog-level rules:
// at least one plan, unique IDs, and a default that exists.
func validateCatalog(defaultPlan string, plans []Plan) error {
	if len(plans) == 0 {
		return errors.New("catalog must contain at least one plan")
	}

	var errs []error
	seen := make(map[string]bool, len(plans))
	for i, p := range plans {
		if err := Validator().Struct(p); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					errs = append(errs, fmt.Errorf("plans[%d].%s: failed %q rule", i, fe.Field(), fe.Tag()))
				}
				continue
			}
			errs = append(errs, fmt.Errorf("plans[%d]: %w", i, err))
			continue
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("plans[%d].ID: duplicate plan id %q", i, p.ID))
		}
		seen[p.ID] = true
	}

	if defaultPlan != "" && len(errs) == 0 && !seen[defaultPlan] {
		errs = append(errs, fmt.Errorf("default plan %q is not in the catalog", defaultPlan))
	}

	return errors.Join(errs...)
}
