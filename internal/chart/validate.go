package chart

import (
	"fmt"

	model "datasense/domain/chart"
)

// Validate checks a chart config against the dataset's columns. Every problem is reported.
func Validate(cfg model.Config, knownColumns []string) model.ValidationResult {
	known := make(map[string]bool, len(knownColumns))
	for _, c := range knownColumns {
		known[c] = true
	}

	errs := []model.FieldError{}
	switch {
	case cfg.XAxis == "":
		errs = append(errs, model.FieldError{Field: "xAxis", Message: "x-axis column is required"})
	case !known[cfg.XAxis]:
		errs = append(errs, model.FieldError{Field: "xAxis", Message: fmt.Sprintf("column %q does not exist", cfg.XAxis)})
	}

	for i, y := range cfg.YAxis {
		if !known[y] {
			errs = append(errs, model.FieldError{
				Field:   fmt.Sprintf("yAxis[%d]", i),
				Message: fmt.Sprintf("column %q does not exist", y),
			})
		}
	}

	if cfg.Type != model.TypePie && len(cfg.YAxis) == 0 {
		errs = append(errs, model.FieldError{
			Field:   "yAxis",
			Message: fmt.Sprintf("%s charts need at least one y-axis column", cfg.Type),
		})
	}

	return model.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
