package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/claude/workouthub/internal/units"
	"github.com/go-playground/validator/v10"
)

// ValidationError is one structural problem, addressed by a JSON field path.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every structural problem found in one pass.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Field + ": " + e.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Missing returns a single-entry ValidationErrors for an absent required field.
func Missing(field string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: "is required"}}
}

var semverPattern = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
		return semverPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		_, err := units.ParseISO(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the document's structure and its workout, returning
// ValidationErrors listing every problem.
func (d *Document) Validate() error {
	var errs ValidationErrors
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validating document: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, ValidationError{Field: fieldPath(fe.Namespace()), Message: message(fe)})
		}
	}
	if w := d.Workout(); w != nil {
		errs = append(errs, w.check("extensions.workout")...)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Validate checks a standalone workout.
func (w *Workout) Validate() error {
	if errs := w.check("workout"); len(errs) > 0 {
		return errs
	}
	return nil
}

func (w *Workout) check(path string) ValidationErrors {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if _, ok := ParseSport(string(w.Sport)); !ok || string(w.Sport) != strings.ToLower(string(w.Sport)) {
		add(path+".sport", "must be one of: cycling running swimming generic")
	}
	for i, e := range w.Steps {
		p := fmt.Sprintf("%s.steps[%d]", path, i)
		switch e := e.(type) {
		case *WorkoutStep:
			if e == nil {
				add(p, "is required")
				continue
			}
			errs = append(errs, e.check(p)...)
		case *RepetitionBlock:
			if e == nil {
				add(p, "is required")
				continue
			}
			if e.RepeatCount < 2 {
				add(p+".repeatCount", "must be at least 2")
			}
			if len(e.Steps) == 0 {
				add(p+".steps", "must contain at least one step")
			}
			for j, s := range e.Steps {
				cp := fmt.Sprintf("%s.steps[%d]", p, j)
				if s == nil {
					add(cp, "is required")
					continue
				}
				errs = append(errs, s.check(cp)...)
			}
		default:
			add(p, "is required")
		}
	}
	return errs
}

func (s *WorkoutStep) check(path string) ValidationErrors {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: path + "." + field, Message: msg})
	}

	if s.StepIndex < 0 {
		add("stepIndex", "must not be negative")
	}
	if s.Duration == nil {
		add("duration", "is required")
	} else {
		if s.DurationType != s.Duration.DurationType() {
			add("durationType", fmt.Sprintf("must equal duration type %q", s.Duration.DurationType()))
		}
		if msg := checkDuration(s.Duration); msg != "" {
			add("duration", msg)
		}
	}
	if s.Target == nil {
		add("target", "is required")
	} else {
		if s.TargetType != s.Target.TargetType() {
			add("targetType", fmt.Sprintf("must equal target type %q", s.Target.TargetType()))
		}
		if err := CheckTarget(s.Target); err != nil {
			add("target.value", err.Error())
		}
	}
	if s.Intensity != "" {
		if _, ok := ParseIntensity(string(s.Intensity)); !ok {
			add("intensity", "must be one of: warmup active cooldown rest recovery interval other")
		}
	}
	return errs
}

func checkDuration(d Duration) string {
	positive := func(v float64) string {
		if v <= 0 {
			return "must be positive"
		}
		return ""
	}
	from := func(n int) string {
		if n < 0 {
			return "repeatFrom must not be negative"
		}
		return ""
	}
	switch d := d.(type) {
	case TimeDuration:
		return positive(d.Seconds)
	case DistanceDuration:
		return positive(d.Meters)
	case CaloriesDuration:
		return positive(d.Calories)
	case RepeatUntilTimeDuration:
		return from(d.RepeatFrom)
	case RepeatUntilDistanceDuration:
		return from(d.RepeatFrom)
	case RepeatUntilCaloriesDuration:
		return from(d.RepeatFrom)
	case RepeatUntilHeartRateGreaterThanDuration:
		return from(d.RepeatFrom)
	case RepeatUntilHeartRateLessThanDuration:
		return from(d.RepeatFrom)
	case RepeatUntilPowerLessThanDuration:
		return from(d.RepeatFrom)
	case RepeatUntilPowerGreaterThanDuration:
		return from(d.RepeatFrom)
	}
	return ""
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "semver":
		return "must be a version like 1.0 or 1.0.0"
	case "iso8601":
		return "must be an ISO-8601 timestamp"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	}
	return "failed " + fe.Tag() + " check"
}
