package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "participants.a.name")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the Config for invalid values and returns all validation
// errors found. A valid config names a topic, exactly the two participants
// its mode requires, and positive loop parameters.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateMode()...)
	errors = append(errors, c.validateTopic()...)
	errors = append(errors, c.validateParticipants()...)
	errors = append(errors, c.validateLoop()...)
	errors = append(errors, c.validateWorkshop()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateMode checks the mode selector.
func (c *Config) validateMode() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidModes(), c.Mode) {
		errors = append(errors, ValidationError{
			Field:   "mode",
			Value:   c.Mode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidModes(), ", ")),
		})
	}

	return errors
}

// validateTopic checks that a topic is present.
func (c *Config) validateTopic() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Topic) == "" {
		errors = append(errors, ValidationError{
			Field:   "topic",
			Value:   c.Topic,
			Message: "cannot be empty",
		})
	}

	return errors
}

// validateParticipants checks that exactly the two role keys required by the
// mode are present, each with a name and role description.
func (c *Config) validateParticipants() []ValidationError {
	var errors []ValidationError

	// Mode errors are reported separately; skip participant checks for an
	// unknown mode since the expected keys are undefined.
	if !slices.Contains(ValidModes(), c.Mode) {
		return nil
	}

	expected := RoleKeys(c.Mode)
	if len(c.Participants) != 2 {
		errors = append(errors, ValidationError{
			Field:   "participants",
			Value:   len(c.Participants),
			Message: fmt.Sprintf("must include exactly 2 participants (%s)", strings.Join(expected, ", ")),
		})
	}

	for _, key := range expected {
		p, ok := c.Participants[key]
		if !ok {
			errors = append(errors, ValidationError{
				Field:   "participants." + key,
				Value:   nil,
				Message: "participant is required for this mode",
			})
			continue
		}
		if strings.TrimSpace(p.Name) == "" {
			errors = append(errors, ValidationError{
				Field:   "participants." + key + ".name",
				Value:   p.Name,
				Message: "cannot be empty",
			})
		}
		if strings.TrimSpace(p.Role) == "" {
			errors = append(errors, ValidationError{
				Field:   "participants." + key + ".role",
				Value:   p.Role,
				Message: "cannot be empty",
			})
		}
	}

	return errors
}

// validateLoop checks the turn-loop parameters.
func (c *Config) validateLoop() []ValidationError {
	var errors []ValidationError

	if c.MaxTurns < 1 {
		errors = append(errors, ValidationError{
			Field:   "max_turns",
			Value:   c.MaxTurns,
			Message: "must be at least 1",
		})
	}
	if c.CheckInInterval < 1 {
		errors = append(errors, ValidationError{
			Field:   "check_in_interval",
			Value:   c.CheckInInterval,
			Message: "must be at least 1",
		})
	}
	if c.TurnTimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "turn_timeout",
			Value:   c.TurnTimeoutSeconds,
			Message: "must be at least 1 second",
		})
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errors = append(errors, ValidationError{
			Field:   "output_dir",
			Value:   c.OutputDir,
			Message: "cannot be empty",
		})
	}

	return errors
}

// validateWorkshop checks workshop-only fields.
func (c *Config) validateWorkshop() []ValidationError {
	var errors []ValidationError

	if c.Mode == ModeWorkshop && strings.TrimSpace(c.Brief) == "" {
		errors = append(errors, ValidationError{
			Field:   "brief",
			Value:   c.Brief,
			Message: "workshop mode requires a brief",
		})
	}

	if c.SourceFile != "" {
		if _, err := os.Stat(c.SourceFile); err != nil {
			errors = append(errors, ValidationError{
				Field:   "source_file",
				Value:   c.SourceFile,
				Message: "file does not exist",
			})
		}
	}

	return errors
}

// validateLogging checks the logging configuration.
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	validLevels := []string{"debug", "info", "warn", "error"}
	if c.Logging.Level != "" && !slices.Contains(validLevels, strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validLevels, ", ")),
		})
	}

	return errors
}
