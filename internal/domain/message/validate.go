package message

// FieldError describes a single validation violation. Field is a dot-path
// into the message ("sender.id", "metadata.timestamp").
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validation error codes.
const (
	CodeRequired     = "required"
	CodeInvalidValue = "invalid_value"
)

// ValidationResult is the outcome of validating a message.
// Errors is nil when the message is valid.
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Validate checks a message against the protocol schema. All violations are
// accumulated rather than failing fast, so a caller sees every problem in
// one pass.
func Validate(m *Message) ValidationResult {
	if m == nil {
		return invalid(FieldError{
			Field:   "message",
			Code:    CodeRequired,
			Message: "message is required",
		})
	}

	var errs []FieldError

	if m.ID == "" {
		errs = append(errs, required("id"))
	}

	switch {
	case m.Type == "":
		errs = append(errs, required("type"))
	case !m.Type.Known():
		errs = append(errs, FieldError{
			Field:   "type",
			Code:    CodeInvalidValue,
			Message: "unknown message type: " + string(m.Type),
		})
	}

	switch {
	case m.Sender == nil:
		errs = append(errs, required("sender"))
	default:
		if m.Sender.ID == "" {
			errs = append(errs, required("sender.id"))
		}
		if m.Sender.Name == "" {
			errs = append(errs, required("sender.name"))
		}
	}

	// Broadcast-capable types may omit the recipient.
	if m.Recipient == nil && !m.Type.BroadcastCapable() {
		errs = append(errs, required("recipient"))
	}

	switch {
	case m.Metadata == nil:
		errs = append(errs, required("metadata"))
	case m.Metadata.Timestamp <= 0:
		errs = append(errs, required("metadata.timestamp"))
	}

	if m.Task != nil {
		if m.Task.ID == "" {
			errs = append(errs, required("task.id"))
		}
		if m.Task.Description == "" {
			errs = append(errs, required("task.description"))
		}
		if !m.Task.Status.Known() {
			errs = append(errs, FieldError{
				Field:   "task.status",
				Code:    CodeInvalidValue,
				Message: "unknown task status: " + string(m.Task.Status),
			})
		}
	}

	if m.Capabilities != nil && m.Capabilities.Required == nil {
		errs = append(errs, required("capabilities.required"))
	}

	if len(errs) > 0 {
		return ValidationResult{Valid: false, Errors: errs}
	}
	return ValidationResult{Valid: true}
}

func invalid(errs ...FieldError) ValidationResult {
	return ValidationResult{Valid: false, Errors: errs}
}

func required(field string) FieldError {
	return FieldError{
		Field:   field,
		Code:    CodeRequired,
		Message: field + " is required",
	}
}
