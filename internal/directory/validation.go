package directory

import "fmt"

// InvalidArgumentError reports a caller mistake: bad paging values or a
// malformed IFSC code. It is surfaced as-is rather than silently clamped so
// behavior stays predictable.
type InvalidArgumentError struct {
	Field   string
	Message string
}

func (e InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// validatePaging enforces page >= 1 and pageSize in [1,100].
func validatePaging(page, pageSize int) error {
	if page < 1 {
		return InvalidArgumentError{Field: "page", Message: "page must be >= 1"}
	}
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return InvalidArgumentError{
			Field:   "page_size",
			Message: fmt.Sprintf("page_size must be between %d and %d", MinPageSize, MaxPageSize),
		}
	}
	return nil
}
