package stats

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord — общий признак некорректной входной записи.
// Его возвращают errors.Is для ParseError и InvalidQuantityError.
var ErrInvalidRecord = errors.New("invalid record")

// ParseError — поле даты записи не удалось интерпретировать.
type ParseError struct {
	RecordID string
	Field    string
	Value    string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("record %q: cannot parse %s %q: %v", e.RecordID, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("record %q: cannot parse %s %q", e.RecordID, e.Field, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is позволяет проверять ошибку через errors.Is(err, ErrInvalidRecord).
func (e *ParseError) Is(target error) bool { return target == ErrInvalidRecord }

// InvalidQuantityError — сумма пожертвования отрицательна или не является числом.
type InvalidQuantityError struct {
	RecordID string
	Field    string
	Value    string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("record %q: invalid %s %q", e.RecordID, e.Field, e.Value)
}

// Is позволяет проверять ошибку через errors.Is(err, ErrInvalidRecord).
func (e *InvalidQuantityError) Is(target error) bool { return target == ErrInvalidRecord }
