package pageservice

import (
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/notionmd/internal/apperr"
)

// Pagination bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ValidateID checks that id is a Notion object id and returns it in the
// canonical dashed form.
func ValidateID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if strings.Contains(id, "/") || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: id %q contains a path separator", apperr.ErrValidation, id)
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: id %q: %w", apperr.ErrValidation, id, err)
	}
	return u.String(), nil
}

// Pagination is a requested window over a database listing.
type Pagination struct {
	Offset int
	Limit  int
}

// Validate checks the window. A limit above MaxLimit is clamped rather
// than rejected.
func (p *Pagination) Validate() error {
	err := validation.ValidateStruct(p,
		validation.Field(&p.Offset, validation.Min(0)),
		validation.Field(&p.Limit, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	p.Limit = min(p.Limit, MaxLimit)
	return nil
}

// ParsePagination parses offset and limit query values. Empty values take
// their defaults.
func ParsePagination(offset, limit string) (Pagination, error) {
	p := Pagination{Offset: 0, Limit: DefaultLimit}
	if offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil {
			return Pagination{}, fmt.Errorf("%w: offset %q is not an integer", apperr.ErrValidation, offset)
		}
		p.Offset = n
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return Pagination{}, fmt.Errorf("%w: limit %q is not an integer", apperr.ErrValidation, limit)
		}
		p.Limit = n
	}
	if err := p.Validate(); err != nil {
		return Pagination{}, err
	}
	return p, nil
}
