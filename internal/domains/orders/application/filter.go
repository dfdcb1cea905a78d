package application

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/potgreen/nursery-backend/internal/domains/orders/domain"
	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// StatusAll disables status filtering.
	StatusAll = "all"

	dateLayout = "2006-01-02"
)

// listCriteria is a validated listing request.
type listCriteria struct {
	query    ports.ListQuery
	page     int
	pageSize int
}

func parseListInput(input ports.ListOrdersInput) (listCriteria, error) {
	fields := map[string]string{}
	criteria := listCriteria{page: input.Page, pageSize: input.PageSize}

	if criteria.page == 0 {
		criteria.page = 1
	}
	if criteria.pageSize == 0 {
		criteria.pageSize = DefaultPageSize
	}
	pageSizeValid := criteria.pageSize >= 1 && criteria.pageSize <= MaxPageSize
	switch {
	case criteria.page < 1:
		fields["page"] = "must be 1 or greater"
	case pageSizeValid && criteria.page-1 > math.MaxInt/criteria.pageSize:
		fields["page"] = "is too large"
	}
	if !pageSizeValid {
		fields["limit"] = fmt.Sprintf("must be between 1 and %d", MaxPageSize)
	}
	for _, name := range input.Malformed {
		if name == "page" || name == "limit" {
			fields[name] = "must be an integer"
		}
	}

	if raw := strings.TrimSpace(input.Status); raw != "" && !strings.EqualFold(raw, StatusAll) {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			fields["status"] = fmt.Sprintf("unknown status %q", raw)
		} else {
			criteria.query.Status = &status
		}
	}

	from, err := parseBound(input.StartDate, false)
	if err != nil {
		fields["startDate"] = err.Error()
	}
	until, err := parseBound(input.EndDate, true)
	if err != nil {
		fields["endDate"] = err.Error()
	}
	if from != nil && until != nil && !from.Before(*until) {
		fields["dateRange"] = "startDate must not be after endDate"
	}
	criteria.query.CreatedFrom = from
	criteria.query.CreatedUntil = until
	criteria.query.Search = strings.TrimSpace(input.Search)

	if len(fields) > 0 {
		return listCriteria{}, &ValidationError{Fields: fields}
	}
	criteria.query.Offset = (criteria.page - 1) * criteria.pageSize
	criteria.query.Limit = criteria.pageSize
	return criteria, nil
}

// parseBound converts a date or instant into a query bound. End bounds are
// exclusive, so a date-only end covers its whole day and an instant end is
// moved one nanosecond forward.
func parseBound(raw string, end bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if day, err := time.Parse(dateLayout, raw); err == nil {
		if end {
			day = day.AddDate(0, 0, 1)
		}
		return &day, nil
	}
	instant, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", raw)
	}
	instant = instant.UTC()
	if end {
		instant = instant.Add(time.Nanosecond)
	}
	return &instant, nil
}

// ValidationError lists the offending request fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, key := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return "invalid order request: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
