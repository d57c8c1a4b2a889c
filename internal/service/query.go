package service

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"naratani-inventory/internal/repository"
	"naratani-inventory/pkg/apperr"
	"naratani-inventory/pkg/pagination"
	"naratani-inventory/pkg/validator"

	"github.com/google/uuid"
)

// ListQuery is the paging and sorting part shared by list endpoints.
type ListQuery struct {
	Page      int    `query:"page" validate:"gte=0"`
	Limit     int    `query:"limit" validate:"gte=0"`
	SortBy    string `query:"sortBy"`
	SortOrder string `query:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

func (q ListQuery) params(columns map[string]string) (repository.ListParams, error) {
	if q.SortBy != "" {
		if _, ok := columns[q.SortBy]; !ok {
			keys := make([]string, 0, len(columns))
			for k := range columns {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			param := strings.Join(keys, " ")
			return repository.ListParams{}, apperr.Validation("Validation failed on field 'sortBy'",
				[]*validator.ErrorResponse{{FailedField: "sortBy", Tag: "oneof", Value: param}})
		}
	}
	page, limit := pagination.Normalize(q.Page, q.Limit, pagination.MaxLimit)
	order := q.SortOrder
	if order == "" {
		order = "desc"
	}
	return repository.ListParams{Page: page, Limit: limit, SortBy: q.SortBy, SortOrder: order}, nil
}

// parseOptionalUUID parses s when non-empty; field names the input for the error.
func parseOptionalUUID(s, field string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperr.Validation("Validation failed on field '"+field+"'",
			[]*validator.ErrorResponse{{FailedField: field, Tag: "uuid"}})
	}
	return &id, nil
}

func parseOptionalBool(s string) *bool {
	if s == "" {
		return nil
	}
	v := s == "true"
	return &v
}

// NullableUUID tells an absent JSON field apart from an explicit null.
type NullableUUID struct {
	Set   bool
	Valid bool
	UUID  uuid.UUID
}

func (n *NullableUUID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &n.UUID); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n NullableUUID) Ptr() *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}

// NullableString works like NullableUUID for optional text columns.
type NullableString struct {
	Set   bool
	Valid bool
	Value string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n NullableString) Ptr() *string {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
