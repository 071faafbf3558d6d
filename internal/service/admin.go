package service

import (
	"context"
	"fmt"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/graphql"
)

// AdminService forwards privileged mutations to the upstream GraphQL API.
// The caller's bearer token travels with every mutation; real authorization
// happens upstream, the admin flag here only gates the HTTP surface.
type AdminService struct {
	gql *graphql.Client
}

// NewAdminService creates an AdminService over the shared GraphQL client.
func NewAdminService(gql *graphql.Client) *AdminService {
	return &AdminService{gql: gql}
}

func (s *AdminService) requireAdmin(ctx context.Context) error {
	sess := auth.SessionFromContext(ctx)
	if sess == nil || sess.User == nil {
		return domain.ErrNotAuthenticated("sign in to manage series data")
	}
	if !sess.IsAdmin {
		return domain.ErrForbidden("admin access required")
	}
	return nil
}

// Entities accepted by the generic CRUD mutations.
var mutableEntities = map[string]string{
	"players": "players",
	"teams":   "teams",
	"matches": "matches",
	"events":  "events",
}

// Create inserts one record into the named collection and returns the
// upstream's echo of the new row.
func (s *AdminService) Create(ctx context.Context, entity string, fields map[string]any) (*graphql.Result, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	table, ok := mutableEntities[entity]
	if !ok {
		return nil, domain.ErrValidation("unknown entity: " + entity)
	}
	return s.gql.Mutate(ctx, graphql.Operation{
		Name: "Create" + table,
		Query: fmt.Sprintf(`
mutation Create($objects: [%sInsertInput!]!) {
  insertInto%sCollection(objects: $objects) {
    records { __typename id }
  }
}`, table, table),
		Variables: map[string]any{"objects": []map[string]any{fields}},
	})
}

// Update patches one record by id.
func (s *AdminService) Update(ctx context.Context, entity, id string, fields map[string]any) (*graphql.Result, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	table, ok := mutableEntities[entity]
	if !ok {
		return nil, domain.ErrValidation("unknown entity: " + entity)
	}
	return s.gql.Mutate(ctx, graphql.Operation{
		Name: "Update" + table,
		Query: fmt.Sprintf(`
mutation Update($id: ID!, $set: %sUpdateInput!) {
  update%sCollection(filter: {id: {eq: $id}}, set: $set, atMost: 1) {
    records { __typename id }
  }
}`, table, table),
		Variables: map[string]any{"id": id, "set": fields},
	})
}

// Delete removes one record by id.
func (s *AdminService) Delete(ctx context.Context, entity, id string) (*graphql.Result, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	table, ok := mutableEntities[entity]
	if !ok {
		return nil, domain.ErrValidation("unknown entity: " + entity)
	}
	return s.gql.Mutate(ctx, graphql.Operation{
		Name: "Delete" + table,
		Query: fmt.Sprintf(`
mutation Delete($id: ID!) {
  deleteFrom%sCollection(filter: {id: {eq: $id}}, atMost: 1) {
    records { __typename id }
  }
}`, table),
		Variables: map[string]any{"id": id},
	})
}
