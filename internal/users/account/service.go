// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package account

import (
	"context"
	"log/slog"

	"github.com/toileapp/toile/internal/graph"
	"github.com/toileapp/toile/internal/platform/apperr"
	"github.com/toileapp/toile/internal/platform/constants"
	"github.com/toileapp/toile/internal/platform/sec"
	"github.com/toileapp/toile/internal/platform/validate"
	"github.com/toileapp/toile/internal/platform/viewer"
	"github.com/toileapp/toile/pkg/nameutil"
)

// PersonDirectory is the slice of the graph service the account flow needs:
// signup verifies the claimed node, and the signup search lists candidates.
type PersonDirectory interface {
	PersonByNodeID(ctx context.Context, nodeID string) (*graph.Person, error)
	Persons(ctx context.Context) ([]graph.Person, error)
}

// Service implements registration, login, sessions, and the signup search.
type Service struct {
	repo     Repository
	sessions SessionStore
	persons  PersonDirectory
	logger   *slog.Logger
}

func NewService(repo Repository, sessions SessionStore, persons PersonDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, sessions: sessions, persons: persons, logger: logger}
}

type RegisterInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	PersonNodeID string `json:"personNodeId"`

	// Older clients send the identifier in snake_case; both spellings bind.
	PersonNodeIDAlt string `json:"person_node_id"`
}

// Register creates an account bound to one existing, unclaimed Person node.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Account, error) {
	if input.PersonNodeID == "" {
		input.PersonNodeID = input.PersonNodeIDAlt
	}

	v := &validate.Validator{}
	v.Required("email", input.Email).Email("email", input.Email)
	v.Required("password", input.Password).MinLen("password", input.Password, 6)
	v.Required("personNodeId", input.PersonNodeID).GraphID("personNodeId", input.PersonNodeID)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.persons.PersonByNodeID(ctx, input.PersonNodeID); err != nil {
		if apperr.IsNotFound(err) {
			return nil, validate.RequiredError("personNodeId", "No person matches this identifier")
		}
		return nil, err
	}

	if _, err := s.repo.FindByPersonNodeID(ctx, input.PersonNodeID); err == nil {
		return nil, apperr.ValidationError("This person is already associated with an account")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	a := &Account{
		Email:           input.Email,
		PasswordHash:    hash,
		PersonNodeID:    input.PersonNodeID,
		VisibilityLevel: DefaultVisibilityLevel,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		slog.String("email", a.Email),
		slog.String("person_node_id", a.PersonNodeID),
	)
	return a, nil
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and opens a new session, returning the raw
// session token to be set as a cookie. The failure message never says which
// of the two credentials was wrong.
func (s *Service) Login(ctx context.Context, input LoginInput) (*Account, string, error) {
	v := &validate.Validator{}
	if err := v.Required("email", input.Email).Required("password", input.Password).Err(); err != nil {
		return nil, "", err
	}

	a, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, "", apperr.Unauthorized("Invalid email or password")
		}
		return nil, "", err
	}
	if !sec.CheckPasswordHash(input.Password, a.PasswordHash) {
		return nil, "", apperr.Unauthorized("Invalid email or password")
	}

	token, err := sec.GenerateSecureToken(constants.SessionTokenLength)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	session := &Session{
		Email:           a.Email,
		PersonNodeID:    a.PersonNodeID,
		VisibilityLevel: a.VisibilityLevel,
	}
	if err := s.sessions.Set(ctx, sec.HashToken(token), session, constants.SessionTTL); err != nil {
		return nil, "", err
	}

	s.logger.Info("login", slog.String("email", a.Email))
	return a, token, nil
}

// ResolveSession turns a raw cookie token into a viewer identity. It
// implements the middleware's session resolver.
func (s *Service) ResolveSession(ctx context.Context, token string) (viewer.Context, error) {
	session, err := s.sessions.Get(ctx, sec.HashToken(token))
	if err != nil {
		return viewer.Context{}, err
	}
	return viewer.Authenticated(session.PersonNodeID, session.VisibilityLevel, session.Email), nil
}

// Logout discards the session behind the token. Unknown tokens are a no-op,
// so logout is idempotent.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, sec.HashToken(token))
}

// Profile returns the account behind an authenticated viewer.
func (s *Service) Profile(ctx context.Context, email string) (*Account, error) {
	return s.repo.FindByEmail(ctx, email)
}

// PersonOption is one signup candidate: a person who exists in the graph and
// is not yet bound to any account.
type PersonOption struct {
	NodeID string `json:"nodeId"`
	Name   string `json:"name"`
}

// AvailableForSignup lists unclaimed persons whose name matches the
// fragment, accent- and case-insensitively. Persons without a valid node id
// cannot be claimed and are excluded.
func (s *Service) AvailableForSignup(ctx context.Context, fragment string) ([]PersonOption, error) {
	persons, err := s.persons.Persons(ctx)
	if err != nil {
		return nil, err
	}
	claimed, err := s.repo.ClaimedNodeIDs(ctx)
	if err != nil {
		return nil, err
	}

	options := make([]PersonOption, 0)
	for _, p := range persons {
		if !validate.IsGraphID(p.NodeID) || claimed[p.NodeID] {
			continue
		}
		if !nameutil.Matches(p.Name, fragment) {
			continue
		}
		options = append(options, PersonOption{NodeID: p.NodeID, Name: p.Name})
	}
	return options, nil
}
