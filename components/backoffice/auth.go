package backoffice

import (
	"context"
	"crypto/subtle"
	"slices"
	"strings"
)

// DefaultActionRoles may run actions when no roles are configured.
var DefaultActionRoles = []string{"admin", "operations"}

// Operator is a backoffice account allowed to sign in.
type Operator struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Email     string   `json:"email" yaml:"email"`
	AccessKey string   `json:"access_key" yaml:"access_key"`
	Roles     []string `json:"roles" yaml:"roles"`
}

// Authenticator checks operator credentials.
type Authenticator struct {
	operators map[string]Operator
}

// NewAuthenticator indexes operators by lower-cased email.
func NewAuthenticator(operators []Operator) *Authenticator {
	index := make(map[string]Operator, len(operators))
	for _, op := range operators {
		index[strings.ToLower(strings.TrimSpace(op.Email))] = op
	}
	return &Authenticator{operators: index}
}

// Authenticate returns the operator's viewer context when email and key match.
func (a *Authenticator) Authenticate(_ context.Context, email, accessKey string) (ViewerContext, error) {
	op, ok := a.operators[strings.ToLower(strings.TrimSpace(email))]
	if !ok || op.AccessKey == "" {
		return ViewerContext{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(op.AccessKey), []byte(accessKey)) != 1 {
		return ViewerContext{}, ErrInvalidCredentials
	}
	id := op.ID
	if id == "" {
		id = op.Email
	}
	return ViewerContext{
		UserID: id,
		Name:   op.Name,
		Email:  op.Email,
		Roles:  slices.Clone(op.Roles),
	}, nil
}

// RoleAuthorizer lets any signed-in viewer read tables and restricts actions to ActionRoles.
type RoleAuthorizer struct {
	ViewRoles   []string
	ActionRoles []string
}

var _ Authorizer = RoleAuthorizer{}

// CanViewTable requires a signed-in viewer, and one of ViewRoles when set.
func (a RoleAuthorizer) CanViewTable(_ context.Context, viewer ViewerContext, _ TableDescriptor) bool {
	if viewer.UserID == "" {
		return false
	}
	return len(a.ViewRoles) == 0 || hasAnyRole(viewer, a.ViewRoles)
}

// CanPerformAction requires one of ActionRoles, or DefaultActionRoles when unset.
func (a RoleAuthorizer) CanPerformAction(_ context.Context, viewer ViewerContext, _ TableDescriptor, _ ActionDescriptor) bool {
	if viewer.UserID == "" {
		return false
	}
	roles := a.ActionRoles
	if len(roles) == 0 {
		roles = DefaultActionRoles
	}
	return hasAnyRole(viewer, roles)
}

func hasAnyRole(viewer ViewerContext, roles []string) bool {
	for _, role := range roles {
		if viewer.HasRole(role) {
			return true
		}
	}
	return false
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) CanViewTable(context.Context, ViewerContext, TableDescriptor) bool {
	return true
}

func (allowAllAuthorizer) CanPerformAction(context.Context, ViewerContext, TableDescriptor, ActionDescriptor) bool {
	return true
}
