package auth

import (
	"github.com/nishan/applygate/internal/app/models"
)

// Action enumerates the operations subject to access control
type Action string

const (
	ActionCreate    Action = "create"
	ActionList      Action = "list"
	ActionRead      Action = "read"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionAnalytics Action = "analytics"
)

// Can reports whether the actor may perform the action on the applicant.
// Admins can do everything. Documentation officers can create and list,
// and can read or update only applicants they created. Deletion is
// admin-only. The applicant argument is ignored for actions that do not
// target a specific record.
func Can(actor *models.User, action Action, applicant *models.Applicant) bool {
	if actor == nil {
		return false
	}

	if actor.Role == models.RoleAdmin {
		return true
	}

	if actor.Role != models.RoleDocumentationOfficer {
		return false
	}

	switch action {
	case ActionCreate, ActionList, ActionAnalytics:
		return true
	case ActionRead, ActionUpdate:
		return applicant != nil && applicant.CreatedBy == actor.ID
	case ActionDelete:
		return false
	}

	return false
}
