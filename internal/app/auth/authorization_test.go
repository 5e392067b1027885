package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nishan/applygate/internal/app/models"
)

func TestCanAdmin(t *testing.T) {
	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	other := &models.Applicant{ID: 10, CreatedBy: 99}

	for _, action := range []Action{ActionCreate, ActionList, ActionRead, ActionUpdate, ActionDelete, ActionAnalytics} {
		assert.True(t, Can(admin, action, other), "admin should be allowed to %s", action)
	}
}

func TestCanDocumentationOfficer(t *testing.T) {
	officer := &models.User{ID: 5, Role: models.RoleDocumentationOfficer}
	own := &models.Applicant{ID: 10, CreatedBy: 5}
	other := &models.Applicant{ID: 11, CreatedBy: 99}

	tests := []struct {
		name      string
		action    Action
		applicant *models.Applicant
		want      bool
	}{
		{"create", ActionCreate, nil, true},
		{"list", ActionList, nil, true},
		{"analytics", ActionAnalytics, nil, true},
		{"read own", ActionRead, own, true},
		{"read other", ActionRead, other, false},
		{"update own", ActionUpdate, own, true},
		{"update other", ActionUpdate, other, false},
		{"delete own", ActionDelete, own, false},
		{"delete other", ActionDelete, other, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(officer, tt.action, tt.applicant))
		})
	}
}

func TestCanEdgeCases(t *testing.T) {
	officer := &models.User{ID: 5, Role: models.RoleDocumentationOfficer}

	assert.False(t, Can(nil, ActionList, nil), "nil actor is never allowed")
	assert.False(t, Can(officer, ActionRead, nil), "record actions require an applicant")
	assert.False(t, Can(&models.User{ID: 7, Role: "visitor"}, ActionList, nil), "unknown roles are denied")
}
