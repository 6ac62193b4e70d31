package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emrekaya/classline/internal/app/models"
)

func TestCan(t *testing.T) {
	tests := []struct {
		role   models.RoleType
		action Action
		want   bool
	}{
		{models.RoleAdmin, ActionManageAccounts, true},
		{models.RoleSecretary, ActionManageAccounts, true},
		{models.RoleTeacher, ActionManageAccounts, false},
		{models.RoleParent, ActionManageAccounts, false},

		{models.RoleAdmin, ActionManageRoster, true},
		{models.RoleSecretary, ActionManageRoster, true},
		{models.RoleTeacher, ActionManageRoster, false},

		{models.RoleAdmin, ActionInitiateConversation, true},
		{models.RoleSecretary, ActionInitiateConversation, true},
		{models.RoleTeacher, ActionInitiateConversation, true},
		{models.RoleParent, ActionInitiateConversation, false},
		{models.RoleStudent, ActionInitiateConversation, false},

		{models.RoleTeacher, ActionChangeConversationStatus, true},
		{models.RoleParent, ActionChangeConversationStatus, false},

		{models.RoleAdmin, Action("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.role, tt.action))
		})
	}
}
