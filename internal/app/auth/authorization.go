package auth

import (
	"github.com/emrekaya/classline/internal/app/models"
)

// Action is an operation subject to role-based permission checks.
type Action string

const (
	// ActionManageAccounts covers inviting and deactivating accounts
	ActionManageAccounts Action = "manage_accounts"
	// ActionManageRoster covers classes, students and guardian links
	ActionManageRoster Action = "manage_roster"
	// ActionInitiateConversation covers creating a conversation toward an audience
	ActionInitiateConversation Action = "initiate_conversation"
	// ActionChangeConversationStatus covers OPEN/CLOSED transitions
	ActionChangeConversationStatus Action = "change_conversation_status"
)

// Can is the single permission rule table. Roles are a closed set; anything
// not listed here is denied.
func Can(role models.RoleType, action Action) bool {
	switch action {
	case ActionManageAccounts, ActionManageRoster:
		return role == models.RoleAdmin || role == models.RoleSecretary
	case ActionInitiateConversation, ActionChangeConversationStatus:
		return role.IsStaff()
	}
	return false
}
