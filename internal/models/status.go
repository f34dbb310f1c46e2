package models

// ModerationStatus is the trust/visibility state of one content item.
// New content starts Approved: there is no pre-publication review, moderators
// downgrade after the fact.
type ModerationStatus string

const (
	StatusPending     ModerationStatus = "pending"
	StatusApproved    ModerationStatus = "approved"
	StatusQuarantined ModerationStatus = "quarantined"
	StatusRemoved     ModerationStatus = "removed"
)

func (s ModerationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusQuarantined, StatusRemoved:
		return true
	}
	return false
}

// Restricted reports whether the status hides content from regular readers.
func (s ModerationStatus) Restricted() bool {
	return s == StatusQuarantined || s == StatusRemoved
}

type RestrictionType string

const (
	RestrictionQuarantined RestrictionType = "quarantined"
	RestrictionRemoved     RestrictionType = "removed"
	RestrictionRestored    RestrictionType = "restored"
)

// ActionType is the closed vocabulary of audited actions.
type ActionType string

const (
	ActionApprove       ActionType = "approve"
	ActionRemove        ActionType = "remove"
	ActionQuarantine    ActionType = "quarantine"
	ActionRestore       ActionType = "restore"
	ActionFeature       ActionType = "feature"
	ActionUnfeature     ActionType = "unfeature"
	ActionPromote       ActionType = "promote"
	ActionUnpromote     ActionType = "unpromote"
	ActionPin           ActionType = "pin"
	ActionUnpin         ActionType = "unpin"
	ActionChangeRole    ActionType = "change_role"
	ActionResolveReport ActionType = "resolve_report"
	ActionDismissReport ActionType = "dismiss_report"
	ActionEdit          ActionType = "edit"
	ActionDelete        ActionType = "delete"
)

// RestrictionForStatus derives the ledger record type for a transition into
// the given status. Leaving quarantine or removal logs "restored".
func RestrictionForStatus(target ModerationStatus) RestrictionType {
	switch target {
	case StatusQuarantined:
		return RestrictionQuarantined
	case StatusRemoved:
		return RestrictionRemoved
	default:
		return RestrictionRestored
	}
}

// ActionForTransition derives the audit action for a status transition.
func ActionForTransition(from, to ModerationStatus) ActionType {
	switch to {
	case StatusQuarantined:
		return ActionQuarantine
	case StatusRemoved:
		return ActionRemove
	default:
		if from.Restricted() {
			return ActionRestore
		}
		return ActionApprove
	}
}
