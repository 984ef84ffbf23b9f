package workflow

// NotificationSpec describes who hears about a committed transition and how
// the message reads. Recipients are coarse roles; resolving them to concrete
// deliverable identities belongs to the dispatcher collaborator.
type NotificationSpec struct {
	Recipients []Role
	Template   string
}

// notificationMap is the static transition -> notification table. Transitions
// absent from the table notify nobody.
var notificationMap = map[string]NotificationSpec{
	"complete_generation": {
		Recipients: []Role{RoleMarketing},
		Template:   "Draft {{draft_id}} finished generating and is ready for review (quality score {{quality_score}}).",
	},
	"fail_generation": {
		Recipients: []Role{RoleMarketing},
		Template:   "Generation failed for draft {{draft_id}}: {{failure_reason}}.",
	},
	"submit_for_approval": {
		Recipients: []Role{RoleBroker},
		Template:   "Draft {{draft_id}} is awaiting your approval.",
	},
	"approve": {
		Recipients: []Role{RoleMarketing},
		Template:   "Draft {{draft_id}} was approved and can be distributed.",
	},
	"request_revisions": {
		Recipients: []Role{RoleMarketing},
		Template:   "The broker requested revisions on draft {{draft_id}}: {{comments}}.",
	},
	"distribute": {
		Recipients: []Role{RoleMarketing, RoleBroker},
		Template:   "Draft {{draft_id}} was distributed to {{channels}}.",
	},
}

// NotificationFor returns the notification spec for a transition, if any
func NotificationFor(transition string) (NotificationSpec, bool) {
	spec, ok := notificationMap[transition]
	return spec, ok
}
