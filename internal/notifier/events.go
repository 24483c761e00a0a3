package notifier

// Server-to-client event names published by the portal's domain code. The
// notifier does not interpret them; the catalog lives here so callers and
// clients agree on spelling.
const (
	EventStudentRegistered  = "student:registered"
	EventEntryStatusChanged = "entry:statusChanged"
	EventCommentAdded       = "comment:added"
	EventTaskCompleted      = "task:completed"
	EventDoubtCreated       = "doubt:created"
	EventDoubtAnswered      = "doubt:answered"
	EventDoubtStatusChanged = "doubt:statusChanged"
	EventDoubtResolved      = "doubt:resolved"
	EventScheduleCreated    = "schedule:created"
	EventScheduleUpdated    = "schedule:updated"
	EventScheduleCancelled  = "schedule:cancelled"
	EventQuestionAdded      = "task:question_added"
	EventQuestionAnswered   = "task:question_answered"
)
