package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldApp is the standardized key for the managed application a line concerns.
	FieldApp = "app"
	// FieldStage is the standardized key for the lifecycle stage (download, unpack, launch, wait, render).
	FieldStage = "stage"
	// FieldEventType is the machine-readable event classifier.
	FieldEventType = "event_type"
	// FieldErrorHint is a short operator-facing next step.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRunID identifies one launcher run across its log file and history rows.
	FieldRunID = "run_id"
)
