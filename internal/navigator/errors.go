package navigator

import "errors"

var (
	// ErrValidation marks input rejected at the boundary (empty name, incomplete quiz, ...).
	ErrValidation = errors.New("invalid input")
	// ErrWrongStage marks an event that does not apply to the current stage.
	ErrWrongStage = errors.New("event not valid in current stage")
	// ErrBusy marks a submission while a collaborator call is outstanding.
	ErrBusy = errors.New("analysis in progress")
	// ErrCollaborator marks a failed, unparsable or non-conforming collaborator response.
	ErrCollaborator = errors.New("collaborator call failed")
)
