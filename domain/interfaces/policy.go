package interfaces

import "ai_testgen/domain/entities"

// PriorityPolicy assigns a priority to a generated test case
type PriorityPolicy interface {
	// Priority returns the priority for a case about element of category t.
	// el is nil for aggregate page-level cases.
	Priority(t entities.ElementType, el *entities.Element) entities.Priority

	// FormPriority returns the priority for a form submission case
	FormPriority(form entities.Form) entities.Priority
}
