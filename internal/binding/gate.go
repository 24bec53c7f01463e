package binding

import (
	"log"

	"recpick/internal/domain"
	"recpick/internal/eventbus"
)

// gate lets through only the change events raised by st. Every other change
// on the field, including the widget's native one, stops here.
func gate(st *State) eventbus.Interceptor {
	return func(e domain.DomainEvent) bool {
		change, ok := e.(domain.ChangeEvent)
		if !ok {
			return true
		}
		if change.Tag == st.tag {
			return true
		}
		log.Printf("Suppressed untagged change on field %s", change.FieldID)
		return false
	}
}
