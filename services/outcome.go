package services

// Outcome is the terminal result of handling one change event. Every outcome
// is final: sources acknowledge the event whatever the outcome.
type Outcome string

const (
	OutcomeSent                  Outcome = "sent"
	OutcomeNoPayload             Outcome = "no_payload"
	OutcomeMissingSnapshot       Outcome = "missing_snapshot"
	OutcomeStatusUnchanged       Outcome = "status_unchanged"
	OutcomeMissingRecipientID    Outcome = "missing_recipient_id"
	OutcomeRecipientUnresolvable Outcome = "recipient_unresolvable"
	OutcomeUnmappedStatus        Outcome = "unmapped_status"
	OutcomeDeliveryFailed        Outcome = "delivery_failed"
	OutcomeUnsupportedEvent      Outcome = "unsupported_event"
	OutcomeInternalError         Outcome = "internal_error"
)

// Delivered reports whether the push transport accepted the message.
func (o Outcome) Delivered() bool {
	return o == OutcomeSent
}
