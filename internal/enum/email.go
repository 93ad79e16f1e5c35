package enum

type EmailType string

const (
	EmailTypeOrderConfirmed  EmailType = "order_confirmed"
	EmailTypePickupCompleted EmailType = "pickup_completed"
	EmailTypeUnknown         EmailType = "unknown"
)

func (t EmailType) String() string {
	return string(t)
}

type ProcessingOutcome string

const (
	OutcomeDispatched     ProcessingOutcome = "dispatched"
	OutcomeRPCFailed      ProcessingOutcome = "rpc_failed"
	OutcomeMissingFields  ProcessingOutcome = "missing_fields"
	OutcomeSkippedUnknown ProcessingOutcome = "skipped_unknown"
	OutcomeIgnoredSender  ProcessingOutcome = "ignored_sender"
	OutcomeDecodeFailed   ProcessingOutcome = "decode_failed"
	OutcomePanicRecovered ProcessingOutcome = "panic_recovered"
)

func (t ProcessingOutcome) String() string {
	return string(t)
}

type EmailSource string

const (
	EmailSourceIMAP    EmailSource = "imap"
	EmailSourceWebhook EmailSource = "webhook"
)

func (t EmailSource) String() string {
	return string(t)
}
