package notification

// Notification kinds and outcomes reported to the metrics collector
const (
	KindChange = "change"
	KindDigest = "digest"

	OutcomeSent       = "sent"
	OutcomeEdited     = "edited"
	OutcomeSuppressed = "suppressed"
	OutcomeSkipped    = "skipped"
	OutcomeFailed     = "failed"
)

// DispatchReport summarises one change dispatch pass
type DispatchReport struct {
	Sent       int `json:"sent"`
	Suppressed int `json:"suppressed"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// DigestReport summarises one digest pass. Handled holds the users the daily
// pass attempted, so the refresh pass can leave them alone.
type DigestReport struct {
	Sent    int            `json:"sent"`
	Edited  int            `json:"edited"`
	Skipped int            `json:"skipped"`
	Failed  int            `json:"failed"`
	Handled map[int64]bool `json:"-"`
}

func newDigestReport() DigestReport {
	return DigestReport{Handled: make(map[int64]bool)}
}

type publishResult int

const (
	publishFailed publishResult = iota
	publishEdited
	publishSent
)
