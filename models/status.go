package models

import "fmt"

const (
	StatusPending      = "pending"
	StatusQuoted       = "quoted"
	StatusPaid         = "paid"
	StatusCompleted    = "completed"
	StatusVerified     = "verified"
	StatusVendorReview = "vendorReview"
	StatusAdminReview  = "adminReview"
	StatusAccepted     = "accepted"
	StatusDone         = "done"
)

var serviceFlow = []string{StatusPending, StatusQuoted, StatusPaid, StatusCompleted}

var problemFlow = []string{
	StatusPending, StatusVendorReview, StatusAdminReview,
	StatusAccepted, StatusDone, StatusPaid, StatusVerified,
}

func flowFor(kind string) []string {
	if kind == KindProblem {
		return problemFlow
	}
	return serviceFlow
}

func stageIndex(kind, status string) int {
	for i, s := range flowFor(kind) {
		if s == status {
			return i
		}
	}
	return -1
}

// NextStatus returns the single next stage for the given kind. A request
// never skips forward more than one stage.
func NextStatus(kind, status string) (string, error) {
	flow := flowFor(kind)
	i := stageIndex(kind, status)
	if i < 0 {
		return "", fmt.Errorf("unknown status %q for kind %q", status, kind)
	}
	if i == len(flow)-1 {
		return "", fmt.Errorf("status %q is terminal for kind %q", status, kind)
	}
	return flow[i+1], nil
}

// NextAdminStatus returns the next stage for an administrative advance.
// The paid stage is off limits in both directions: it is entered by the
// assignment gate and left by code verification, never by an advance.
func NextAdminStatus(kind, status string) (string, error) {
	if status == StatusPaid {
		return "", fmt.Errorf("status %q is left through code verification, not status advance", status)
	}
	next, err := NextStatus(kind, status)
	if err != nil {
		return "", err
	}
	if next == StatusPaid {
		return "", fmt.Errorf("status %q is entered through payment, not status advance", next)
	}
	return next, nil
}

// TerminalStatus is the closing status set by code verification.
func TerminalStatus(kind string) string {
	flow := flowFor(kind)
	return flow[len(flow)-1]
}

// AtOrPastPaid reports whether the request has reached the paid stage.
// Once a vendor is exclusively assigned, administrative resets are refused.
func AtOrPastPaid(kind, status string) bool {
	i := stageIndex(kind, status)
	return i >= 0 && i >= stageIndex(kind, StatusPaid)
}

// CanReset reports whether an administrative reset to pending is allowed.
func CanReset(kind, status string) bool {
	return stageIndex(kind, status) > 0 && !AtOrPastPaid(kind, status)
}
