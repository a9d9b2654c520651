package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Authenticate Phase = iota
	FetchSubscriptions
	FetchMultireddits
	SubscribeSubreddits
	CreateMultireddits
	Archive
	Export
)

func (p Phase) String() string {
	switch p {
	case Authenticate:
		return "authenticate"
	case FetchSubscriptions:
		return "fetch_subscriptions"
	case FetchMultireddits:
		return "fetch_multireddits"
	case SubscribeSubreddits:
		return "subscribe_subreddits"
	case CreateMultireddits:
		return "create_multireddits"
	case Archive:
		return "archive"
	case Export:
		return "export"
	default:
		return ""
	}
}

func authenticateUpdate(step, total int, account string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Authenticate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Logging in as %s...", account),
	}
}

func fetchSubscriptionsUpdate(page int, account string, found int) ProgressUpdate {
	if page == 1 {
		return ProgressUpdate{
			Phase:   FetchSubscriptions,
			Step:    page,
			Message: fmt.Sprintf("Fetching subscriptions for %s...", account),
		}
	}
	return ProgressUpdate{
		Phase:   FetchSubscriptions,
		Step:    page,
		Message: fmt.Sprintf("Fetching subscriptions for %s (page %d, %d so far)...", account, page, found),
	}
}

func fetchMultiredditsUpdate(account string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMultireddits,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching multireddits for %s...", account),
	}
}

func subscribeUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubscribeSubreddits,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] r/%s", step, total, name),
	}
}

func createMultiUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateMultireddits,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Creating multireddit: %s", step, total, name),
	}
}

func archiveFailedUpdate(err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Archive,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Failed to archive run: %v", err),
	}
}

func exportAccountUpdate(account string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Export,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Exporting account data for %s...", account),
	}
}

func exportWrittenUpdate(path string, subs, multis int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Export,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Wrote %d subreddits and %d multireddits to %s", subs, multis, path),
	}
}
