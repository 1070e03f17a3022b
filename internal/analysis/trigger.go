package analysis

import (
	"fmt"
	"time"

	"github.com/kozaktomas/frushion/internal/constants"
)

// TriggerKind selects when analysis rounds start.
type TriggerKind string

const (
	// TriggerInterval fires on a fixed period.
	TriggerInterval TriggerKind = "interval"
	// TriggerContinuous fires back to back at the display frame rate.
	TriggerContinuous TriggerKind = "continuous"
	// TriggerManual fires only on Session.Trigger.
	TriggerManual TriggerKind = "manual"
)

// Trigger is a trigger policy.
type Trigger struct {
	Kind      TriggerKind
	Interval  time.Duration
	FrameRate int
}

// Period returns the tick period of the policy, 0 for manual triggers.
func (t Trigger) Period() time.Duration {
	switch t.Kind {
	case TriggerInterval:
		if t.Interval <= 0 {
			return constants.DefaultScoreInterval
		}
		return t.Interval
	case TriggerContinuous:
		fps := t.FrameRate
		if fps <= 0 {
			fps = constants.DefaultFrameRate
		}
		return time.Second / time.Duration(fps)
	default:
		return 0
	}
}

func (t Trigger) String() string {
	switch t.Kind {
	case TriggerInterval:
		return fmt.Sprintf("every %s", t.Period())
	case TriggerContinuous:
		return fmt.Sprintf("continuous (%s per frame)", t.Period())
	default:
		return "manual"
	}
}

// DefaultInterval is the interval trigger period used when none is configured:
// expressions are polled quickly, everything else every few seconds.
func DefaultInterval(mode string) time.Duration {
	if mode == ModeExpression {
		return constants.DefaultExpressionInterval
	}
	return constants.DefaultScoreInterval
}

// ParseTrigger builds a policy from its name.
func ParseTrigger(kind string, interval time.Duration, frameRate int) (Trigger, error) {
	switch TriggerKind(kind) {
	case TriggerInterval, TriggerContinuous, TriggerManual:
		return Trigger{Kind: TriggerKind(kind), Interval: interval, FrameRate: frameRate}, nil
	default:
		return Trigger{}, fmt.Errorf("unknown trigger %q (want interval, continuous or manual)", kind)
	}
}
