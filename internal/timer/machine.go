package timer

import (
	"github.com/baiyoke1207/spellcast-backend/internal/apperror"
)

type Mode string

const (
	ModeIdle      Mode = "idle"
	ModeGrace     Mode = "grace"
	ModeVoting    Mode = "voting"
	ModeCountdown Mode = "countdown"
	ModeFixed     Mode = "fixed"
)

// Signal - what a tick or a vote caused, beyond the second-by-second count.
type Signal string

const (
	SignalNone             Signal = ""
	SignalVotingEnabled    Signal = "voting_enabled"
	SignalCountdownStarted Signal = "countdown_started"
	SignalExpired          Signal = "expired"
)

// Machine - the per-room timer state. Exactly one mode is active at a time;
// every transition fully resets the counters and votes of the prior mode.
// The machine is not goroutine-safe: callers hold the owning room's lock.
type Machine struct {
	mode      Mode
	remaining int
	votes     map[string]struct{}
	required  int

	graceSeconds     int
	countdownSeconds int
}

func NewMachine(graceSeconds, countdownSeconds int) *Machine {
	return &Machine{
		mode:             ModeIdle,
		votes:            make(map[string]struct{}),
		graceSeconds:     graceSeconds,
		countdownSeconds: countdownSeconds,
	}
}

func (that *Machine) Mode() Mode     { return that.mode }
func (that *Machine) Remaining() int { return that.remaining }
func (that *Machine) Votes() int     { return len(that.votes) }
func (that *Machine) Required() int  { return that.required }

// StartGrace - enters the voting discipline: a warm-up window during which
// no vote or countdown is active.
func (that *Machine) StartGrace(required int) {
	that.reset()
	that.mode = ModeGrace
	that.remaining = that.graceSeconds
	that.required = required
}

// StartFixed - enters the fixed discipline: an immediate countdown, no grace
// or voting.
func (that *Machine) StartFixed(seconds int) {
	that.reset()
	that.mode = ModeFixed
	that.remaining = seconds
}

// GraceDuration - the configured warm-up length, for start broadcasts.
func (that *Machine) GraceDuration() int { return that.graceSeconds }

// CountdownDuration - the configured post-vote countdown length.
func (that *Machine) CountdownDuration() int { return that.countdownSeconds }

// SetRequired - recomputes the vote threshold when the player count changes.
// Reaching an already-satisfied threshold starts the countdown.
func (that *Machine) SetRequired(required int) Signal {
	that.required = required

	if that.mode == ModeVoting && len(that.votes) >= that.required {
		that.startCountdown()
		return SignalCountdownStarted
	}

	return SignalNone
}

// Vote - casts one vote toward starting the countdown. A repeat vote is
// rejected; a fresh vote after the threshold was already reached is a no-op.
func (that *Machine) Vote(playerID string) (Signal, error) {
	switch that.mode {
	case ModeVoting:
	case ModeCountdown:
		if _, voted := that.votes[playerID]; voted {
			return SignalNone, apperror.ErrAlreadyVoted
		}
		return SignalNone, nil
	case ModeIdle, ModeGrace, ModeFixed:
		return SignalNone, apperror.ErrNotVoting
	}

	if _, voted := that.votes[playerID]; voted {
		return SignalNone, apperror.ErrAlreadyVoted
	}

	that.votes[playerID] = struct{}{}

	if len(that.votes) >= that.required {
		that.startCountdown()
		return SignalCountdownStarted, nil
	}

	return SignalNone, nil
}

// Tick - advances the machine by one second. Returns the mode the tick
// applied to, the seconds now remaining and any transition it caused.
func (that *Machine) Tick() (Mode, int, Signal) {
	mode := that.mode

	switch mode {
	case ModeIdle, ModeVoting:
		return mode, that.remaining, SignalNone

	case ModeGrace:
		that.remaining--
		if that.remaining <= 0 {
			that.mode = ModeVoting
			that.remaining = 0
			that.votes = make(map[string]struct{})
			return mode, 0, SignalVotingEnabled
		}

		return mode, that.remaining, SignalNone

	case ModeCountdown, ModeFixed:
		that.remaining--
		if that.remaining <= 0 {
			that.reset()
			return mode, 0, SignalExpired
		}

		return mode, that.remaining, SignalNone
	}

	return mode, that.remaining, SignalNone
}

// Stop - cancels whatever was active and returns to idle.
func (that *Machine) Stop() {
	that.reset()
}

func (that *Machine) startCountdown() {
	that.mode = ModeCountdown
	that.remaining = that.countdownSeconds
}

func (that *Machine) reset() {
	that.mode = ModeIdle
	that.remaining = 0
	that.required = 0
	that.votes = make(map[string]struct{})
}
