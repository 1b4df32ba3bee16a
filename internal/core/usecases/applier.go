package usecases

import (
	"context"
	"log/slog"

	"github.com/lootaura/lootaura/internal/core/domain"
	"github.com/lootaura/lootaura/internal/pkg/metrics"
)

// Outcome classifies one admission decision.
type Outcome string

const (
	OutcomeAdmitted     Outcome = "ok"
	OutcomeStale        Outcome = "stale"
	OutcomeIncompatible Outcome = "incompatible"
	OutcomeInvalid      Outcome = "invalid"
)

// LaneSink receives admitted commits for one lane.
type LaneSink func(domain.Commit)

// ResultApplier gates every incoming async result batch against the
// session's current sequence and intent, deduplicates admitted data, and
// commits it to exactly one of the two independent lanes. Rejection is
// the expected common case under racing fetches, never an error.
type ResultApplier struct {
	session *SessionController
	policy  *IntentPolicy
	onMap   LaneSink
	onList  LaneSink
	log     *slog.Logger
}

// NewResultApplier wires an applier to its session and lane sinks. A nil
// sink means the lane silently discards commits (useful in tests and for
// read-only wiring). A nil logger falls back to slog.Default.
func NewResultApplier(session *SessionController, policy *IntentPolicy, onMap, onList LaneSink, log *slog.Logger) *ResultApplier {
	if log == nil {
		log = slog.Default()
	}
	return &ResultApplier{session: session, policy: policy, onMap: onMap, onList: onList, log: log}
}

// Apply admits or drops one incoming batch for the given lane. Sequence
// and intent are read at admission time, not dispatch time. Exactly one
// sink call happens per admitted batch; zero per dropped batch.
func (a *ResultApplier) Apply(lane domain.Lane, batch domain.ResultBatch) Outcome {
	if batch.Data == nil || (lane != domain.LaneMap && lane != domain.LaneList) {
		a.record(lane, batch, OutcomeInvalid, 0)
		return OutcomeInvalid
	}

	current := a.session.Seq()
	if !isFresh(batch.Seq, current) {
		a.record(lane, batch, OutcomeStale, current)
		return OutcomeStale
	}

	intent := a.session.Intent()
	if !a.policy.Compatible(batch.Cause, intent) {
		a.record(lane, batch, OutcomeIncompatible, current)
		return OutcomeIncompatible
	}

	commit := domain.Commit{
		Data:   Deduplicate(batch.Data),
		Seq:    batch.Seq,
		Source: batch.Cause,
	}
	switch lane {
	case domain.LaneMap:
		if a.onMap != nil {
			a.onMap(commit)
		}
	case domain.LaneList:
		if a.onList != nil {
			a.onList(commit)
		}
	}
	a.record(lane, batch, OutcomeAdmitted, current)
	return OutcomeAdmitted
}

func (a *ResultApplier) record(lane domain.Lane, batch domain.ResultBatch, outcome Outcome, current uint64) {
	metrics.AdmissionOutcomes.WithLabelValues(string(lane), string(outcome)).Inc()

	level := slog.LevelDebug
	if outcome == OutcomeInvalid {
		level = slog.LevelWarn
	}
	a.log.Log(context.Background(), level, "result admission",
		"lane", lane,
		"outcome", outcome,
		"cause", batch.Cause,
		"seq", batch.Seq,
		"current_seq", current,
		"entities", len(batch.Data),
	)
}
