// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package finalize

import (
	"github.com/danielhkuo/hangouts/consensus"
	"github.com/danielhkuo/hangouts/models"
)

// Outcome is the result of AttemptFinalize. The set of implementations is
// closed: Finalized, AlreadyFinalized, NotReady, Expired, AlreadyTerminal.
type Outcome interface {
	Name() string
	outcome()
}

// Finalized means this call recorded consensus.
type Finalized struct {
	WinningOptionID string
	Result          consensus.Result
}

// AlreadyFinalized means consensus was recorded by another caller.
type AlreadyFinalized struct {
	WinningOptionID *string
}

// NotReady means the poll is still open and short of consensus.
type NotReady struct {
	Result consensus.Result
}

// Expired means this call closed the poll at its deadline without a winner.
type Expired struct{}

// AlreadyTerminal means the poll was already closed for another reason.
type AlreadyTerminal struct {
	Status models.PollStatus
}

func (Finalized) Name() string        { return "finalized" }
func (AlreadyFinalized) Name() string { return "already_finalized" }
func (NotReady) Name() string         { return "not_ready" }
func (Expired) Name() string          { return "expired" }
func (AlreadyTerminal) Name() string  { return "already_terminal" }

func (Finalized) outcome()        {}
func (AlreadyFinalized) outcome() {}
func (NotReady) outcome()         {}
func (Expired) outcome()          {}
func (AlreadyTerminal) outcome()  {}

// Response projects an outcome onto its wire shape.
func Response(o Outcome) models.FinalizeResponse {
	resp := models.FinalizeResponse{Outcome: o.Name()}
	switch o := o.(type) {
	case Finalized:
		winner := o.WinningOptionID
		resp.WinningOptionID = &winner
		status := models.PollConsensusReached
		resp.Status = &status
	case AlreadyFinalized:
		resp.WinningOptionID = o.WinningOptionID
		status := models.PollConsensusReached
		resp.Status = &status
	case NotReady:
		status := models.PollActive
		resp.Status = &status
	case Expired:
		status := models.PollExpired
		resp.Status = &status
	case AlreadyTerminal:
		status := o.Status
		resp.Status = &status
	}
	return resp
}
