// Package ta implements the Terminal Authentication protocol core: an
// explicit state machine dispatching APDU commands to the five handlers
// of BSI TR-03110's TA v2, coordinating the certificate model, the
// validation rules, the trust-point store, and the authorization store.
// There is no inheritance hierarchy: a concrete struct owns an explicit
// state enum, a table of handlers keyed by (state, INS, P1P2), and
// composed-in trust-point and authorization-store values.
package ta

import (
	"io"

	"github.com/jmhodges/clock"

	"github.com/cardsim/termauth/cvc"
	terrors "github.com/cardsim/termauth/errors"
	"github.com/cardsim/termauth/log"
	"github.com/cardsim/termauth/metrics"
	"github.com/cardsim/termauth/trust"
	"github.com/cardsim/termauth/verify"
)

// commandKey identifies a dispatch-table entry by the state it must be
// issued from, plus its INS and P1P2.
type commandKey struct {
	state State
	ins   byte
	p1p2  uint16
}

type handlerFunc func(sm *StateMachine, cmd Command) Response

// StateMachine drives one TA session end to end. It is not safe for
// concurrent use: dispatch is single-threaded and cooperative, and
// callers (the surrounding card dispatcher) are relied on to deliver
// one APDU at a time.
type StateMachine struct {
	state State

	session SessionState

	trust    trust.Store
	chipDate cvc.Date
	security SecurityStatus
	verifier verify.Verifier

	rand io.Reader
	clk  clock.Clock

	metrics metrics.Scope
	logger  log.Logger
}

// Config bundles a StateMachine's external collaborators, so New
// doesn't take an unreadable parameter list.
type Config struct {
	Trust    trust.Store
	ChipDate cvc.Date
	Security SecurityStatus
	Verifier verify.Verifier
	Rand     io.Reader
	Clock    clock.Clock
	Metrics  metrics.Scope
	Logger   log.Logger
}

// New returns a StateMachine in its IDLE state.
func New(cfg Config) *StateMachine {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoopScope()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return &StateMachine{
		state:    StateIdle,
		session:  freshSessionState(),
		trust:    cfg.Trust,
		chipDate: cfg.ChipDate,
		security: cfg.Security,
		verifier: cfg.Verifier,
		rand:     cfg.Rand,
		clk:      cfg.Clock,
		metrics:  cfg.Metrics.NewScope("ta"),
		logger:   cfg.Logger,
	}
}

// State returns the machine's current state.
func (sm *StateMachine) State() State { return sm.state }

// ChipDate returns the machine's current chip-internal date.
func (sm *StateMachine) ChipDate() cvc.Date { return sm.chipDate }

// Reset clears the TA session state and returns the machine to IDLE.
// The chip date, the trust-point store, and the shared SecurityStatus
// are untouched: they are owned by the wider card, not by this session.
func (sm *StateMachine) Reset() {
	sm.state = StateIdle
	sm.session = freshSessionState()
}

// dispatchTable is keyed by the state a command is legal from. Set DST
// is intentionally absent from this keying scheme and checked first in
// Dispatch: its algorithm never inspects the current FSM state, and a
// terminal replaying a full session without an intervening reset only
// works if a second Set DST is accepted from AUTHENTICATED, not
// rejected by state gating before External Authenticate ever runs.
var dispatchTable = map[commandKey]handlerFunc{
	{StateAnchorSet, InsPerformSecurityOperation, P1P2PSOVerifyCertificate}: (*StateMachine).handlePSOVerifyCertificate,
	{StateAnchorSet, InsManageSecurityEnvironment, P1P2SetAT}:               (*StateMachine).handleSetAT,
	{StateChainBuilt, InsGetChallenge, P1P2Zero}:                            (*StateMachine).handleGetChallenge,
	{StateChallenged, InsExternalAuthenticate, P1P2Zero}:                    (*StateMachine).handleExternalAuthenticate,
}

// nextState is consulted only on a handler's success; failures never
// advance the state.
var nextState = map[commandKey]State{
	{StateAnchorSet, InsPerformSecurityOperation, P1P2PSOVerifyCertificate}: StateAnchorSet,
	{StateAnchorSet, InsManageSecurityEnvironment, P1P2SetAT}:               StateChainBuilt,
	{StateChainBuilt, InsGetChallenge, P1P2Zero}:                            StateChallenged,
	{StateChallenged, InsExternalAuthenticate, P1P2Zero}:                    StateAuthenticated,
}

// Dispatch routes cmd to its handler and returns the response APDU,
// advancing state on success.
func (sm *StateMachine) Dispatch(cmd Command) Response {
	started := sm.clk.Now()
	resp := sm.dispatch(cmd)
	sm.metrics.TimingDuration("handler_duration", sm.clk.Now().Sub(started))
	sm.metrics.Inc("responses."+statusLabel(resp.Status), 1)
	sm.logger.Audit(resp.Reason)
	return resp
}

func statusLabel(sw terrors.StatusWord) string {
	switch sw {
	case terrors.SW9000:
		return "ok"
	default:
		return "error"
	}
}

func (sm *StateMachine) dispatch(cmd Command) Response {
	if !cmd.SecureMessaged {
		return failure(terrors.NotSecureMessagedError("APDU did not arrive over secure messaging"))
	}

	if cmd.INS == InsManageSecurityEnvironment && cmd.P1P2 == P1P2SetDST {
		resp := sm.handleSetDST(cmd)
		if resp.Status == terrors.SW9000 {
			sm.state = StateAnchorSet
		}
		return resp
	}

	key := commandKey{sm.state, cmd.INS, cmd.P1P2}
	handler, ok := dispatchTable[key]
	if !ok {
		if isKnownCommand(cmd) {
			return failure(terrors.ConditionsNotSatisfiedError("command not legal in state %s", sm.state))
		}
		return failure(terrors.WrongAPDUTypeError("unrecognized command INS=%#x P1P2=%#x", cmd.INS, cmd.P1P2))
	}

	resp := handler(sm, cmd)
	if resp.Status == terrors.SW9000 {
		sm.state = nextState[key]
	}
	return resp
}

// isKnownCommand reports whether cmd names one of the five TA commands
// in any of their legal states, used only to choose between 6985
// (known command, wrong order) and 6FFF (unrecognized command) when the
// state-keyed dispatch table has no entry.
func isKnownCommand(cmd Command) bool {
	switch {
	case cmd.INS == InsManageSecurityEnvironment && cmd.P1P2 == P1P2SetDST:
		return true
	case cmd.INS == InsManageSecurityEnvironment && cmd.P1P2 == P1P2SetAT:
		return true
	case cmd.INS == InsPerformSecurityOperation && cmd.P1P2 == P1P2PSOVerifyCertificate:
		return true
	case cmd.INS == InsGetChallenge && cmd.P1P2 == P1P2Zero:
		return true
	case cmd.INS == InsExternalAuthenticate && cmd.P1P2 == P1P2Zero:
		return true
	default:
		return false
	}
}

// TAInfoVersion is the protocol version TAInfo emission carries into
// EF.CardAccess/EF.CardSecurity.
const TAInfoVersion = 2

// TAInfo returns the (OID, version) pair describing this TA core's
// protocol version, for assembly into a SecInfo SEQUENCE by the card's
// EF.CardAccess/EF.CardSecurity builder (an external collaborator not
// owned by this package).
func (sm *StateMachine) TAInfo() (cvc.OID, int) {
	return cvc.OIDTA, TAInfoVersion
}
