package viamtictactoe

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"go.uber.org/multierr"

	"go.viam.com/rdk/logging"
)

var (
	ErrNoFrame       = errors.New("no frame")
	ErrCommunication = errors.New("communication error")
)

// Outcome is how a turn ended.
type Outcome string

const (
	OutcomePlayed       Outcome = "played"
	OutcomeComputerWon  Outcome = "computer-won"
	OutcomeOpponentWon  Outcome = "opponent-won"
	OutcomeDraw         Outcome = "draw"
	OutcomeUndetermined Outcome = "undetermined"
)

type TurnResult struct {
	Outcome Outcome
	Board   Board // zero when Outcome is OutcomeUndetermined
	Move    Move
	Tactic  Tactic
	Command string // wire string sent, empty when nothing was sent
}

// Session owns the per-game state: the acquirer with its locked region and the new-piece counter.
type Session struct {
	acquirer  *Acquirer
	frames    FrameSource
	transport Transport
	rng       Rand
	logger    logging.Logger

	computer, opponent Symbol

	mu       sync.Mutex
	newPiece int
}

func NewSession(acquirer *Acquirer, frames FrameSource, transport Transport, computer Symbol, rng Rand, logger logging.Logger) (*Session, error) {
	if computer != Black && computer != White {
		return nil, fmt.Errorf("computer must play B or W, not %q", computer)
	}
	return &Session{
		acquirer:  acquirer,
		frames:    frames,
		transport: transport,
		rng:       rng,
		logger:    logger,
		computer:  computer,
		opponent:  computer.Opponent(),
	}, nil
}

func (s *Session) Acquirer() *Acquirer {
	return s.acquirer
}

// NextPiece is the dispenser index the next move will use.
func (s *Session) NextPiece() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newPiece
}

// NewGame resets the dispenser index; the board region stays locked.
func (s *Session) NewGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newPiece = 0
}

func (s *Session) frame(ctx context.Context) (image.Image, error) {
	img, err := s.frames.Frame(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoFrame, err)
	}
	return img, nil
}

// Calibrate grabs a frame and locks onto the board.
func (s *Session) Calibrate(ctx context.Context) (image.Rectangle, error) {
	img, err := s.frame(ctx)
	if err != nil {
		return image.Rectangle{}, err
	}
	return s.acquirer.Calibrate(ctx, img)
}

// Recalibrate drops the locked region.
func (s *Session) Recalibrate() {
	s.logger.Infof("board region invalidated")
	s.acquirer.Invalidate()
}

// Decide picks a move for b without touching the camera or the arm.
func (s *Session) Decide(b Board) (Move, Tactic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Decide(b, s.computer, s.opponent, s.rng)
}

// Turn reads the board, decides and sends one move.
func (s *Session) Turn(ctx context.Context) (TurnResult, error) {
	ctx, span := startSpan(ctx, "Session", "Turn")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	img, err := s.frame(ctx)
	if err != nil {
		return TurnResult{}, err
	}

	board, ok, err := s.acquirer.Read(ctx, img)
	if err != nil {
		return TurnResult{}, err
	}
	if !ok {
		s.logger.Infof("board undetermined, waiting for a clean frame")
		return TurnResult{Outcome: OutcomeUndetermined}, nil
	}
	s.logger.Debugf("board:\n%v", board)

	switch {
	case IsWinner(board, s.computer):
		s.logger.Infof("computer (%v) won", s.computer)
		s.newPiece = 0
		return TurnResult{Outcome: OutcomeComputerWon, Board: board}, nil
	case IsWinner(board, s.opponent):
		s.logger.Infof("opponent (%v) won", s.opponent)
		s.newPiece = 0
		return TurnResult{Outcome: OutcomeOpponentWon, Board: board}, nil
	}

	move, tactic, err := Decide(board, s.computer, s.opponent, s.rng)
	if errors.Is(err, ErrNoMoveAvailable) {
		s.logger.Infof("board full, draw")
		s.newPiece = 0
		return TurnResult{Outcome: OutcomeDraw, Board: board}, nil
	}
	if err != nil {
		return TurnResult{}, err
	}

	wire, next, err := EncodeMove(move, s.newPiece)
	if err != nil {
		return TurnResult{}, err
	}
	s.newPiece = next

	res := TurnResult{
		Outcome: OutcomePlayed,
		Board:   board,
		Move:    move,
		Tactic:  tactic,
		Command: wire,
	}
	s.logger.Infof("playing %v (%v) -> %s", move, tactic, wire)

	if err := s.send(wire); err != nil {
		return res, err
	}
	return res, nil
}

// Send writes an already encoded sequence.
func (s *Session) Send(wire string) error {
	if _, err := ParseSequence(wire); err != nil {
		return err
	}
	return s.send(wire)
}

func (s *Session) send(wire string) error {
	if s.transport == nil || !s.transport.IsOpen() {
		return ErrTransportUnavailable
	}
	if _, err := s.transport.Write([]byte(wire)); err != nil {
		return fmt.Errorf("%w: %w", ErrCommunication, err)
	}
	return nil
}

// Close releases the transport.
func (s *Session) Close() error {
	var err error
	if s.transport != nil {
		err = multierr.Combine(err, s.transport.Close())
	}
	if c, ok := s.frames.(interface{ Close() error }); ok {
		err = multierr.Combine(err, c.Close())
	}
	return err
}
