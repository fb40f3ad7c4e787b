// Package battle orchestrates battle sessions: it owns the join-code
// directory, runs every mutation as a read-modify-write against the
// versioned session store, and publishes a snapshot after each accepted
// write.
package battle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/footycards/attax-backend/internal/catalog"
	"github.com/footycards/attax-backend/internal/engine"
	"github.com/footycards/attax-backend/internal/gameerr"
	"github.com/footycards/attax-backend/internal/ledger"
	"github.com/footycards/attax-backend/internal/store"
)

// casRetries bounds how often a conflicted read-modify-write is retried
// before giving up. Retrying lives here, at the store boundary, never inside
// the engine.
const casRetries = 3

// codeRetries bounds join-code regeneration on collision.
const codeRetries = 10

// Snapshot is one full-state replacement pushed to observers. Consumers
// treat it as idempotent: applying the same snapshot twice is harmless.
type Snapshot struct {
	Version uint64         `json:"version"`
	Session engine.Session `json:"session"`
}

// Publisher fans snapshots out to whoever is watching a session.
type Publisher interface {
	Publish(sessionID string, snap Snapshot)
}

type Service struct {
	engine  *engine.Engine
	store   store.SessionStore
	dir     Directory
	ledger  ledger.AccountLedger
	pub     Publisher
	log     *zap.Logger
	now     func() time.Time
}

func NewService(eng *engine.Engine, st store.SessionStore, dir Directory, led ledger.AccountLedger, pub Publisher, log *zap.Logger) *Service {
	return &Service{
		engine: eng,
		store:  st,
		dir:    dir,
		ledger: led,
		pub:    pub,
		log:    log,
		now:    time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create starts a waiting session for the initiator and returns its id and
// shareable join code. Code collisions are handled by regeneration.
func (s *Service) Create(ctx context.Context, accountID, displayName string) (string, string, error) {
	sessionID := uuid.NewString()

	var code string
	for attempt := 0; ; attempt++ {
		if attempt == codeRetries {
			return "", "", fmt.Errorf("exhausted join-code attempts")
		}
		c, err := GenerateCode()
		if err != nil {
			return "", "", err
		}
		if s.dir.Register(c, sessionID) {
			code = c
			break
		}
		s.log.Info("join code collision, regenerating", zap.String("code", c))
	}

	sess := engine.NewSession(sessionID, code, accountID, displayName, s.now())
	version, err := s.store.Create(ctx, sess)
	if err != nil {
		s.dir.Release(code)
		return "", "", fmt.Errorf("store session: %w", err)
	}

	s.publish(sess.ID, Snapshot{Version: version, Session: sess})
	s.log.Info("session created",
		zap.String("session", sessionID),
		zap.String("code", code),
		zap.String("account", accountID))
	return sessionID, code, nil
}

// Join resolves the code and seats the joiner in slot 2. The code mapping is
// single-use: it is released the moment the session leaves waiting.
func (s *Service) Join(ctx context.Context, code, accountID, displayName string) (engine.Session, error) {
	sessionID, ok := s.dir.Resolve(code)
	if !ok {
		return engine.Session{}, gameerr.New(gameerr.CodeCodeNotFound, "Game not found. Check the code and try again.")
	}

	sess, _, err := s.apply(ctx, sessionID, engine.Command{
		Type:        engine.CmdJoin,
		AccountID:   accountID,
		DisplayName: displayName,
	})
	if err != nil {
		return engine.Session{}, err
	}

	s.dir.Release(code)
	return sess, nil
}

// SubmitLineup stores a player's lineup after checking it against the cards
// the account actually owns.
func (s *Service) SubmitLineup(ctx context.Context, sessionID, accountID string, cardIDs []string) (engine.Session, error) {
	acc, err := s.ledger.GetAccount(ctx, accountID)
	if err != nil {
		return engine.Session{}, fmt.Errorf("load account: %w", err)
	}
	sess, _, err := s.apply(ctx, sessionID, engine.Command{
		Type:      engine.CmdSubmitLineup,
		AccountID: accountID,
		CardIDs:   cardIDs,
		Owned:     acc.OwnedCardIDs,
	})
	return sess, err
}

// PlayCard advances the current round for either the chooser or responder.
func (s *Service) PlayCard(ctx context.Context, sessionID, accountID, cardID string, stat catalog.Stat) (engine.Session, error) {
	sess, _, err := s.apply(ctx, sessionID, engine.Command{
		Type:      engine.CmdPlayCard,
		AccountID: accountID,
		CardID:    cardID,
		Stat:      stat,
	})
	return sess, err
}

// Forfeit ends the session in the opponent's favor. Calling it on a finished
// session is a no-op, so racing timeout forfeits resolve to whichever write
// landed first.
func (s *Service) Forfeit(ctx context.Context, sessionID, accountID string) error {
	_, _, err := s.apply(ctx, sessionID, engine.Command{
		Type:      engine.CmdForfeit,
		AccountID: accountID,
	})
	return err
}

// ClaimPayout marks the winner's slot claimed and credits the award. The
// claimed flag is taken first, under the version check, so the credit can
// fire at most once per slot no matter how often the client retries.
func (s *Service) ClaimPayout(ctx context.Context, sessionID, accountID string) (int, error) {
	_, _, err := s.apply(ctx, sessionID, engine.Command{
		Type:      engine.CmdClaimPayout,
		AccountID: accountID,
	})
	if err != nil {
		return 0, err
	}

	if err := s.ledger.Credit(ctx, accountID, engine.WinnerPoints); err != nil {
		// The claim flag is already set; surface the failure instead of
		// retrying here so the credit stays attributable to one call.
		s.log.Error("payout credit failed after claim",
			zap.String("session", sessionID),
			zap.String("account", accountID),
			zap.Error(err))
		return 0, fmt.Errorf("credit winner points: %w", err)
	}
	return engine.WinnerPoints, nil
}

// SetConnected records a client's connectivity for its slot.
func (s *Service) SetConnected(ctx context.Context, sessionID, accountID string, connected bool) error {
	_, _, err := s.apply(ctx, sessionID, engine.Command{
		Type:      engine.CmdSetConnected,
		AccountID: accountID,
		Connected: connected,
	})
	// A stale or missing session is not worth failing a disconnect for.
	if err != nil && gameerr.IsDomain(err) {
		return nil
	}
	return err
}

// Get returns the session for reconnecting clients.
func (s *Service) Get(ctx context.Context, sessionID string) (Snapshot, error) {
	sess, version, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return Snapshot{}, gameerr.New(gameerr.CodeGameNotFound, "Game not found.")
	}
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Version: version, Session: sess}, nil
}

// apply runs one command as read-modify-write: load the session with its
// version, run the pure engine, and write back conditionally. A version
// conflict means another client got there first; reload and try again.
func (s *Service) apply(ctx context.Context, sessionID string, cmd engine.Command) (engine.Session, []engine.Event, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		sess, version, err := s.store.Get(ctx, sessionID)
		if errors.Is(err, store.ErrNotFound) {
			return engine.Session{}, nil, gameerr.New(gameerr.CodeGameNotFound, "Game not found.")
		}
		if err != nil {
			return engine.Session{}, nil, err
		}

		events, next, err := s.engine.Apply(sess, cmd, s.now())
		if err != nil {
			return engine.Session{}, nil, err
		}
		if cmd.Type == engine.CmdForfeit && len(events) == 0 {
			// Already finished; nothing to write.
			return next, nil, nil
		}

		newVersion, err := s.store.Put(ctx, sessionID, version, next)
		if errors.Is(err, store.ErrVersionConflict) {
			s.log.Debug("session version conflict, retrying",
				zap.String("session", sessionID),
				zap.String("command", string(cmd.Type)),
				zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return engine.Session{}, nil, err
		}

		s.publish(sessionID, Snapshot{Version: newVersion, Session: next})
		return next, events, nil
	}
	return engine.Session{}, nil, gameerr.New(gameerr.CodeStaleWrite, "Game state changed, please retry.")
}

func (s *Service) publish(sessionID string, snap Snapshot) {
	if s.pub != nil {
		s.pub.Publish(sessionID, snap)
	}
}
