// internal/room/room.go
package room

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/sirupsen/logrus"
)

// Table geometry shared by seats and hands.
const (
	TableCenterX       = 0.0
	TableCenterY       = 0.0
	DistanceFromCenter = 500.0
	HandSpacing        = 50.0
	SeatCount          = 8
)

var (
	// ErrStaleReference is returned when a message names an object, seat, hand or player that no
	// longer exists. Callers drop these silently.
	ErrStaleReference = errors.New("stale reference")

	// ErrMalformed is returned for inbound payloads missing a required field.
	ErrMalformed = errors.New("malformed message")

	// ErrNoInsertion means the insertion heuristic found no slot, so no transfer happens.
	ErrNoInsertion = errors.New("no insertion point")

	ErrHandLocked     = errors.New("hand is locked by its owner")
	ErrSeatTaken      = errors.New("seat is taken")
	ErrRoomFull       = errors.New("room is full")
	ErrRoomTerminated = errors.New("room has been terminated")
)

// RoomRegistry is the external bookkeeping of which rooms exist. Calls are made on the room's
// timeline, DeregisterRoom with r.Mu held, so they must return promptly; registry.Ordered queues
// them for a slow backend.
type RoomRegistry interface {
	RegisterRoom(ctx context.Context, name string) error
	DeregisterRoom(ctx context.Context, name string) error
}

// Sink receives events for one connection. Send must not block.
type Sink interface {
	Send(ev Event)
}

// Settings configures a room at creation.
type Settings struct {
	MaxPlayers       int
	TickRate         time.Duration
	SlowTickMultiple int
	CheckInterval    time.Duration
	Timeout          time.Duration
	SnapDistance     float64
	Options          models.Options
}

// DefaultSettings mirrors the production constants.
func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:       8,
		TickRate:         50 * time.Millisecond,
		SlowTickMultiple: 100,
		CheckInterval:    5 * time.Minute,
		Timeout:          30 * time.Minute,
		SnapDistance:     500,
		Options:          models.DefaultOptions(),
	}
}

// Room is the single authoritative aggregate for one table session. All state below Mu is
// mutated only while Mu is held, which serializes inbound messages and ticks.
type Room struct {
	Name string

	Mu       sync.Mutex
	settings Settings
	log      *logrus.Entry
	rng      *rand.Rand

	seats         []*models.Seat
	players       map[string]*models.Player
	sinks         map[string]Sink
	playerCounter int
	cursors       *CursorPool
	cursorInfo    map[string]models.CursorInfo

	objects      map[int]*models.TableObject
	nextObjectID int
	depth        int
	hands        map[string]*models.Hand

	options    models.Options
	tickCount  int
	terminated bool
	cancel     context.CancelFunc
}

// NewRoom builds a room with its seats laid out and the 53 starting cards on the table.
func NewRoom(name string, settings Settings, logger logrus.FieldLogger) *Room {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if settings.SlowTickMultiple <= 0 {
		settings.SlowTickMultiple = 1
	}
	r := &Room{
		Name:       name,
		settings:   settings,
		log:        logger.WithField("room", name),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		seats:      newSeatTable(),
		players:    make(map[string]*models.Player),
		sinks:      make(map[string]Sink),
		cursors:    NewCursorPool(),
		cursorInfo: make(map[string]models.CursorInfo),
		objects:    make(map[int]*models.TableObject),
		hands:      make(map[string]*models.Hand),
		options:    settings.Options,
	}
	r.initializeDeck()
	return r
}

// initializeDeck lays out 52 cards and the joker as face-down singletons at the table centre.
func (r *Room) initializeDeck() {
	for id := 1; id <= models.SpriteJoker; id++ {
		obj := models.NewCard(id, id, false, TableCenterX, TableCenterY)
		obj.Depth = id
		r.objects[id] = obj
	}
	r.nextObjectID = models.SpriteJoker + 1
	r.depth = models.SpriteJoker
}

// SetRand replaces the room's random source. Used by tests for reproducible shuffles.
func (r *Room) SetRand(rng *rand.Rand) {
	r.rng = rng
}

// Options returns the current room options. Caller must hold r.Mu.
func (r *Room) Options() models.Options {
	return r.options
}

// SetOptions replaces the room options. Caller must hold r.Mu.
func (r *Room) SetOptions(opts models.Options) {
	r.options = opts
}

// NumPlayers returns the live-player count.
func (r *Room) NumPlayers() int {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return len(r.players)
}

// Terminated reports whether the room has shut down.
func (r *Room) Terminated() bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.terminated
}

// Start registers the room, then runs the tick broadcaster and the idle lifecycle until the
// room terminates or parent is cancelled. onStop runs once, after the lifecycle has terminated
// the room.
func (r *Room) Start(parent context.Context, reg RoomRegistry, onStop func()) *Lifecycle {
	ctx, cancel := context.WithCancel(parent)
	r.Mu.Lock()
	r.cancel = cancel
	r.Mu.Unlock()

	if reg != nil {
		regCtx, regCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := reg.RegisterRoom(regCtx, r.Name); err != nil {
			r.log.WithError(err).Error("failed to register room")
		} else {
			r.log.Debug("room registered")
		}
		regCancel()
	}

	lc := NewLifecycle(r.Name, r.settings.CheckInterval, r.settings.Timeout, r.NumPlayers, reg, r.log)
	lc.SetTerminator(r.TerminateIfEmpty)
	if onStop != nil {
		lc.OnTerminate = onStop
	}

	go r.RunTicker(ctx)
	go lc.Run(ctx)
	r.log.Info("room started")
	return lc
}

// Terminate stops the room's background loops and refuses further joins.
func (r *Room) Terminate() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.terminateLocked()
}

// TerminateIfEmpty terminates the room only if nobody is in it. The emptiness check, then and the
// terminated flag all happen under one hold of r.Mu, so a Join either lands first and keeps the
// room alive or finds it terminated. Reports whether this call terminated the room.
func (r *Room) TerminateIfEmpty(then func()) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.terminated || len(r.players) > 0 {
		return false
	}
	if then != nil {
		then()
	}
	r.terminateLocked()
	return true
}

func (r *Room) terminateLocked() {
	if r.terminated {
		return
	}
	r.terminated = true
	if r.cancel != nil {
		r.cancel()
	}
	r.log.Info("room stopped")
}
