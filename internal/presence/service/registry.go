// Package service implements the presence registry: one live connection per
// user, roster snapshots and best-effort event delivery.
package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/allisson/filedrop/internal/metrics"
	presenceDomain "github.com/allisson/filedrop/internal/presence/domain"
)

// Disconnect reasons reported to metrics.
const (
	reasonClosed  = "closed"
	reasonEvicted = "evicted"
	reasonStopped = "stopped"
)

type entry struct {
	user presenceDomain.ConnectedUser
	conn presenceDomain.Connection
}

// state is owned by the run goroutine. Nothing else touches it.
type state struct {
	byUser map[uuid.UUID]*entry
	byConn map[string]uuid.UUID
}

type command func(s *state)

// Registry tracks connected users. Every mutation and read is executed by a
// single goroutine, so evict-then-insert on reconnect and the roster snapshot
// sent to a new connection are never interleaved with another update.
type Registry struct {
	cmds      chan command
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	metrics   metrics.PresenceMetrics
	logger    *slog.Logger
}

// NewRegistry starts the registry goroutine. Call Close to stop it.
func NewRegistry(presenceMetrics metrics.PresenceMetrics, logger *slog.Logger) *Registry {
	r := &Registry{
		cmds:    make(chan command),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		metrics: presenceMetrics,
		logger:  logger,
	}
	go r.run()
	return r
}

func (r *Registry) run() {
	defer close(r.stopped)

	s := &state{
		byUser: make(map[uuid.UUID]*entry),
		byConn: make(map[string]uuid.UUID),
	}

	for {
		select {
		case cmd := <-r.cmds:
			cmd(s)
		case <-r.done:
			for _, e := range s.byUser {
				e.conn.Close()
				r.metrics.UserDisconnected(context.Background(), reasonStopped)
			}
			return
		}
	}
}

// exec hands fn to the registry goroutine and waits until it has run.
func (r *Registry) exec(ctx context.Context, fn command) error {
	applied := make(chan struct{})
	wrapped := func(s *state) {
		defer close(applied)
		fn(s)
	}

	select {
	case r.cmds <- wrapped:
	case <-r.done:
		return presenceDomain.ErrRegistryClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted the command always runs before the loop can observe done.
	<-applied
	return nil
}

// Connect installs conn as the live connection of user. A previous connection
// of the same user is closed and removed first. The new connection receives the
// current roster and every other connection is told the user came online.
func (r *Registry) Connect(
	ctx context.Context,
	user presenceDomain.ConnectedUser,
	conn presenceDomain.Connection,
) error {
	return r.exec(ctx, func(s *state) {
		if old, ok := s.byUser[user.UserID]; ok {
			delete(s.byConn, old.conn.ID())
			delete(s.byUser, user.UserID)
			old.conn.Close()
			r.metrics.UserDisconnected(ctx, reasonEvicted)
			r.logger.Debug("evicted previous connection",
				slog.String("user_id", user.UserID.String()),
				slog.String("connection_id", old.conn.ID()),
			)
		}

		s.byUser[user.UserID] = &entry{user: user, conn: conn}
		s.byConn[conn.ID()] = user.UserID
		r.metrics.UserConnected(ctx)

		r.send(ctx, conn, presenceDomain.Event{
			Name:    presenceDomain.EventOnlineUsers,
			Payload: s.roster(),
		})
		r.broadcast(ctx, s, user.UserID, presenceDomain.Event{
			Name:    presenceDomain.EventUserOnline,
			Payload: presenceDomain.UserOnlinePayload(user),
		})
	})
}

// Disconnect removes conn if it is still the live connection of its user and
// tells everyone else the user went offline. A connection that was already
// evicted by a newer one is ignored.
func (r *Registry) Disconnect(ctx context.Context, conn presenceDomain.Connection) error {
	return r.exec(ctx, func(s *state) {
		userID, ok := s.byConn[conn.ID()]
		if !ok {
			return
		}
		e := s.byUser[userID]
		delete(s.byConn, conn.ID())
		delete(s.byUser, userID)
		r.metrics.UserDisconnected(ctx, reasonClosed)

		r.broadcast(ctx, s, userID, presenceDomain.Event{
			Name:    presenceDomain.EventUserOffline,
			Payload: presenceDomain.UserOfflinePayload(e.user),
		})
	})
}

// Lookup returns the live connection of userID.
func (r *Registry) Lookup(ctx context.Context, userID uuid.UUID) (presenceDomain.Connection, bool) {
	var conn presenceDomain.Connection
	err := r.exec(ctx, func(s *state) {
		if e, ok := s.byUser[userID]; ok {
			conn = e.conn
		}
	})
	if err != nil || conn == nil {
		return nil, false
	}
	return conn, true
}

// Roster returns the connected users ordered by email.
func (r *Registry) Roster(ctx context.Context) ([]presenceDomain.ConnectedUser, error) {
	var roster []presenceDomain.ConnectedUser
	if err := r.exec(ctx, func(s *state) { roster = s.roster() }); err != nil {
		return nil, err
	}
	return roster, nil
}

// Notify delivers an event to userID if the user is connected. It reports
// whether the event was handed to the connection. An offline user, a full
// send buffer or a closed registry all return false without error.
func (r *Registry) Notify(ctx context.Context, userID uuid.UUID, event string, payload any) bool {
	delivered := false
	err := r.exec(ctx, func(s *state) {
		if e, ok := s.byUser[userID]; ok {
			delivered = r.send(ctx, e.conn, presenceDomain.Event{Name: event, Payload: payload})
		}
	})
	return err == nil && delivered
}

// Close stops the registry and closes every live connection.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
	<-r.stopped
}

func (r *Registry) send(ctx context.Context, conn presenceDomain.Connection, ev presenceDomain.Event) bool {
	if conn.Send(ev) {
		return true
	}
	r.metrics.EventDropped(ctx, ev.Name)
	return false
}

func (r *Registry) broadcast(ctx context.Context, s *state, except uuid.UUID, ev presenceDomain.Event) {
	for id, e := range s.byUser {
		if id == except {
			continue
		}
		r.send(ctx, e.conn, ev)
	}
}

func (s *state) roster() []presenceDomain.ConnectedUser {
	roster := make([]presenceDomain.ConnectedUser, 0, len(s.byUser))
	for _, e := range s.byUser {
		roster = append(roster, e.user)
	}
	slices.SortFunc(roster, func(a, b presenceDomain.ConnectedUser) int {
		return strings.Compare(a.Email, b.Email)
	})
	return roster
}
