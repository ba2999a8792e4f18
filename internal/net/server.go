// Package net exposes the engine's command surface over a binary TCP
// protocol. One goroutine owns the book, so commands are applied in arrival
// order and the engine itself stays single-threaded.
package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"skoll/internal/book"
	"skoll/internal/utils"
)

const (
	maxRecvSize        = 4 * 1024
	defaultConnTimeout = 30 * time.Second
)

var (
	ErrImproperConversion = errors.New("improper type conversion")
)

// session is one connected client.
type session struct {
	id   string
	conn net.Conn
}

// clientCommand links a parsed command to the session that sent it.
type clientCommand struct {
	session *session
	message Message
}

type Server struct {
	address       string
	port          int
	workers       int
	snapshotDepth int

	book   *book.Book
	pool   utils.WorkerPool
	cancel context.CancelFunc

	sessionsLock sync.Mutex
	sessions     map[string]*session
	commands     chan clientCommand
}

func New(address string, port, workers, snapshotDepth int, b *book.Book) *Server {
	return &Server{
		address:       address,
		port:          port,
		workers:       workers,
		snapshotDepth: snapshotDepth,
		book:          b,
		pool:          utils.NewWorkerPool(workers),
		sessions:      make(map[string]*session),
		commands:      make(chan clientCommand, 1),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	s.cancel()
}

func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}
	// Closing the listener on death unblocks the Accept loop below.
	t.Go(func() error {
		<-t.Dying()
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
		return nil
	})

	// Connection readers run on the pool; the book handler runs alone.
	s.pool.Setup(t, s.handleConnection)
	t.Go(func() error {
		return s.bookHandler(t)
	})

	log.Info().Str("address", s.address).Int("port", s.port).Msg("server running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
				}
				log.Error().Err(err).Msg("error accepting client")
				continue
			}

			sess := s.addSession(conn)
			log.Info().
				Str("session", sess.id).
				Str("remote", conn.RemoteAddr().String()).
				Msg("new client added")
			s.pool.AddTask(sess)
		}
	}
}

// bookHandler is the single goroutine allowed to touch the book. Every
// command from every session funnels through here, which gives the total
// ordering the engine requires.
func (s *Server) bookHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case cmd := <-s.commands:
			s.applyCommand(cmd)
		}
	}
}

func (s *Server) applyCommand(cmd clientCommand) {
	switch msg := cmd.message.(type) {
	case *OrderMessage:
		switch msg.TypeOf {
		case NewOrder:
			order, err := msg.Order()
			if err != nil {
				s.report(cmd.session, SerializeError(err))
				return
			}
			trades, err := s.book.Submit(order)
			s.reportTrades(cmd.session, trades, err)
		case ModifyOrder:
			trades, err := s.book.Modify(msg.Modifier())
			s.reportTrades(cmd.session, trades, err)
		}
	case *CancelMessage:
		s.book.Cancel(msg.OrderID)
	case BaseMessage:
		switch msg.TypeOf {
		case SnapshotRequest:
			s.report(cmd.session, SerializeSnapshot(s.book.Snapshot(), s.snapshotDepth))
		case Heartbeat:
			// Nothing to do; the read already refreshed the deadline.
		}
	}
}

func (s *Server) reportTrades(sess *session, trades []book.Trade, err error) {
	if err != nil {
		s.report(sess, SerializeError(err))
		return
	}
	for _, trade := range trades {
		s.report(sess, SerializeTrade(trade))
	}
}

func (s *Server) report(sess *session, frame []byte) {
	if _, err := sess.conn.Write(frame); err != nil {
		log.Error().Err(err).Str("session", sess.id).Msg("unable to send report")
		s.deleteSession(sess.id)
	}
}

// handleConnection is a short-lived worker task: read the next frame off the
// connection, parse it, hand it to the book handler, and requeue the session
// for its next frame. A dead connection tears the session down.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	sess, ok := task.(*session)
	if !ok {
		return ErrImproperConversion
	}

	if err := sess.conn.SetDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Err(err).Str("session", sess.id).Msg("failed setting deadline")
		s.dropSession(sess)
		return nil
	}

	buffer := make([]byte, maxRecvSize)
	n, err := sess.conn.Read(buffer)
	if err != nil {
		log.Info().Err(err).Str("session", sess.id).Msg("client disconnected")
		s.dropSession(sess)
		return nil
	}

	message, err := ParseMessage(buffer[:n])
	if err != nil {
		log.Error().Err(err).Str("session", sess.id).Msg("error parsing message")
		s.report(sess, SerializeError(err))
	} else {
		select {
		case <-t.Dying():
			return nil
		case s.commands <- clientCommand{session: sess, message: message}:
		}
	}

	// Push the session back to handle the next frame.
	s.pool.AddTask(sess)
	return nil
}

func (s *Server) addSession(conn net.Conn) *session {
	sess := &session{
		id:   uuid.New().String(),
		conn: conn,
	}
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	s.sessions[sess.id] = sess
	return sess
}

func (s *Server) deleteSession(id string) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	delete(s.sessions, id)
}

func (s *Server) dropSession(sess *session) {
	if err := sess.conn.Close(); err != nil {
		log.Debug().Err(err).Str("session", sess.id).Msg("closing connection")
	}
	s.deleteSession(sess.id)
}
