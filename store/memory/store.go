// Package memory provides an in-memory store.Store for tests and
// single-process development. Records are copied on the way in and out,
// so callers never share state with the store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/announcement"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/id"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/store"
	"github.com/xraph/skydesk/ticket"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store is a map-backed store.Store.
type Store struct {
	mu     sync.RWMutex
	closed bool

	accounts map[int64]*account.Account

	reservations     map[string]*reservation.Reservation
	reservationOrder []string

	flights map[string]*flight.Flight

	tickets        map[string]*ticket.Ticket
	ticketOrder    []string
	ticketChannels map[int64]string
	ticketNumbers  map[string]string

	announcements     map[int64]*announcement.Announcement
	announcementOrder []int64
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		accounts:       make(map[int64]*account.Account),
		reservations:   make(map[string]*reservation.Reservation),
		flights:        make(map[string]*flight.Flight),
		tickets:        make(map[string]*ticket.Ticket),
		ticketChannels: make(map[int64]string),
		ticketNumbers:  make(map[string]string),
		announcements:  make(map[int64]*announcement.Announcement),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping fails once the store is closed.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check()
}

// Close marks the store closed. Later calls fail with ErrStorageUnavailable.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *Store) check() error {
	if s.closed {
		return skydesk.ErrStorageUnavailable
	}
	return nil
}

// ==================== Account Store ====================

func (s *Store) GetAccount(_ context.Context, accountID int64) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	a, ok := s.accounts[accountID]
	if !ok {
		return nil, skydesk.ErrAccountNotFound
	}
	return a.Clone(), nil
}

func (s *Store) PutAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	s.accounts[a.ID] = a.Clone()
	return nil
}

func (s *Store) TopAccounts(_ context.Context, n int) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	result := make([]*account.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		result = append(result, a.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Balance != result[j].Balance {
			return result[i].Balance > result[j].Balance
		}
		return result[i].ID < result[j].ID
	})
	if n < len(result) {
		result = result[:max(n, 0)]
	}
	return result, nil
}

// ==================== Reservation Store ====================

func (s *Store) InsertReservation(_ context.Context, r *reservation.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	if _, exists := s.reservations[r.Code]; exists {
		return skydesk.ErrDuplicateCode
	}
	s.reservations[r.Code] = r.Clone()
	s.reservationOrder = append(s.reservationOrder, r.Code)
	return nil
}

func (s *Store) GetReservation(_ context.Context, code string) (*reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	r, ok := s.reservations[code]
	if !ok {
		return nil, skydesk.ErrReservationNotFound
	}
	return r.Clone(), nil
}

func (s *Store) ReservationExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return false, err
	}

	_, ok := s.reservations[code]
	return ok, nil
}

func (s *Store) CountReservations(_ context.Context, flightCode string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return 0, err
	}

	n := 0
	for _, r := range s.reservations {
		if r.FlightCode == flightCode {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListReservations(_ context.Context, opts reservation.ListOpts) ([]*reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	result := make([]*reservation.Reservation, 0)
	for _, code := range s.reservationOrder {
		r := s.reservations[code]
		if opts.Matches(r) {
			result = append(result, r.Clone())
		}
	}
	return paginate(result, opts.Offset, opts.Limit), nil
}

// ==================== Flight Store ====================

func (s *Store) ListFlights(_ context.Context) ([]*flight.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	result := make([]*flight.Flight, 0, len(s.flights))
	for _, f := range s.flights {
		c := *f
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (s *Store) GetFlight(_ context.Context, code string) (*flight.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	f, ok := s.flights[code]
	if !ok {
		return nil, skydesk.ErrFlightNotFound
	}
	c := *f
	return &c, nil
}

func (s *Store) PutFlight(_ context.Context, f *flight.Flight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	c := *f
	s.flights[f.Code] = &c
	return nil
}

func (s *Store) DeleteFlight(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	if _, ok := s.flights[code]; !ok {
		return skydesk.ErrFlightNotFound
	}
	delete(s.flights, code)
	return nil
}

// ==================== Ticket Store ====================

func (s *Store) InsertTicket(_ context.Context, t *ticket.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	key := t.ID.String()
	if _, exists := s.tickets[key]; exists {
		return skydesk.ErrTicketExists
	}
	if _, exists := s.ticketNumbers[t.Number]; exists {
		return skydesk.ErrTicketExists
	}
	if _, exists := s.ticketChannels[t.ChannelID]; exists {
		return skydesk.ErrTicketExists
	}
	s.tickets[key] = t.Clone()
	s.ticketOrder = append(s.ticketOrder, key)
	s.ticketNumbers[t.Number] = key
	s.ticketChannels[t.ChannelID] = key
	return nil
}

func (s *Store) GetTicket(_ context.Context, ticketID id.TicketID) (*ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	t, ok := s.tickets[ticketID.String()]
	if !ok {
		return nil, skydesk.ErrTicketNotFound
	}
	return t.Clone(), nil
}

func (s *Store) GetTicketByChannel(_ context.Context, channelID int64) (*ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	key, ok := s.ticketChannels[channelID]
	if !ok {
		return nil, skydesk.ErrTicketNotFound
	}
	return s.tickets[key].Clone(), nil
}

func (s *Store) CountTickets(_ context.Context, category ticket.Category) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return 0, err
	}

	n := 0
	for _, t := range s.tickets {
		if t.Category == category {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpdateTicket(_ context.Context, t *ticket.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	key := t.ID.String()
	if _, ok := s.tickets[key]; !ok {
		return skydesk.ErrTicketNotFound
	}
	s.tickets[key] = t.Clone()
	return nil
}

func (s *Store) ListTickets(_ context.Context, opts ticket.ListOpts) ([]*ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	result := make([]*ticket.Ticket, 0)
	for _, key := range s.ticketOrder {
		t := s.tickets[key]
		if opts.Matches(t) {
			result = append(result, t.Clone())
		}
	}
	return paginate(result, opts.Offset, opts.Limit), nil
}

// ==================== Announcement Store ====================

func (s *Store) InsertAnnouncement(_ context.Context, a *announcement.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	if _, exists := s.announcements[a.MessageID]; exists {
		return skydesk.ErrAnnouncementExists
	}
	s.announcements[a.MessageID] = a.Clone()
	s.announcementOrder = append(s.announcementOrder, a.MessageID)
	return nil
}

func (s *Store) GetAnnouncement(_ context.Context, messageID int64) (*announcement.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	a, ok := s.announcements[messageID]
	if !ok {
		return nil, skydesk.ErrAnnouncementNotFound
	}
	return a.Clone(), nil
}

func (s *Store) UpdateAnnouncement(_ context.Context, a *announcement.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	if _, ok := s.announcements[a.MessageID]; !ok {
		return skydesk.ErrAnnouncementNotFound
	}
	s.announcements[a.MessageID] = a.Clone()
	return nil
}

func (s *Store) ListAnnouncements(_ context.Context, flightNumber string) ([]*announcement.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	result := make([]*announcement.Announcement, 0)
	for _, msgID := range s.announcementOrder {
		a := s.announcements[msgID]
		if flightNumber == "" || a.FlightNumber == flightNumber {
			result = append(result, a.Clone())
		}
	}
	return result, nil
}

func paginate[T any](items []T, offset, limit int) []T {
	start := min(max(offset, 0), len(items))
	end := len(items)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return items[start:end]
}
