// Package mongo implements store.Store on MongoDB with the official v2
// driver.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/announcement"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/id"
	"github.com/xraph/skydesk/reservation"
	skydeskstore "github.com/xraph/skydesk/store"
	"github.com/xraph/skydesk/ticket"
)

// Collection name constants.
const (
	colAccounts      = "skydesk_accounts"
	colReservations  = "skydesk_reservations"
	colFlights       = "skydesk_flights"
	colTickets       = "skydesk_tickets"
	colAnnouncements = "skydesk_announcements"
)

// OperationTimeout bounds every driver operation.
const OperationTimeout = 30 * time.Second

// compile-time interface check
var _ skydeskstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to uri and uses database name. Writes are acknowledged by
// a majority and journaled before they return.
func Open(uri, name string) (*Store, error) {
	wc := writeconcern.Majority()
	journal := true
	wc.Journal = &journal

	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetTimeout(OperationTimeout).
		SetWriteConcern(wc))
	if err != nil {
		return nil, fmt.Errorf("skydesk/mongo: connect: %w", err)
	}
	return New(client, name), nil
}

// New wraps a connected client.
func New(client *mongo.Client, name string) *Store {
	return &Store{client: client, db: client.Database(name)}
}

// Database returns the underlying database for direct access.
func (s *Store) Database() *mongo.Database { return s.db }

// Migrate creates indexes for all skydesk collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if len(models) == 0 {
			continue
		}
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("skydesk/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// ==================== Account Store ====================

func (s *Store) GetAccount(ctx context.Context, accountID int64) (*account.Account, error) {
	var m accountModel
	err := s.db.Collection(colAccounts).FindOne(ctx, bson.M{"_id": accountID}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, skydesk.ErrAccountNotFound
		}
		return nil, fmt.Errorf("skydesk/mongo: get account: %w", err)
	}
	return fromAccountModel(&m), nil
}

// PutAccount replaces the whole document.
func (s *Store) PutAccount(ctx context.Context, a *account.Account) error {
	_, err := s.db.Collection(colAccounts).ReplaceOne(ctx,
		bson.M{"_id": a.ID}, toAccountModel(a), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("skydesk/mongo: put account: %w", err)
	}
	return nil
}

func (s *Store) TopAccounts(ctx context.Context, n int) ([]*account.Account, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "balance", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(n))

	var models []accountModel
	if err := s.findAll(ctx, colAccounts, bson.M{}, &models, opts); err != nil {
		return nil, fmt.Errorf("skydesk/mongo: top accounts: %w", err)
	}

	result := make([]*account.Account, len(models))
	for i := range models {
		result[i] = fromAccountModel(&models[i])
	}
	return result, nil
}

// ==================== Reservation Store ====================

func (s *Store) InsertReservation(ctx context.Context, r *reservation.Reservation) error {
	_, err := s.db.Collection(colReservations).InsertOne(ctx, toReservationModel(r))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return skydesk.ErrDuplicateCode
		}
		return fmt.Errorf("skydesk/mongo: insert reservation: %w", err)
	}
	return nil
}

func (s *Store) GetReservation(ctx context.Context, code string) (*reservation.Reservation, error) {
	var m reservationModel
	err := s.db.Collection(colReservations).FindOne(ctx, bson.M{"_id": code}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, skydesk.ErrReservationNotFound
		}
		return nil, fmt.Errorf("skydesk/mongo: get reservation: %w", err)
	}
	return fromReservationModel(&m), nil
}

func (s *Store) ReservationExists(ctx context.Context, code string) (bool, error) {
	n, err := s.db.Collection(colReservations).CountDocuments(ctx, bson.M{"_id": code},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("skydesk/mongo: reservation exists: %w", err)
	}
	return n > 0, nil
}

func (s *Store) CountReservations(ctx context.Context, flightCode string) (int, error) {
	n, err := s.db.Collection(colReservations).CountDocuments(ctx, bson.M{"flight_code": flightCode})
	if err != nil {
		return 0, fmt.Errorf("skydesk/mongo: count reservations: %w", err)
	}
	return int(n), nil
}

func (s *Store) ListReservations(ctx context.Context, opts reservation.ListOpts) ([]*reservation.Reservation, error) {
	filter := bson.M{}
	if opts.FlightCode != "" {
		filter["flight_code"] = opts.FlightCode
	}
	if opts.BookedBy != 0 {
		filter["booked_by"] = opts.BookedBy
	}

	var models []reservationModel
	if err := s.findAll(ctx, colReservations, filter, &models, seqPage(opts.Limit, opts.Offset)); err != nil {
		return nil, fmt.Errorf("skydesk/mongo: list reservations: %w", err)
	}

	result := make([]*reservation.Reservation, len(models))
	for i := range models {
		result[i] = fromReservationModel(&models[i])
	}
	return result, nil
}

// ==================== Flight Store ====================

func (s *Store) ListFlights(ctx context.Context) ([]*flight.Flight, error) {
	var models []flightModel
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := s.findAll(ctx, colFlights, bson.M{}, &models, opts); err != nil {
		return nil, fmt.Errorf("skydesk/mongo: list flights: %w", err)
	}

	result := make([]*flight.Flight, len(models))
	for i := range models {
		result[i] = fromFlightModel(&models[i])
	}
	return result, nil
}

func (s *Store) GetFlight(ctx context.Context, code string) (*flight.Flight, error) {
	var m flightModel
	err := s.db.Collection(colFlights).FindOne(ctx, bson.M{"_id": code}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, skydesk.ErrFlightNotFound
		}
		return nil, fmt.Errorf("skydesk/mongo: get flight: %w", err)
	}
	return fromFlightModel(&m), nil
}

func (s *Store) PutFlight(ctx context.Context, f *flight.Flight) error {
	_, err := s.db.Collection(colFlights).ReplaceOne(ctx,
		bson.M{"_id": f.Code}, toFlightModel(f), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("skydesk/mongo: put flight: %w", err)
	}
	return nil
}

func (s *Store) DeleteFlight(ctx context.Context, code string) error {
	res, err := s.db.Collection(colFlights).DeleteOne(ctx, bson.M{"_id": code})
	if err != nil {
		return fmt.Errorf("skydesk/mongo: delete flight: %w", err)
	}
	if res.DeletedCount == 0 {
		return skydesk.ErrFlightNotFound
	}
	return nil
}

// ==================== Ticket Store ====================

func (s *Store) InsertTicket(ctx context.Context, t *ticket.Ticket) error {
	_, err := s.db.Collection(colTickets).InsertOne(ctx, toTicketModel(t))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return skydesk.ErrTicketExists
		}
		return fmt.Errorf("skydesk/mongo: insert ticket: %w", err)
	}
	return nil
}

func (s *Store) GetTicket(ctx context.Context, ticketID id.TicketID) (*ticket.Ticket, error) {
	return s.getTicket(ctx, bson.M{"_id": ticketID.String()})
}

func (s *Store) GetTicketByChannel(ctx context.Context, channelID int64) (*ticket.Ticket, error) {
	return s.getTicket(ctx, bson.M{"channel_id": channelID})
}

func (s *Store) getTicket(ctx context.Context, filter bson.M) (*ticket.Ticket, error) {
	var m ticketModel
	err := s.db.Collection(colTickets).FindOne(ctx, filter).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, skydesk.ErrTicketNotFound
		}
		return nil, fmt.Errorf("skydesk/mongo: get ticket: %w", err)
	}
	return fromTicketModel(&m)
}

func (s *Store) CountTickets(ctx context.Context, category ticket.Category) (int, error) {
	n, err := s.db.Collection(colTickets).CountDocuments(ctx, bson.M{"category": string(category)})
	if err != nil {
		return 0, fmt.Errorf("skydesk/mongo: count tickets: %w", err)
	}
	return int(n), nil
}

func (s *Store) UpdateTicket(ctx context.Context, t *ticket.Ticket) error {
	set := bson.M{
		"title":      t.Title,
		"status":     string(t.Status),
		"transcript": t.Transcript,
		"closed_by":  t.ClosedBy,
		"updated_at": t.UpdatedAt.UTC(),
	}
	update := bson.M{"$set": set}
	if t.ClosedAt != nil {
		set["closed_at"] = t.ClosedAt.UTC()
	} else {
		update["$unset"] = bson.M{"closed_at": ""}
	}

	res, err := s.db.Collection(colTickets).UpdateOne(ctx, bson.M{"_id": t.ID.String()}, update)
	if err != nil {
		return fmt.Errorf("skydesk/mongo: update ticket: %w", err)
	}
	if res.MatchedCount == 0 {
		return skydesk.ErrTicketNotFound
	}
	return nil
}

func (s *Store) ListTickets(ctx context.Context, opts ticket.ListOpts) ([]*ticket.Ticket, error) {
	filter := bson.M{}
	if opts.Category != "" {
		filter["category"] = string(opts.Category)
	}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}
	if opts.OpenedBy != 0 {
		filter["opened_by"] = opts.OpenedBy
	}

	var models []ticketModel
	if err := s.findAll(ctx, colTickets, filter, &models, seqPage(opts.Limit, opts.Offset)); err != nil {
		return nil, fmt.Errorf("skydesk/mongo: list tickets: %w", err)
	}

	result := make([]*ticket.Ticket, len(models))
	for i := range models {
		t, err := fromTicketModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = t
	}
	return result, nil
}

// ==================== Announcement Store ====================

func (s *Store) InsertAnnouncement(ctx context.Context, a *announcement.Announcement) error {
	_, err := s.db.Collection(colAnnouncements).InsertOne(ctx, toAnnouncementModel(a))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return skydesk.ErrAnnouncementExists
		}
		return fmt.Errorf("skydesk/mongo: insert announcement: %w", err)
	}
	return nil
}

func (s *Store) GetAnnouncement(ctx context.Context, messageID int64) (*announcement.Announcement, error) {
	var m announcementModel
	err := s.db.Collection(colAnnouncements).FindOne(ctx, bson.M{"message_id": messageID}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, skydesk.ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("skydesk/mongo: get announcement: %w", err)
	}
	return fromAnnouncementModel(&m)
}

func (s *Store) UpdateAnnouncement(ctx context.Context, a *announcement.Announcement) error {
	m := toAnnouncementModel(a)
	res, err := s.db.Collection(colAnnouncements).UpdateOne(ctx,
		bson.M{"message_id": a.MessageID},
		bson.M{"$set": bson.M{
			"channel_id":         m.ChannelID,
			"flight_number":      m.FlightNumber,
			"departure_airport":  m.DepartureAirport,
			"departure_time":     m.DepartureTime,
			"departure_gate":     m.DepartureGate,
			"departure_terminal": m.DepartureTerminal,
			"arrival_airport":    m.ArrivalAirport,
			"arrival_time":       m.ArrivalTime,
			"arrival_gate":       m.ArrivalGate,
			"date":               m.Date,
			"meal_service":       m.MealService,
			"host":               m.Host,
			"alerts":             m.Alerts,
			"server_link":        m.ServerLink,
			"status":             m.Status,
			"updated_at":         m.UpdatedAt,
		}})
	if err != nil {
		return fmt.Errorf("skydesk/mongo: update announcement: %w", err)
	}
	if res.MatchedCount == 0 {
		return skydesk.ErrAnnouncementNotFound
	}
	return nil
}

func (s *Store) ListAnnouncements(ctx context.Context, flightNumber string) ([]*announcement.Announcement, error) {
	filter := bson.M{}
	if flightNumber != "" {
		filter["flight_number"] = flightNumber
	}

	var models []announcementModel
	if err := s.findAll(ctx, colAnnouncements, filter, &models, seqPage(0, 0)); err != nil {
		return nil, fmt.Errorf("skydesk/mongo: list announcements: %w", err)
	}

	result := make([]*announcement.Announcement, len(models))
	for i := range models {
		a, err := fromAnnouncementModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = a
	}
	return result, nil
}

// ==================== Helpers ====================

// findAll decodes every document matching filter into out.
func (s *Store) findAll(ctx context.Context, col string, filter bson.M, out any, opts *options.FindOptionsBuilder) error {
	cur, err := s.db.Collection(col).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

// seqPage sorts by insertion order and applies limit and offset.
func seqPage(limit, offset int) *options.FindOptionsBuilder {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	return opts
}

// isNoDocuments checks for the no-documents sentinel.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all skydesk collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colAccounts: {
			{Keys: bson.D{{Key: "balance", Value: -1}, {Key: "_id", Value: 1}}},
		},
		colReservations: {
			{Keys: bson.D{{Key: "flight_code", Value: 1}}},
			{Keys: bson.D{{Key: "booked_by", Value: 1}}},
			{Keys: bson.D{{Key: "seq", Value: 1}}},
		},
		colTickets: {
			{
				Keys:    bson.D{{Key: "number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "channel_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "seq", Value: 1}}},
		},
		colAnnouncements: {
			{
				Keys:    bson.D{{Key: "message_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "flight_number", Value: 1}, {Key: "seq", Value: 1}}},
		},
	}
}
