package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/teamNotification/internal/models"
)

const (
	matchCollection             = "matches"
	teamCollection              = "teams"
	memberCollection            = "members"
	registrationCollection      = "registrations"
	reservationNoticeCollection = "reservation_notices"
	pollCollection              = "polls"
	userCollection              = "users"

	// MaxBatchWrites is Firestore's limit on writes in one batch.
	MaxBatchWrites = 500
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
	ErrBatchLimit    = fmt.Errorf("batch exceeds %d writes", MaxBatchWrites)
)

type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (s *Firestore) team(teamID string) *firestore.DocumentRef {
	return s.client.Collection(teamCollection).Doc(teamID)
}

// ListMatches returns every match document. Documents that cannot be decoded are logged and skipped.
func (s *Firestore) ListMatches(ctx context.Context) ([]models.Match, error) {
	iter := s.client.Collection(matchCollection).Documents(ctx)
	defer iter.Stop()

	matches := []models.Match{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating matches: %w", err)
		}

		var match models.Match
		if err := doc.DataTo(&match); err != nil {
			log.WithField("matchId", doc.Ref.ID).Warnf("unable to decode match: %s", err)
			continue
		}
		match.ID = doc.Ref.ID
		matches = append(matches, match)
	}

	return matches, nil
}

// UpdateMatchStatuses writes all status changes in a single atomic batch.
func (s *Firestore) UpdateMatchStatuses(ctx context.Context, updates map[string]models.GameStatus) error {
	if len(updates) == 0 {
		return nil
	}
	if len(updates) > MaxBatchWrites {
		return fmt.Errorf("%d status updates: %w", len(updates), ErrBatchLimit)
	}

	batch := s.client.Batch()
	for matchID, gameStatus := range updates {
		batch.Update(s.client.Collection(matchCollection).Doc(matchID), []firestore.Update{
			{Path: "gameStatus", Value: string(gameStatus)},
		})
	}

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("committing match status batch: %w", err)
	}
	return nil
}

func (s *Firestore) ListTeams(ctx context.Context) ([]models.Team, error) {
	docs, err := s.client.Collection(teamCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}

	teams := make([]models.Team, 0, len(docs))
	for _, doc := range docs {
		var team models.Team
		if err := doc.DataTo(&team); err != nil {
			log.WithField("teamId", doc.Ref.ID).Warnf("unable to decode team: %s", err)
		}
		team.ID = doc.Ref.ID
		teams = append(teams, team)
	}

	return teams, nil
}

func (s *Firestore) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	doc, err := s.team(teamID).Get(ctx)
	if err != nil {
		return nil, wrapNotFound(err, "team "+teamID)
	}

	var team models.Team
	if err := doc.DataTo(&team); err != nil {
		return nil, fmt.Errorf("decoding team %s: %w", teamID, err)
	}
	team.ID = doc.Ref.ID
	return &team, nil
}

func (s *Firestore) GetMember(ctx context.Context, teamID, userID string) (*models.Member, error) {
	doc, err := s.team(teamID).Collection(memberCollection).Doc(userID).Get(ctx)
	if err != nil {
		return nil, wrapNotFound(err, "member "+teamID+"/"+userID)
	}

	var member models.Member
	if err := doc.DataTo(&member); err != nil {
		return nil, fmt.Errorf("decoding member %s/%s: %w", teamID, userID, err)
	}
	member.UserID = doc.Ref.ID
	return &member, nil
}

func (s *Firestore) ListMembersByStatus(ctx context.Context, teamID string, memberStatus models.MemberStatus) ([]models.Member, error) {
	docs, err := s.team(teamID).Collection(memberCollection).
		Where("status", "==", string(memberStatus)).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing %s members of %s: %w", memberStatus, teamID, err)
	}

	members := make([]models.Member, 0, len(docs))
	for _, doc := range docs {
		var member models.Member
		if err := doc.DataTo(&member); err != nil {
			log.WithFields(log.Fields{"teamId": teamID, "userId": doc.Ref.ID}).Warnf("unable to decode member: %s", err)
			continue
		}
		member.UserID = doc.Ref.ID
		members = append(members, member)
	}

	return members, nil
}

func (s *Firestore) UpdateMemberStatus(ctx context.Context, teamID, userID string, memberStatus models.MemberStatus) error {
	_, err := s.team(teamID).Collection(memberCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(memberStatus)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return wrapNotFound(err, "member "+teamID+"/"+userID)
	}
	return nil
}

func (s *Firestore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	doc, err := s.client.Collection(userCollection).Doc(userID).Get(ctx)
	if err != nil {
		return nil, wrapNotFound(err, "user "+userID)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("decoding user %s: %w", userID, err)
	}
	user.ID = doc.Ref.ID
	return &user, nil
}

// ListUnpaidRegistrations returns registrations for eventID whose status is not paid.
func (s *Firestore) ListUnpaidRegistrations(ctx context.Context, teamID, eventID string) ([]models.Registration, error) {
	docs, err := s.team(teamID).Collection(registrationCollection).
		Where("eventId", "==", eventID).
		Where("status", "!=", models.PaymentPaid).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing unpaid registrations of %s for %s: %w", teamID, eventID, err)
	}

	registrations := make([]models.Registration, 0, len(docs))
	for _, doc := range docs {
		var registration models.Registration
		if err := doc.DataTo(&registration); err != nil {
			log.WithFields(log.Fields{"teamId": teamID, "registrationId": doc.Ref.ID}).Warnf("unable to decode registration: %s", err)
			continue
		}
		registration.ID = doc.Ref.ID
		registrations = append(registrations, registration)
	}

	return registrations, nil
}

// HasReservationNotice reports whether a notice targets a time in [start, end).
func (s *Firestore) HasReservationNotice(ctx context.Context, teamID string, start, end time.Time) (bool, error) {
	docs, err := s.team(teamID).Collection(reservationNoticeCollection).
		Where("targetDate", ">=", start).
		Where("targetDate", "<", end).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return false, fmt.Errorf("querying reservation notices of %s: %w", teamID, err)
	}
	return len(docs) > 0, nil
}

func (s *Firestore) HasPoll(ctx context.Context, teamID, category, targetMonth string) (bool, error) {
	docs, err := s.team(teamID).Collection(pollCollection).
		Where("category", "==", category).
		Where("targetMonth", "==", targetMonth).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return false, fmt.Errorf("querying polls of %s: %w", teamID, err)
	}
	return len(docs) > 0, nil
}

// CreatePoll stores poll under poll.ID and fails with ErrAlreadyExists if that id is taken.
func (s *Firestore) CreatePoll(ctx context.Context, teamID string, poll models.Poll) error {
	_, err := s.team(teamID).Collection(pollCollection).Doc(poll.ID).Create(ctx, poll)
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("poll %s/%s: %w", teamID, poll.ID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("creating poll %s/%s: %w", teamID, poll.ID, err)
	}
	return nil
}

func wrapNotFound(err error, what string) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("fetching %s: %w", what, err)
}
