package models

import (
	"time"
)

type GameStatus string

const (
	GameNotStarted GameStatus = "notStarted"
	GameInProgress GameStatus = "inProgress"
	GameFinished   GameStatus = "finished"
)

type MemberStatus string

const (
	MemberPending  MemberStatus = "pending"
	MemberActive   MemberStatus = "active"
	MemberRejected MemberStatus = "rejected"
)

const (
	PaymentPaid        = "paid"
	PollCategoryMember = "membership"
)

// Match lives in the top-level matches collection. Date is a timestamp,
// StartTime and EndTime are local "HH:MM" clock strings.
type Match struct {
	ID         string     `firestore:"-"`
	Date       time.Time  `firestore:"date"`
	StartTime  string     `firestore:"startTime"`
	EndTime    string     `firestore:"endTime"`
	GameStatus GameStatus `firestore:"gameStatus"`
}

type Team struct {
	ID   string `firestore:"-"`
	Name string `firestore:"name"`
}

type Member struct {
	UserID      string       `firestore:"-"`
	Status      MemberStatus `firestore:"status"`
	FCMToken    string       `firestore:"fcmToken,omitempty"`
	DisplayName string       `firestore:"displayName,omitempty"`
}

type User struct {
	ID          string `firestore:"-"`
	DisplayName string `firestore:"displayName"`
	Email       string `firestore:"email"`
	PhoneNumber string `firestore:"phoneNumber"`
}

type Registration struct {
	ID      string `firestore:"-"`
	EventID string `firestore:"eventId"`
	UserID  string `firestore:"userId"`
	Status  string `firestore:"status"`
}

type ReservationNotice struct {
	ID         string    `firestore:"-"`
	TargetDate time.Time `firestore:"targetDate"`
}

type PollOption struct {
	ID        string `firestore:"id"`
	Text      string `firestore:"text"`
	VoteCount int    `firestore:"voteCount"`
}

type Poll struct {
	ID          string       `firestore:"-"`
	Title       string       `firestore:"title"`
	Category    string       `firestore:"category"`
	TargetMonth string       `firestore:"targetMonth"`
	IsActive    bool         `firestore:"isActive"`
	ExpiresAt   time.Time    `firestore:"expiresAt"`
	Options     []PollOption `firestore:"options"`
	CreatedAt   time.Time    `firestore:"createdAt,serverTimestamp"`
}
