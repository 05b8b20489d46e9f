package audit

import (
	"time"

	"go.uber.org/zap"
)

const (
	EventUserRegistered     = "USER_REGISTERED"
	EventUserDeleted        = "USER_DELETED"
	EventLoginSucceeded     = "LOGIN_SUCCEEDED"
	EventLoginFailed        = "LOGIN_FAILED"
	EventTokenRevoked       = "TOKEN_REVOKED"
	EventTokenRevokeDenied  = "TOKEN_REVOKE_DENIED"
	EventLedgerAccessDenied = "LEDGER_ACCESS_DENIED"
	EventLedgerShared       = "LEDGER_SHARED"
	EventLedgerUnshared     = "LEDGER_UNSHARED"

	StatusSuccess = "SUCCESS"
	StatusDenied  = "DENIED"
	StatusFailed  = "FAILED"
)

type Event struct {
	Timestamp time.Time
	EventType string
	UserID    string
	Status    string
	Details   map[string]string
}

// Logger writes one structured "audit" entry per security event. A nil
// *Logger discards events.
type Logger struct {
	l *zap.Logger
}

func NewLogger(l *zap.Logger) *Logger {
	return &Logger{l: l.Named("audit")}
}

func (a *Logger) LogRegistration(userID, username string) {
	a.log(Event{
		EventType: EventUserRegistered,
		UserID:    userID,
		Status:    StatusSuccess,
		Details:   map[string]string{"username": username},
	})
}

func (a *Logger) LogLogin(username, userID string, success bool) {
	event := Event{
		EventType: EventLoginSucceeded,
		UserID:    userID,
		Status:    StatusSuccess,
		Details:   map[string]string{"username": username},
	}
	if !success {
		event.EventType = EventLoginFailed
		event.Status = StatusDenied
	}
	a.log(event)
}

func (a *Logger) LogTokenRevoked(userID, jwtID string) {
	a.log(Event{
		EventType: EventTokenRevoked,
		UserID:    userID,
		Status:    StatusSuccess,
		Details:   map[string]string{"jwt_id": jwtID},
	})
}

func (a *Logger) LogTokenRevokeDenied(userID, jwtID string) {
	a.log(Event{
		EventType: EventTokenRevokeDenied,
		UserID:    userID,
		Status:    StatusDenied,
		Details:   map[string]string{"jwt_id": jwtID},
	})
}

func (a *Logger) LogUserDeleted(userID string) {
	a.log(Event{
		EventType: EventUserDeleted,
		UserID:    userID,
		Status:    StatusSuccess,
	})
}

func (a *Logger) LogLedgerAccessDenied(userID, ledgerID string) {
	a.log(Event{
		EventType: EventLedgerAccessDenied,
		UserID:    userID,
		Status:    StatusDenied,
		Details:   map[string]string{"ledger_id": ledgerID},
	})
}

func (a *Logger) LogLedgerShared(userID, ledgerID, granteeID string) {
	a.log(Event{
		EventType: EventLedgerShared,
		UserID:    userID,
		Status:    StatusSuccess,
		Details:   map[string]string{"ledger_id": ledgerID, "grantee_id": granteeID},
	})
}

func (a *Logger) LogLedgerUnshared(userID, ledgerID, granteeID string) {
	a.log(Event{
		EventType: EventLedgerUnshared,
		UserID:    userID,
		Status:    StatusSuccess,
		Details:   map[string]string{"ledger_id": ledgerID, "grantee_id": granteeID},
	})
}

func (a *Logger) log(event Event) {
	if a == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	a.l.Info("audit",
		zap.Time("timestamp", event.Timestamp),
		zap.String("event_type", event.EventType),
		zap.String("user_id", event.UserID),
		zap.String("status", event.Status),
		zap.Any("details", event.Details),
	)
}
