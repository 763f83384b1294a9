package application

import (
	"context"

	"go.uber.org/zap"

	bookingDomain "github.com/leavedesk/service-booking/internal/domain/booking"
	"github.com/leavedesk/service-booking/internal/domain/history"
)

// AuditLogger appends booking history entries. Failures are logged and
// swallowed: the mutation they describe has already been committed.
type AuditLogger struct {
	repo   history.HistoryRepository
	logger *zap.Logger
}

// NewAuditLogger creates a new AuditLogger.
func NewAuditLogger(repo history.HistoryRepository, logger *zap.Logger) *AuditLogger {
	return &AuditLogger{repo: repo, logger: logger}
}

// LogCreate records the creation of bk.
func (a *AuditLogger) LogCreate(ctx context.Context, bk *bookingDomain.Booking) {
	a.append(ctx, history.NewCreateEntry(bk))
}

// LogUpdate records the change of bk from before to its current state.
func (a *AuditLogger) LogUpdate(ctx context.Context, before bookingDomain.Snapshot, bk *bookingDomain.Booking) {
	a.append(ctx, history.NewUpdateEntry(before, bk))
}

// LogDelete records the deletion of bk, as loaded before the delete.
func (a *AuditLogger) LogDelete(ctx context.Context, bk *bookingDomain.Booking) {
	a.append(ctx, history.NewDeleteEntry(bk))
}

func (a *AuditLogger) append(ctx context.Context, entry *history.Entry) {
	if err := a.repo.Append(ctx, entry); err != nil {
		a.logger.Error("failed to write booking history, mutation kept",
			zap.String("action", string(entry.Action())),
			zap.String("booking_id", entry.BookingID().String()),
			zap.Error(err),
		)
	}
}
