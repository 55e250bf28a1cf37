package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

type ReportStatus string

const (
	ReportPending    ReportStatus = "pending"
	ReportInProgress ReportStatus = "in_progress"
	ReportResolved   ReportStatus = "resolved"
	ReportRejected   ReportStatus = "rejected"
)

type ReportPriority string

const (
	PriorityLow    ReportPriority = "low"
	PriorityMedium ReportPriority = "medium"
	PriorityHigh   ReportPriority = "high"
	PriorityUrgent ReportPriority = "urgent"
)

// MaintenanceReport is a tenant-filed issue against a room.
type MaintenanceReport struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID    primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	RoomID      primitive.ObjectID `bson:"roomId" json:"roomId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Priority    ReportPriority     `bson:"priority" json:"priority"`
	Status      ReportStatus       `bson:"status" json:"status"`
	AdminNotes  string             `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`
	ResolvedAt  *time.Time         `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (report *MaintenanceReport) Validate() error {
	if report.TenantID.IsZero() || report.RoomID.IsZero() {
		return errors.Validation("Report must reference a tenant and a room")
	}
	if report.Title == "" {
		return errors.Validation("Report title cannot be empty")
	}
	switch report.Priority {
	case "", PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
	default:
		return errors.Validation(fmt.Sprintf("Invalid report priority '%s'", report.Priority))
	}
	return nil
}

// Transition validates a status change in one place. Resolved and rejected
// are terminal.
func (report *MaintenanceReport) Transition(next ReportStatus, now time.Time) error {
	allowed := map[ReportStatus][]ReportStatus{
		ReportPending:    {ReportInProgress, ReportResolved, ReportRejected},
		ReportInProgress: {ReportResolved, ReportRejected},
	}
	for _, candidate := range allowed[report.Status] {
		if candidate == next {
			report.Status = next
			if next == ReportResolved {
				resolvedAt := now
				report.ResolvedAt = &resolvedAt
			}
			report.UpdatedAt = now
			return nil
		}
	}
	return errors.InvalidStateTransition(fmt.Sprintf("Report cannot move from '%s' to '%s'", report.Status, next))
}
