package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationPaymentDue   NotificationType = "payment_due"
	NotificationReportUpdate NotificationType = "report_update"
	NotificationAnnouncement NotificationType = "announcement"
)

type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID    primitive.ObjectID `bson:"tenantId,omitempty" json:"tenantId,omitempty"`
	Type        NotificationType   `bson:"type" json:"type"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsRead      bool               `bson:"isRead" json:"isRead"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
