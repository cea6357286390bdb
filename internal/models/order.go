package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Any status may be set to any other via the single-field
// status update; the progression below is the business meaning, not a
// guarded machine.
const (
	StatusPendingReview = "PENDING_REVIEW"
	StatusConfirmed     = "CONFIRMED"
	StatusShipped       = "SHIPPED"
	StatusCancelled     = "CANCELLED"
)

// OrderItem snapshots a product line at order time so later product edits
// never alter historical orders.
type OrderItem struct {
	ProductID    primitive.ObjectID `bson:"productId" json:"productId"`
	Titre        string             `bson:"titre" json:"titre"`
	Quantite     int                `bson:"quantite" json:"quantite"`
	PrixUnitaire float64            `bson:"prix_unitaire" json:"prix_unitaire"`
	PrixTotal    float64            `bson:"prix_total" json:"prix_total"`
	ProductImage string             `bson:"productimage,omitempty" json:"productimage,omitempty"`
}

// Order is the persisted command document. Items are embedded and immutable
// after creation; only Status changes afterwards.
type Order struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID    string             `bson:"order_id" json:"order_id"`
	SecretCode string             `bson:"secret_code" json:"secret_code"`

	Nom       string `bson:"nom" json:"nom"`
	Prenom    string `bson:"prenom" json:"prenom"`
	Email     string `bson:"email" json:"email"`
	Telephone string `bson:"telephone" json:"telephone"`

	// Optional business-account metadata, first-class fields instead of the
	// legacy "Société: X | MF: Y | Perso: Z" packed message.
	Societe          string `bson:"societe,omitempty" json:"societe,omitempty"`
	MatriculeFiscale string `bson:"matricule_fiscale,omitempty" json:"matricule_fiscale,omitempty"`
	Personnalisation string `bson:"personnalisation,omitempty" json:"personnalisation,omitempty"`
	Message          string `bson:"message,omitempty" json:"message,omitempty"`

	TotalEstimation float64     `bson:"total_estimation" json:"total_estimation"`
	Currency        string      `bson:"currency" json:"currency"`
	Status          string      `bson:"status" json:"status"`
	Items           []OrderItem `bson:"items" json:"items"`
	CreatedAt       time.Time   `bson:"createdAt" json:"createdAt"`
}
