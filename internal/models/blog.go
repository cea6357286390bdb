package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlogPost is fully admin-owned. Etat is a freshness tag ("new"/"used"),
// Date is a display string such as "MAR 2026", not a timestamp.
type BlogPost struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Etat      string             `bson:"etat" json:"etat"`
	Date      string             `bson:"date" json:"date"`
	ReadTime  string             `bson:"readTime" json:"readTime"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
