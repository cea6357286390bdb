package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Subtitle    string              `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	Price       float64             `bson:"price" json:"price"`
	Image       string              `bson:"image,omitempty" json:"image,omitempty"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Etat        string              `bson:"etat,omitempty" json:"etat,omitempty"`
	Specs       SpecList            `bson:"specs" json:"specs"`
	CategoryID  *primitive.ObjectID `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	Category    *CategoryRef        `bson:"-" json:"category,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}

// CategoryRef is the joined category shape attached to product reads.
type CategoryRef struct {
	ID    primitive.ObjectID `json:"id"`
	Title string             `json:"title"`
}
