package database

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"embalini-backend/internal/models"
)

// EnsureAdminAccount seeds an admin login from the environment so a fresh
// deployment has a usable back office. Existing accounts are left untouched.
func EnsureAdminAccount(db *mongo.Database, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := db.Collection("admins").CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.Admin{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	_, err = db.Collection("admins").InsertOne(ctx, admin)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}

	log.Println("EnsureAdminAccount: bootstrap admin created:", email)
	return nil
}
