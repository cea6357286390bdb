package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"embalini-backend/internal/database"
	"embalini-backend/internal/models"
	"embalini-backend/internal/quote"
)

// Attempts to re-issue a secret code when the unique index reports a
// collision before giving up.
const secretCodeRetries = 3

/* =========================
   CREATE
========================= */

func CreateCommand(db *mongo.Database, defaultCurrency string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /command"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		productByID, err := loadRequestedProducts(ctx, db, req.Items)
		if err != nil {
			var notFound productNotFoundError
			if errors.As(err, &notFound) {
				respondWithError(c, http.StatusBadRequest, route, notFound.Error())
				return
			}
			respondDBError(c, route, err)
			return
		}

		items, total, err := priceOrderItems(req.Items, productByID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		if err := validateClaimedTotal(req.TotalEstimation, total); err != nil {
			var mismatch totalMismatchError
			if errors.As(err, &mismatch) {
				log.Printf("[%s] rejecting tampered total: claimed=%.2f computed=%.2f", route, mismatch.Claimed, mismatch.Computed)
				respondWithError(c, http.StatusUnprocessableEntity, route, mismatch.Error())
				return
			}
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		order := buildOrder(req, items, total, defaultCurrency)
		order.CreatedAt = time.Now()

		orderID, err := database.NextOrderID(ctx, db, order.CreatedAt)
		if err != nil {
			respondDBError(c, route, err)
			return
		}
		order.OrderID = orderID

		inserted := false
		for attempt := 0; attempt < secretCodeRetries && !inserted; attempt++ {
			code, err := newSecretCode()
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "internal server error")
				return
			}
			order.SecretCode = code

			res, err := db.Collection("commands").InsertOne(ctx, order)
			if err != nil {
				if mongo.IsDuplicateKeyError(err) {
					log.Printf("[%s] secret code collision, retrying (%d)", route, attempt+1)
					continue
				}
				respondDBError(c, route, err)
				return
			}
			order.ID = res.InsertedID.(primitive.ObjectID)
			inserted = true
		}

		if !inserted {
			respondWithError(c, http.StatusInternalServerError, route, "could not allocate tracking code")
			return
		}

		log.Printf("[%s] order created: %s (%s)", route, order.OrderID, order.ID.Hex())
		c.JSON(http.StatusCreated, order)
	}
}

func loadRequestedProducts(ctx context.Context, db *mongo.Database, items []createOrderItemRequest) (map[string]models.Product, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ID))
		if err != nil {
			return nil, productNotFoundError{ProductID: item.ID}
		}
		ids = append(ids, objectID)
	}

	cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	byID := make(map[string]models.Product, len(products))
	for _, product := range products {
		byID[product.ID.Hex()] = product
	}
	return byID, nil
}

/* =========================
   LIST / COUNT (ADMIN)
========================= */

func GetCommands(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /command"
		defer handlePanic(c, route)

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("commands").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondDBError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondDBError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

func CountCommands(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /command/count"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("commands").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondDBError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

/* =========================
   TRACKING (PUBLIC)
========================= */

// TrackCommand resolves an order by its secret code. Possession of the code
// is the only access control; unknown codes get a generic not-found.
func TrackCommand(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /command/:secret_code"
		defer handlePanic(c, route)

		order, ok := findBySecretCode(c, db, route)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// CommandPDF renders the quote document for an order, looked up by the same
// secret code the tracking page uses.
func CommandPDF(db *mongo.Database, doc quote.DocumentParams) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /command/:secret_code/pdf"
		defer handlePanic(c, route)

		order, ok := findBySecretCode(c, db, route)
		if !ok {
			return
		}

		data, err := quote.Render(order, doc)
		if err != nil {
			log.Printf("[%s] pdf render failed for %s: %v", route, order.OrderID, err)
			respondWithError(c, http.StatusInternalServerError, route, "pdf render failed")
			return
		}

		c.Header("Content-Disposition", `attachment; filename="devis-`+order.OrderID+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", data)
	}
}

func findBySecretCode(c *gin.Context, db *mongo.Database, route string) (models.Order, bool) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("secret_code")))
	if code == "" {
		respondWithError(c, http.StatusBadRequest, route, "secret code required")
		return models.Order{}, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var order models.Order
	err := db.Collection("commands").FindOne(ctx, bson.M{"secret_code": code}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		respondWithError(c, http.StatusNotFound, route, "command not found")
		return models.Order{}, false
	}
	if err != nil {
		respondDBError(c, route, err)
		return models.Order{}, false
	}

	return order, true
}

/* =========================
   STATUS UPDATE (ADMIN)
========================= */

type commandStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateCommandStatus sets the single mutable field on an order. Any known
// status may replace any other; re-applying the current status is a no-op
// success.
func UpdateCommandStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /command/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req commandStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		status := strings.ToUpper(strings.TrimSpace(req.Status))
		if !validOrderStatus(status) {
			respondWithError(c, http.StatusBadRequest, route, "invalid status")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("commands").UpdateOne(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"status": status}},
		)
		if err != nil {
			respondDBError(c, route, err)
			return
		}
		if result.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "command not found")
			return
		}

		var updated models.Order
		if err := db.Collection("commands").FindOne(ctx, bson.M{"_id": id}).Decode(&updated); err != nil {
			respondDBError(c, route, err)
			return
		}

		log.Printf("[%s] order %s status -> %s", route, updated.OrderID, status)
		c.JSON(http.StatusOK, updated)
	}
}

/* =========================
   DELETE (ADMIN)
========================= */

func DeleteCommand(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /command/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("commands").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondDBError(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "command not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "command deleted"})
	}
}
