package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"embalini-backend/internal/models"
)

type CategoryCreateRequest struct {
	Title string `json:"title" binding:"required"`
	Image string `json:"image" binding:"required"`
}

type CategoryUpdateRequest struct {
	Title *string `json:"title"`
	Image *string `json:"image"`
}

/*
GET /category
- Title ascending, for the storefront dropdowns.
*/
func GetCategories(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /category"
		defer handlePanic(c, route)

		opts := options.Find().
			SetSort(bson.D{{Key: "title", Value: 1}})

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("categories").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondDBError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		categories := make([]models.Category, 0)
		if err := cursor.All(ctx, &categories); err != nil {
			respondDBError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, categories)
	}
}

/*
GET /category/:id
- Detail view includes the category's products.
*/
func GetCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /category/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var category models.Category
		err = db.Collection("categories").FindOne(ctx, bson.M{"_id": id}).Decode(&category)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "category not found")
			return
		}
		if err != nil {
			respondDBError(c, route, err)
			return
		}

		cursor, err := db.Collection("products").Find(
			ctx,
			bson.M{"categoryId": id},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			respondDBError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondDBError(c, route, err)
			return
		}
		category.Products = products

		c.JSON(http.StatusOK, category)
	}
}

func CreateCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /category"
		defer handlePanic(c, route)

		var req CategoryCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		title := strings.TrimSpace(req.Title)
		if title == "" {
			respondWithError(c, http.StatusBadRequest, route, "title required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// duplicate check
		count, err := db.Collection("categories").CountDocuments(ctx, bson.M{"title": title})
		if err != nil {
			respondDBError(c, route, err)
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusConflict, route, "category already exists")
			return
		}

		category := models.Category{
			Title:     title,
			Image:     strings.TrimSpace(req.Image),
			CreatedAt: time.Now(),
		}

		result, err := db.Collection("categories").InsertOne(ctx, category)
		if err != nil {
			respondDBError(c, route, err)
			return
		}

		category.ID = result.InsertedID.(primitive.ObjectID)
		log.Printf("[%s] category created: %s", route, category.ID.Hex())
		c.JSON(http.StatusCreated, category)
	}
}

func UpdateCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /category/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req CategoryUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Category
		err = db.Collection("categories").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "category not found")
			return
		}
		if err != nil {
			respondDBError(c, route, err)
			return
		}

		updateSet := bson.M{}
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				respondWithError(c, http.StatusBadRequest, route, "title required")
				return
			}
			updateSet["title"] = title
		}
		if req.Image != nil {
			updateSet["image"] = strings.TrimSpace(*req.Image)
		}

		if len(updateSet) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		result, err := db.Collection("categories").UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updateSet})
		if err != nil {
			respondDBError(c, route, err)
			return
		}
		if result.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "category not found")
			return
		}

		if req.Image != nil && existing.Image != "" && existing.Image != strings.TrimSpace(*req.Image) {
			if err := safeDeleteUpload(existing.Image); err != nil {
				log.Printf("[%s] old image delete failed: %v", route, err)
			}
		}

		var updated models.Category
		if err := db.Collection("categories").FindOne(ctx, bson.M{"_id": id}).Decode(&updated); err != nil {
			respondDBError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

/*
DELETE /category/:id
- Succeeds even when products still reference the category; those products
  keep a dangling categoryId and reads omit the join.
*/
func DeleteCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /category/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Category
		err = db.Collection("categories").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "category not found")
			return
		}
		if err != nil {
			respondDBError(c, route, err)
			return
		}

		result, err := db.Collection("categories").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondDBError(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "category not found")
			return
		}

		if err := safeDeleteUpload(existing.Image); err != nil {
			log.Printf("[%s] image delete failed: %v", route, err)
		}

		c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
	}
}
