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

type BlogCreateRequest struct {
	Title    string `json:"title" binding:"required,min=3"`
	Etat     string `json:"etat"`
	Date     string `json:"date" binding:"required"`
	ReadTime string `json:"readTime" binding:"required"`
	Image    string `json:"image" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

type BlogUpdateRequest struct {
	Title    *string `json:"title"`
	Etat     *string `json:"etat"`
	Date     *string `json:"date"`
	ReadTime *string `json:"readTime"`
	Image    *string `json:"image"`
	Content  *string `json:"content"`
}

func validBlogEtat(etat string) bool {
	return etat == "new" || etat == "used"
}

func GetBlogPosts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /blog"
		defer handlePanic(c, route)

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("blogposts").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondDBError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		posts := make([]models.BlogPost, 0)
		if err := cursor.All(ctx, &posts); err != nil {
			respondDBError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, posts)
	}
}

func GetBlogPost(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /blog/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var post models.BlogPost
		err = db.Collection("blogposts").FindOne(ctx, bson.M{"_id": id}).Decode(&post)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "post not found")
			return
		}
		if err != nil {
			respondDBError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, post)
	}
}

func CreateBlogPost(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /blog"
		defer handlePanic(c, route)

		var req BlogCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		etat := strings.TrimSpace(req.Etat)
		if etat == "" {
			etat = "new"
		}
		if !validBlogEtat(etat) {
			respondWithError(c, http.StatusBadRequest, route, "etat must be 'new' or 'used'")
			return
		}

		post := models.BlogPost{
			Title:     strings.TrimSpace(req.Title),
			Etat:      etat,
			Date:      strings.TrimSpace(req.Date),
			ReadTime:  strings.TrimSpace(req.ReadTime),
			Image:     strings.TrimSpace(req.Image),
			Content:   req.Content,
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("blogposts").InsertOne(ctx, post)
		if err != nil {
			respondDBError(c, route, err)
			return
		}

		post.ID = result.InsertedID.(primitive.ObjectID)
		log.Printf("[%s] post created: %s", route, post.ID.Hex())
		c.JSON(http.StatusCreated, post)
	}
}

func UpdateBlogPost(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /blog/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req BlogUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
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
		if req.Etat != nil {
			if !validBlogEtat(strings.TrimSpace(*req.Etat)) {
				respondWithError(c, http.StatusBadRequest, route, "etat must be 'new' or 'used'")
				return
			}
			updateSet["etat"] = strings.TrimSpace(*req.Etat)
		}
		if req.Date != nil {
			updateSet["date"] = strings.TrimSpace(*req.Date)
		}
		if req.ReadTime != nil {
			updateSet["readTime"] = strings.TrimSpace(*req.ReadTime)
		}
		if req.Image != nil {
			updateSet["image"] = strings.TrimSpace(*req.Image)
		}
		if req.Content != nil {
			updateSet["content"] = *req.Content
		}

		if len(updateSet) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.BlogPost
		err = db.Collection("blogposts").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "post not found")
			return
		}
		if err != nil {
			respondDBError(c, route, err)
			return
		}

		result, err := db.Collection("blogposts").UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updateSet})
		if err != nil {
			respondDBError(c, route, err)
			return
		}
		if result.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "post not found")
			return
		}

		if req.Image != nil && existing.Image != "" && existing.Image != strings.TrimSpace(*req.Image) {
			if err := safeDeleteUpload(existing.Image); err != nil {
				log.Printf("[%s] old image delete failed: %v", route, err)
			}
		}

		var updated models.BlogPost
		if err := db.Collection("blogposts").FindOne(ctx, bson.M{"_id": id}).Decode(&updated); err != nil {
			respondDBError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

func DeleteBlogPost(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /blog/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.BlogPost
		err = db.Collection("blogposts").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "post not found")
			return
		}
		if err != nil {
			respondDBError(c, route, err)
			return
		}

		result, err := db.Collection("blogposts").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondDBError(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "post not found")
			return
		}

		if err := safeDeleteUpload(existing.Image); err != nil {
			log.Printf("[%s] image delete failed: %v", route, err)
		}

		c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
	}
}
