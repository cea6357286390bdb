package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"embalini-backend/internal/models"
)

/* =======================
   REQUEST DTOs
======================= */

type ProductCreateRequest struct {
	Title       string          `json:"title" binding:"required"`
	Subtitle    string          `json:"subtitle"`
	Price       *float64        `json:"price" binding:"required"`
	Image       string          `json:"image" binding:"required"`
	Description string          `json:"description"`
	Etat        string          `json:"etat"`
	Specs       models.SpecList `json:"specs"`
	CategoryID  string          `json:"categoryId"`
}

type ProductUpdateRequest struct {
	Title       *string          `json:"title"`
	Subtitle    *string          `json:"subtitle"`
	Price       *float64         `json:"price"`
	Image       *string          `json:"image"`
	Description *string          `json:"description"`
	Etat        *string          `json:"etat"`
	Specs       *models.SpecList `json:"specs"`
	CategoryID  *string          `json:"categoryId"`
}

var (
	errInvalidCategoryID = errors.New("invalid categoryId")
	errCategoryNotFound  = errors.New("category not found")
)

// productListFilter builds the list query. The search term is a title
// substring, not a client-supplied regex, so metacharacters are quoted.
func productListFilter(search string) bson.M {
	filter := bson.M{}
	if s := strings.TrimSpace(search); s != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
	}
	return filter
}

/* =======================
   CATEGORY JOIN
======================= */

// attachCategoryRefs resolves categoryId references in one $in query and
// attaches {id, title} to each product. Unresolvable references are left
// unattached: deleting a category orphans its products instead of cascading.
func attachCategoryRefs(ctx context.Context, db *mongo.Database, products []models.Product) error {
	ids := make([]primitive.ObjectID, 0, len(products))
	seen := map[primitive.ObjectID]struct{}{}
	for _, p := range products {
		if p.CategoryID == nil {
			continue
		}
		if _, ok := seen[*p.CategoryID]; ok {
			continue
		}
		seen[*p.CategoryID] = struct{}{}
		ids = append(ids, *p.CategoryID)
	}
	if len(ids) == 0 {
		return nil
	}

	cursor, err := db.Collection("categories").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return err
	}

	titleByID := make(map[primitive.ObjectID]string, len(categories))
	for _, category := range categories {
		titleByID[category.ID] = category.Title
	}

	applyCategoryRefs(products, titleByID)
	return nil
}

// applyCategoryRefs attaches {id, title} where the referenced category still
// exists. A dangling reference (category deleted since) stays unattached.
func applyCategoryRefs(products []models.Product, titleByID map[primitive.ObjectID]string) {
	for i := range products {
		if products[i].CategoryID == nil {
			continue
		}
		if title, ok := titleByID[*products[i].CategoryID]; ok {
			products[i].Category = &models.CategoryRef{ID: *products[i].CategoryID, Title: title}
		}
	}
}

func resolveCategoryID(ctx context.Context, db *mongo.Database, raw string) (*primitive.ObjectID, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	objectID, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return nil, errInvalidCategoryID
	}

	count, err := db.Collection("categories").CountDocuments(ctx, bson.M{"_id": objectID})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errCategoryNotFound
	}
	return &objectID, nil
}

/* =======================
   GET – PUBLIC
======================= */

func GetProduits(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /produit"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		filter := productListFilter(c.Query("search"))

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		// Pagination only applies when both params are present.
		pageStr := c.Query("page")
		limitStr := c.Query("limit")
		if pageStr != "" && limitStr != "" {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
				return
			}
			findOptions.
				SetSkip((page - 1) * limit).
				SetLimit(limit)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, filter, findOptions)
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

		if err := attachCategoryRefs(ctx, db, products); err != nil {
			respondDBError(c, route, err)
			return
		}

		log.Printf("[%s] returning %d products", route, len(products))
		c.JSON(http.StatusOK, products)
	}
}

func GetProduit(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /produit/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondDBError(c, route, err)
			return
		}

		products := []models.Product{product}
		if err := attachCategoryRefs(ctx, db, products); err != nil {
			respondDBError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, products[0])
	}
}

func GetProduitsByCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /produit/category/:categoryId"
		defer handlePanic(c, route)

		categoryID, err := primitive.ObjectIDFromHex(c.Param("categoryId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid category id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("products").Find(ctx, bson.M{"categoryId": categoryID}, findOptions)
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

		if err := attachCategoryRefs(ctx, db, products); err != nil {
			respondDBError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, products)
	}
}

/* =======================
   CREATE
======================= */

func CreateProduit(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /produit"
		defer handlePanic(c, route)

		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		title := strings.TrimSpace(req.Title)
		if title == "" {
			respondWithError(c, http.StatusBadRequest, route, "title required")
			return
		}
		if *req.Price <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "invalid price")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		categoryID, err := resolveCategoryID(ctx, db, req.CategoryID)
		if err != nil {
			status := http.StatusInternalServerError
			if err == errInvalidCategoryID || err == errCategoryNotFound {
				status = http.StatusBadRequest
			}
			respondWithError(c, status, route, err.Error())
			return
		}

		etat := strings.TrimSpace(req.Etat)
		if etat == "" {
			etat = "NEW"
		}

		product := models.Product{
			Title:       title,
			Subtitle:    strings.TrimSpace(req.Subtitle),
			Price:       *req.Price,
			Image:       strings.TrimSpace(req.Image),
			Description: strings.TrimSpace(req.Description),
			Etat:        etat,
			Specs:       req.Specs,
			CategoryID:  categoryID,
			CreatedAt:   time.Now(),
		}
		if product.Specs == nil {
			product.Specs = models.SpecList{}
		}

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondDBError(c, route, err)
			return
		}

		product.ID = res.InsertedID.(primitive.ObjectID)
		log.Printf("[%s] product created: %s", route, product.ID.Hex())
		c.JSON(http.StatusCreated, product)
	}
}

/* =======================
   UPDATE
======================= */

func UpdateProduit(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /produit/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondDBError(c, route, err)
			return
		}

		updateSet := bson.M{}
		updateUnset := bson.M{}

		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				respondWithError(c, http.StatusBadRequest, route, "title required")
				return
			}
			updateSet["title"] = title
		}
		if req.Subtitle != nil {
			updateSet["subtitle"] = strings.TrimSpace(*req.Subtitle)
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				respondWithError(c, http.StatusBadRequest, route, "invalid price")
				return
			}
			updateSet["price"] = *req.Price
		}
		if req.Image != nil {
			updateSet["image"] = strings.TrimSpace(*req.Image)
		}
		if req.Description != nil {
			updateSet["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Etat != nil {
			updateSet["etat"] = strings.TrimSpace(*req.Etat)
		}
		if req.Specs != nil {
			updateSet["specs"] = *req.Specs
		}
		if req.CategoryID != nil {
			if strings.TrimSpace(*req.CategoryID) == "" {
				updateUnset["categoryId"] = ""
			} else {
				categoryID, err := resolveCategoryID(ctx, db, *req.CategoryID)
				if err != nil {
					status := http.StatusInternalServerError
					if err == errInvalidCategoryID || err == errCategoryNotFound {
						status = http.StatusBadRequest
					}
					respondWithError(c, status, route, err.Error())
					return
				}
				updateSet["categoryId"] = *categoryID
			}
		}

		if len(updateSet) == 0 && len(updateUnset) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		update := bson.M{}
		if len(updateSet) > 0 {
			update["$set"] = updateSet
		}
		if len(updateUnset) > 0 {
			update["$unset"] = updateUnset
		}

		result, err := db.Collection("products").UpdateOne(ctx, bson.M{"_id": id}, update)
		if err != nil {
			respondDBError(c, route, err)
			return
		}
		if result.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		// Best-effort cleanup of a replaced local upload. A failure here is
		// logged and swallowed: storage and DB may drift.
		if req.Image != nil && existing.Image != "" && existing.Image != strings.TrimSpace(*req.Image) {
			if err := safeDeleteUpload(existing.Image); err != nil {
				log.Printf("[%s] old image delete failed: %v", route, err)
			}
		}

		var updated models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&updated); err != nil {
			respondDBError(c, route, err)
			return
		}

		products := []models.Product{updated}
		if err := attachCategoryRefs(ctx, db, products); err != nil {
			respondDBError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, products[0])
	}
}

/* =======================
   DELETE
======================= */

func DeleteProduit(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /produit/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondDBError(c, route, err)
			return
		}

		result, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondDBError(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		if err := safeDeleteUpload(existing.Image); err != nil {
			log.Printf("[%s] image delete failed: %v", route, err)
		}

		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
