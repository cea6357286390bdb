package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"embalini-backend/internal/config"
	"embalini-backend/internal/database"
	"embalini-backend/internal/handlers"
	"embalini-backend/internal/middleware"
	"embalini-backend/internal/quote"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureAdminIndexes(db); err != nil {
		log.Printf("admin index warning: %v", err)
	}
	if err := database.EnsureAdminAccount(db, config.AppEnv.AdminEmail, config.AppEnv.AdminPassword); err != nil {
		log.Printf("admin bootstrap warning: %v", err)
	}

	handlers.SetUploadsRoot(config.AppEnv.UploadsRoot)

	quoteParams := quote.DocumentParams{
		BrandName:   "Embalini",
		BrandLine:   "Solutions d'emballage",
		Currency:    config.AppEnv.Currency,
		VATRate:     config.AppEnv.QuoteVATRate,
		DeliveryFee: config.AppEnv.QuoteDeliveryFee,
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins: config.AppEnv.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}))

	r.Static("/uploads", config.AppEnv.UploadsRoot+"/uploads")

	api := r.Group("/api/v1")

	api.GET("/produit", handlers.GetProduits(db))
	api.GET("/produit/:id", handlers.GetProduit(db))
	api.GET("/produit/category/:categoryId", handlers.GetProduitsByCategory(db))
	api.GET("/category", handlers.GetCategories(db))
	api.GET("/category/:id", handlers.GetCategory(db))
	api.GET("/blog", handlers.GetBlogPosts(db))
	api.GET("/blog/:id", handlers.GetBlogPost(db))

	api.POST("/command", handlers.CreateCommand(db, config.AppEnv.Currency))
	api.GET("/command/:secret_code", handlers.TrackCommand(db))
	api.GET("/command/:secret_code/pdf", handlers.CommandPDF(db, quoteParams))

	api.POST("/admin/login", handlers.AdminLogin(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
	))

	admin := api.Group("")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.POST("/produit", handlers.CreateProduit(db))
		admin.PATCH("/produit/:id", handlers.UpdateProduit(db))
		admin.DELETE("/produit/:id", handlers.DeleteProduit(db))

		admin.POST("/category", handlers.CreateCategory(db))
		admin.PATCH("/category/:id", handlers.UpdateCategory(db))
		admin.DELETE("/category/:id", handlers.DeleteCategory(db))

		admin.POST("/blog", handlers.CreateBlogPost(db))
		admin.PATCH("/blog/:id", handlers.UpdateBlogPost(db))
		admin.DELETE("/blog/:id", handlers.DeleteBlogPost(db))

		admin.GET("/command", handlers.GetCommands(db))
		admin.GET("/command/count", handlers.CountCommands(db))
		admin.PATCH("/command/:id", handlers.UpdateCommandStatus(db))
		admin.DELETE("/command/:id", handlers.DeleteCommand(db))

		admin.POST("/upload", handlers.UploadImage())
	}

	r.Run(":" + config.AppEnv.Port)
}
