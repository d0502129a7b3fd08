package main

// @title Restaurant Discovery API
// @version 1.0
// @description Browse, filter, bookmark and review restaurants. Logging, tracing and metrics included.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/tair/restaurant-discovery
// @contact.email support@example.com

// @license.name MIT
// @license.url https://github.com/tair/restaurant-discovery/blob/main/LICENSE

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Restaurants
// @tag.description Restaurant list, detail and menu

// @tag.name Reviews
// @tag.description Ratings and reviews

// @tag.name Bookmarks
// @tag.description Bookmark toggles and lists

// @tag.name Visited
// @tag.description Visited toggles and lists

// @tag.name Cuisines
// @tag.description Cuisine catalogue

// @tag.name Auth
// @tag.description Signup, login and password management

// @tag.name Admin
// @tag.description Catalogue management

// @tag.name Health
// @tag.description Health check endpoints
