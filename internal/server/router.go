package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/SlavaKlkv/foodgram/internal/handlers"
)

// newRouter declares the full route table. Authorization predicates are
// attached per route with RequireAuthentication instead of being
// resolved inside the handlers.
func newRouter(cfg Config) http.Handler {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(handlers.Authenticate)

	router.Route("/api", func(api chi.Router) {
		api.Post("/auth/token/login/", handlers.Login)
		api.Post("/auth/token/logout/", handlers.Logout)

		api.Get("/tags/", handlers.ListTags)
		api.Get("/tags/{id}/", handlers.RetrieveTag)

		api.Get("/ingredients/", handlers.ListIngredients)
		api.Get("/ingredients/{id}/", handlers.RetrieveIngredient)

		api.Get("/users/", handlers.ListUsers)
		api.Post("/users/", handlers.RegisterUser)
		api.Get("/users/me/", handlers.RequireAuthentication(handlers.CurrentUserProfile))
		api.Put("/users/me/avatar/", handlers.RequireAuthentication(handlers.SetAvatar))
		api.Delete("/users/me/avatar/", handlers.RequireAuthentication(handlers.DeleteAvatar))
		api.Post("/users/set_password/", handlers.RequireAuthentication(handlers.SetPassword))
		api.Get("/users/subscriptions/", handlers.RequireAuthentication(handlers.ListSubscriptions))
		api.Get("/users/{id}/", handlers.RetrieveUser)
		api.Post("/users/{id}/subscribe/", handlers.RequireAuthentication(handlers.Subscribe))
		api.Delete("/users/{id}/subscribe/", handlers.RequireAuthentication(handlers.Unsubscribe))

		api.Get("/recipes/", handlers.ListRecipes)
		api.Post("/recipes/", handlers.RequireAuthentication(handlers.CreateRecipe))
		api.Get("/recipes/download_shopping_cart/", handlers.RequireAuthentication(handlers.DownloadShoppingCart))
		api.Get("/recipes/{id}/", handlers.RetrieveRecipe)
		api.Patch("/recipes/{id}/", handlers.RequireAuthentication(handlers.UpdateRecipe))
		api.Delete("/recipes/{id}/", handlers.RequireAuthentication(handlers.DeleteRecipe))
		api.Get("/recipes/{id}/get-link/", handlers.GetRecipeLink)
		api.Post("/recipes/{id}/favorite/", handlers.RequireAuthentication(handlers.FavoriteRecipe))
		api.Delete("/recipes/{id}/favorite/", handlers.RequireAuthentication(handlers.UnfavoriteRecipe))
		api.Post("/recipes/{id}/shopping_cart/", handlers.RequireAuthentication(handlers.AddToShoppingCart))
		api.Delete("/recipes/{id}/shopping_cart/", handlers.RequireAuthentication(handlers.RemoveFromShoppingCart))
	})

	// Short links resolve to the frontend recipe page; nothing is stored.
	router.Get("/s/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, cfg.SiteURL+"/recipes/"+chi.URLParam(r, "id"), http.StatusFound)
	})

	router.Handle("/media/*", http.StripPrefix("/media/",
		http.FileServer(http.Dir(cfg.MediaRoot))))

	return router
}
