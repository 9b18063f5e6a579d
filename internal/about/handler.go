package about

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dchesnokov/inkwell/pkg/response"
)

// PageResponse is a static informational page
type PageResponse struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Handler serves the static "about" section
type Handler struct{}

// NewHandler creates a new about handler
func NewHandler() *Handler {
	return &Handler{}
}

// Routes returns the router for the about section
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/author", h.Author)
	r.Get("/tech", h.Tech)

	return r
}

// Author handles GET /about/author
// @Summary      About the author
// @Tags         about
// @Produce      json
// @Success      200 {object} response.APIResponse{data=PageResponse}
// @Router       /about/author [get]
func (h *Handler) Author(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, &PageResponse{
		Title: "About the author",
		Text:  "Inkwell is maintained by a small group of contributors who wanted a minimal place to publish.",
	})
}

// Tech handles GET /about/tech
// @Summary      About the technology
// @Tags         about
// @Produce      json
// @Success      200 {object} response.APIResponse{data=PageResponse}
// @Router       /about/tech [get]
func (h *Handler) Tech(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, &PageResponse{
		Title: "Technology",
		Text:  "Built in Go on chi and PostgreSQL, with cookie sessions and goose-managed migrations.",
	})
}
