package post

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dchesnokov/inkwell/internal/group"
	"github.com/dchesnokov/inkwell/internal/user"
	"github.com/dchesnokov/inkwell/pkg/middleware"
	"github.com/dchesnokov/inkwell/pkg/response"
)

// LoginPath is where anonymous authoring requests are redirected
const LoginPath = "/auth/login"

// Handler handles HTTP requests for post operations
type Handler struct {
	service *Service
}

// NewHandler creates a new post handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for post endpoints. Authoring routes sit behind
// the login redirect; everything else is open to anonymous visitors.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{postID}", h.GetByID)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(LoginPath))

		r.Get("/new", h.NewForm)
		r.Post("/", h.Create)
		r.Get("/{postID}/edit", h.EditForm)
		r.Post("/{postID}", h.Update)
	})

	return r
}

// List handles GET /posts
// @Summary      List posts
// @Description  Page through all posts, newest first (10 per page)
// @Tags         posts
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Success      200 {object} response.APIResponse{data=[]PostResponse}
// @Router       /posts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListAll(r.Context(), pageParam(r))
	if err != nil {
		response.InternalError(w, "Failed to list posts")
		return
	}

	response.JSONWithMeta(w, http.StatusOK, toResponses(page.Posts), pageMeta(page))
}

// GroupPage handles GET /groups/{slug}
// @Summary      Group page
// @Description  Group info with one page of its posts
// @Tags         groups
// @Produce      json
// @Param        slug path string true "Group slug"
// @Param        page query int false "Page number" default(1)
// @Success      200 {object} response.APIResponse{data=GroupPageResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{slug} [get]
func (h *Handler) GroupPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	g, page, err := h.service.ListByGroup(r.Context(), slug, pageParam(r))
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to load group page")
		return
	}

	data := &GroupPageResponse{
		Group: g.ToResponse(),
		Posts: toResponses(page.Posts),
	}
	response.JSONWithMeta(w, http.StatusOK, data, pageMeta(page))
}

// Profile handles GET /profile/{username}
// @Summary      Author profile
// @Description  Author info with one page of their posts
// @Tags         posts
// @Produce      json
// @Param        username path string true "Username"
// @Param        page query int false "Page number" default(1)
// @Success      200 {object} response.APIResponse{data=ProfileResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /profile/{username} [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	author, page, err := h.service.ListByAuthor(r.Context(), username, pageParam(r))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to load profile")
		return
	}

	data := &ProfileResponse{
		Author: author.ToResponse(),
		Posts:  toResponses(page.Posts),
	}
	response.JSONWithMeta(w, http.StatusOK, data, pageMeta(page))
}

// GetByID handles GET /posts/{id}
// @Summary      Post detail
// @Tags         posts
// @Produce      json
// @Param        id path int true "Post ID"
// @Success      200 {object} response.APIResponse{data=PostResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /posts/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid post ID")
		return
	}

	post, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get post")
		return
	}

	response.JSON(w, http.StatusOK, post.ToResponse())
}

// NewForm handles GET /posts/new
// @Summary      Blank post form
// @Description  Form state for creating a post; anonymous users are redirected to login
// @Tags         posts
// @Produce      json
// @Success      200 {object} response.APIResponse{data=PostFormResponse}
// @Failure      302 {string} string "redirect to /auth/login"
// @Router       /posts/new [get]
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.blankForm(r, false)
	if err != nil {
		response.InternalError(w, "Failed to load form")
		return
	}

	response.JSON(w, http.StatusOK, form)
}

// Create handles POST /posts
// @Summary      Create a post
// @Description  Publishes a post for the acting identity and redirects to their profile
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        request body PostFormRequest true "Post form"
// @Success      303 {string} string "redirect to /profile/{username}"
// @Failure      400 {object} response.APIResponse
// @Router       /posts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return
	}

	var req PostFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	post, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			h.formErrors(w, r, &req, false, verr.Fields)
			return
		}
		response.InternalError(w, "Failed to create post")
		return
	}

	http.Redirect(w, r, "/profile/"+post.AuthorUsername, http.StatusSeeOther)
}

// EditForm handles GET /posts/{id}/edit
// @Summary      Pre-filled edit form
// @Description  Only the author gets the form; everyone else is redirected to the post
// @Tags         posts
// @Produce      json
// @Param        id path int true "Post ID"
// @Success      200 {object} response.APIResponse{data=PostFormResponse}
// @Failure      302 {string} string "redirect to /posts/{id} or /auth/login"
// @Failure      404 {object} response.APIResponse
// @Router       /posts/{id}/edit [get]
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid post ID")
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	post, err := h.service.EditablePost(r.Context(), userID, id)
	if err != nil {
		h.editDenied(w, r, id, err)
		return
	}

	form, err := h.blankForm(r, true)
	if err != nil {
		response.InternalError(w, "Failed to load form")
		return
	}
	form.Text = post.Text
	form.GroupID = post.GroupID

	response.JSON(w, http.StatusOK, form)
}

// Update handles POST /posts/{id}
// @Summary      Edit a post
// @Description  Rewrites text and group only; author and pub_date never change
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id path int true "Post ID"
// @Param        request body PostFormRequest true "Post form"
// @Success      303 {string} string "redirect to /posts/{id}"
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /posts/{id} [post]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid post ID")
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	var req PostFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	post, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			h.formErrors(w, r, &req, true, verr.Fields)
			return
		}
		h.editDenied(w, r, id, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d", post.ID), http.StatusSeeOther)
}

// editDenied maps authoring failures: unknown posts are 404s, foreign posts
// redirect silently to the detail view
func (h *Handler) editDenied(w http.ResponseWriter, r *http.Request, id int64, err error) {
	switch {
	case errors.Is(err, ErrPostNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotAuthor):
		http.Redirect(w, r, fmt.Sprintf("/posts/%d", id), http.StatusFound)
	default:
		response.InternalError(w, "Failed to edit post")
	}
}

func (h *Handler) blankForm(r *http.Request, isEdit bool) (*PostFormResponse, error) {
	groups, err := h.service.GroupChoices(r.Context())
	if err != nil {
		return nil, err
	}

	return &PostFormResponse{
		IsEdit: isEdit,
		Groups: groupChoices(groups),
	}, nil
}

// formErrors re-renders the form as submitted with field-level messages
func (h *Handler) formErrors(w http.ResponseWriter, r *http.Request, req *PostFormRequest, isEdit bool, fields map[string]string) {
	form, err := h.blankForm(r, isEdit)
	if err != nil {
		response.InternalError(w, "Failed to load form")
		return
	}
	form.Text = req.Text
	form.GroupID = req.GroupID

	response.ValidationFailed(w, form, fields)
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func pageMeta(page *Page) *response.Meta {
	return &response.Meta{
		Page:       page.Number,
		PerPage:    PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}

func toResponses(posts []*Post) []*PostResponse {
	responses := make([]*PostResponse, len(posts))
	for i, p := range posts {
		responses[i] = p.ToResponse()
	}
	return responses
}
