package handlers

import (
	"net/http"
	"strings"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
)

func readName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req NameRequest
	if err := readJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid input")
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respond(w, http.StatusBadRequest, []ValidationError{{Field: "Name", Description: "Name is required"}})
		return "", false
	}
	return name, true
}

// CreateCategoryHandler godoc
// @Summary Create a category
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body NameRequest true "Category name"
// @Success 201 {object} models.Category
// @Failure 400 {array} ValidationError
// @Router /categories [post]
func CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := readName(w, r)
	if !ok {
		return
	}
	created, err := categoryRepo.Create(r.Context(), models.Category{Name: name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, created)
}

// GetCategoriesHandler godoc
// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := categoryRepo.GetAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	respond(w, http.StatusOK, categories)
}

// CreateTagHandler godoc
// @Summary Create a tag
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tag body NameRequest true "Tag name"
// @Success 201 {object} models.Tag
// @Failure 400 {array} ValidationError
// @Router /tags [post]
func CreateTagHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := readName(w, r)
	if !ok {
		return
	}
	created, err := tagRepo.Create(r.Context(), models.Tag{Name: name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, created)
}

// GetTagsHandler godoc
// @Summary List tags
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Tag
// @Router /tags [get]
func GetTagsHandler(w http.ResponseWriter, r *http.Request) {
	tags, err := tagRepo.GetAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	respond(w, http.StatusOK, tags)
}
