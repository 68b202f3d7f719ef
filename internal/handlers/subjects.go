package handlers

import (
	"github.com/avvvet/coursebuddy/internal/models"
	"github.com/avvvet/coursebuddy/internal/subjects"
)

// SubjectHandler serves subject autocomplete and the profile form options.
type SubjectHandler struct {
	catalog *subjects.Catalog
}

func NewSubjectHandler(catalog *subjects.Catalog) *SubjectHandler {
	return &SubjectHandler{catalog: catalog}
}

// Rank suggests catalog labels for query. Valid is true only when query is
// exactly a catalog label.
func (h *SubjectHandler) Rank(request *models.SubjectRequest) *models.SubjectResponse {
	return &models.SubjectResponse{
		Query:       request.Query,
		Suggestions: h.catalog.Rank(request.Query),
		Valid:       h.catalog.Contains(request.Query),
	}
}

func (h *SubjectHandler) Catalog() *models.CatalogResponse {
	return &models.CatalogResponse{
		Subjects:        h.catalog.Labels(),
		SchoolTypes:     append([]string(nil), subjects.SchoolTypes...),
		Languages:       append([]string(nil), subjects.Languages...),
		EducationLevels: append([]string(nil), subjects.EducationLevels...),
	}
}
