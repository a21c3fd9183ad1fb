package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prajanews/newsdesk/internal/aigen"
	dbutil "github.com/prajanews/newsdesk/internal/db"
	"github.com/prajanews/newsdesk/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GeographyHandler manages admin CRUD for the administrative location tree.
type GeographyHandler struct {
	db *gorm.DB       // Database handle for geography records.
	ai aigen.Provider // Machine translation fallback, nil when unconfigured.
}

// NewGeographyHandler constructs a geography handler.
func NewGeographyHandler(db *gorm.DB, ai aigen.Provider) *GeographyHandler {
	return &GeographyHandler{db: db, ai: ai}
}

// geographyRequest captures the shared payload for creating a location.
type geographyRequest struct {
	Name        string            `json:"name"`        // English name.
	Code        string            `json:"code"`        // Short code, states only.
	ParentID    string            `json:"parentId"`    // Parent location id.
	Names       map[string]string `json:"names"`       // Translated names by language code.
	TranslateTo []string          `json:"translateTo"` // Languages to machine-translate when no name is supplied.
}

// resolveNames cleans the supplied translations, fills requested languages
// through the AI translator, and marshals the result. Translation failures
// are logged and skipped so a gateway outage never blocks geography setup.
func (h *GeographyHandler) resolveNames(ctx context.Context, name string, body geographyRequest) (datatypes.JSON, error) {
	cleaned := make(map[string]string, len(body.Names))
	for lang, translated := range body.Names {
		lang = strings.TrimSpace(lang)
		translated = strings.TrimSpace(translated)
		if lang == "" || translated == "" {
			continue
		}
		cleaned[lang] = translated
	}

	for _, lang := range body.TranslateTo {
		lang = strings.TrimSpace(lang)
		if lang == "" {
			continue
		}
		if _, ok := cleaned[lang]; ok {
			continue
		}
		if h.ai == nil {
			continue
		}
		result, errTranslate := h.ai.Translate(ctx, aigen.TranslateRequest{Text: name, Language: lang})
		if errTranslate != nil {
			log.WithError(errTranslate).WithField("lang", lang).Warn("machine translation failed")
			continue
		}
		cleaned[lang] = strings.TrimSpace(result.Text)
	}

	if len(cleaned) == 0 {
		return nil, nil
	}
	raw, errMarshal := json.Marshal(cleaned)
	if errMarshal != nil {
		return nil, errMarshal
	}
	return datatypes.JSON(raw), nil
}

// langCodePattern limits language codes to what can safely feed a JSON path.
var langCodePattern = regexp.MustCompile(`^[a-z]{2,8}$`)

// nameSearch narrows a location query to rows whose English or localized
// name matches q.
func (h *GeographyHandler) nameSearch(query *gorm.DB, q, lang string) *gorm.DB {
	pattern := dbutil.NormalizeLikePattern(h.db, "%"+q+"%")
	if lang != "" && langCodePattern.MatchString(lang) {
		return query.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "name")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, dbutil.JSONExtractTextExpr(h.db, "names", lang)),
			pattern,
			pattern,
		)
	}
	return query.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "name"), pattern)
}

// localizedName returns the translated name for lang, falling back to the
// English name.
func localizedName(name string, names datatypes.JSON, lang string) string {
	if lang == "" || len(names) == 0 {
		return name
	}
	var translations map[string]string
	if errUnmarshal := json.Unmarshal(names, &translations); errUnmarshal != nil {
		return name
	}
	if translated := strings.TrimSpace(translations[lang]); translated != "" {
		return translated
	}
	return name
}

// CreateState inserts a new state.
func (h *GeographyHandler) CreateState(c *gin.Context) {
	var body geographyRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	code := strings.ToUpper(strings.TrimSpace(body.Code))
	if name == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and code are required"})
		return
	}
	names, errNames := h.resolveNames(c.Request.Context(), name, body)
	if errNames != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid names"})
		return
	}

	var existing models.State
	if errFind := h.db.WithContext(c.Request.Context()).Where("code = ?", code).First(&existing).Error; errFind == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "code already exists"})
		return
	}

	state := models.State{ID: uuid.NewString(), Name: name, Code: code, Names: names}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&state).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create state failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": state.ID, "name": state.Name, "code": state.Code})
}

// ListStates returns all states sorted by name, localized when lang is set
// and filtered by ?q= over English and localized names when present.
func (h *GeographyHandler) ListStates(c *gin.Context) {
	lang := strings.TrimSpace(c.Query("lang"))
	query := h.db.WithContext(c.Request.Context()).Model(&models.State{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = h.nameSearch(query, q, lang)
	}
	var rows []models.State
	if errFind := query.Order("name ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list states failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":   row.ID,
			"name": localizedName(row.Name, row.Names, lang),
			"code": row.Code,
		})
	}
	c.JSON(http.StatusOK, gin.H{"states": out})
}

// CreateDistrict inserts a new district under a state.
func (h *GeographyHandler) CreateDistrict(c *gin.Context) {
	var body geographyRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	parentID := strings.TrimSpace(body.ParentID)
	if name == "" || parentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and parentId are required"})
		return
	}
	names, errNames := h.resolveNames(c.Request.Context(), name, body)
	if errNames != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid names"})
		return
	}
	if !h.parentExists(c, &models.State{}, parentID) {
		return
	}

	district := models.District{ID: uuid.NewString(), StateID: parentID, Name: name, Names: names}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&district).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create district failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": district.ID, "name": district.Name, "stateId": district.StateID})
}

// ListDistricts returns the districts of one state.
func (h *GeographyHandler) ListDistricts(c *gin.Context) {
	lang := strings.TrimSpace(c.Query("lang"))
	stateID := strings.TrimSpace(c.Param("id"))
	query := h.db.WithContext(c.Request.Context()).
		Model(&models.District{}).
		Where("state_id = ?", stateID)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = h.nameSearch(query, q, lang)
	}
	var rows []models.District
	if errFind := query.Order("name ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list districts failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":      row.ID,
			"name":    localizedName(row.Name, row.Names, lang),
			"stateId": row.StateID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"districts": out})
}

// CreateMandal inserts a new mandal under a district.
func (h *GeographyHandler) CreateMandal(c *gin.Context) {
	var body geographyRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	parentID := strings.TrimSpace(body.ParentID)
	if name == "" || parentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and parentId are required"})
		return
	}
	names, errNames := h.resolveNames(c.Request.Context(), name, body)
	if errNames != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid names"})
		return
	}
	if !h.parentExists(c, &models.District{}, parentID) {
		return
	}

	mandal := models.Mandal{ID: uuid.NewString(), DistrictID: parentID, Name: name, Names: names}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&mandal).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create mandal failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": mandal.ID, "name": mandal.Name, "districtId": mandal.DistrictID})
}

// ListMandals returns the mandals of one district.
func (h *GeographyHandler) ListMandals(c *gin.Context) {
	lang := strings.TrimSpace(c.Query("lang"))
	districtID := strings.TrimSpace(c.Param("id"))
	query := h.db.WithContext(c.Request.Context()).
		Model(&models.Mandal{}).
		Where("district_id = ?", districtID)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = h.nameSearch(query, q, lang)
	}
	var rows []models.Mandal
	if errFind := query.Order("name ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list mandals failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":         row.ID,
			"name":       localizedName(row.Name, row.Names, lang),
			"districtId": row.DistrictID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"mandals": out})
}

// CreateAssembly inserts a new assembly constituency under a district.
func (h *GeographyHandler) CreateAssembly(c *gin.Context) {
	var body geographyRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	parentID := strings.TrimSpace(body.ParentID)
	if name == "" || parentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and parentId are required"})
		return
	}
	names, errNames := h.resolveNames(c.Request.Context(), name, body)
	if errNames != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid names"})
		return
	}
	if !h.parentExists(c, &models.District{}, parentID) {
		return
	}

	assembly := models.AssemblyConstituency{ID: uuid.NewString(), DistrictID: parentID, Name: name, Names: names}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&assembly).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create assembly constituency failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": assembly.ID, "name": assembly.Name, "districtId": assembly.DistrictID})
}

// ListAssemblies returns the assembly constituencies of one district.
func (h *GeographyHandler) ListAssemblies(c *gin.Context) {
	lang := strings.TrimSpace(c.Query("lang"))
	districtID := strings.TrimSpace(c.Param("id"))
	query := h.db.WithContext(c.Request.Context()).
		Model(&models.AssemblyConstituency{}).
		Where("district_id = ?", districtID)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = h.nameSearch(query, q, lang)
	}
	var rows []models.AssemblyConstituency
	if errFind := query.Order("name ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list assembly constituencies failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":         row.ID,
			"name":       localizedName(row.Name, row.Names, lang),
			"districtId": row.DistrictID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"assemblyConstituencies": out})
}

// parentExists checks the parent row and writes the error response when it
// is missing.
func (h *GeographyHandler) parentExists(c *gin.Context, model any, id string) bool {
	errFind := h.db.WithContext(c.Request.Context()).Where("id = ?", id).First(model).Error
	if errFind == nil {
		return true
	}
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parent not found"})
		return false
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
	return false
}
