package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/okarpenko/staybase/internal/auth"
	"github.com/okarpenko/staybase/internal/middleware"
	"github.com/okarpenko/staybase/internal/model"
	"github.com/okarpenko/staybase/internal/store"
)

// ArticlesCollection is the document-store collection holding
// articles.
const ArticlesCollection = "articles"

// sequenceField is the document field carrying the application-level
// article id.
const sequenceField = "uid"

// ArticleHandler handles the article CRUD routes.
type ArticleHandler struct {
	store  store.Store
	logger *zap.Logger
}

// NewArticleHandler creates a new ArticleHandler instance.
func NewArticleHandler(s store.Store, logger *zap.Logger) *ArticleHandler {
	return &ArticleHandler{
		store:  s,
		logger: logger,
	}
}

// RegisterRoutes registers the article routes. The listing is gated
// behind Basic authentication; everything else is public.
func (h *ArticleHandler) RegisterRoutes(router *mux.Router, basicGate middleware.Middleware) {
	sub := router.PathPrefix("/api/v1/articles").Subrouter()

	list := basicGate(http.HandlerFunc(h.List))
	sub.Handle("", list).Methods(http.MethodGet)
	sub.Handle("/", list).Methods(http.MethodGet)

	sub.HandleFunc("", h.Create).Methods(http.MethodPost)
	sub.HandleFunc("/", h.Create).Methods(http.MethodPost)

	sub.HandleFunc("/{id}", h.GetByUID).Methods(http.MethodGet)
	sub.HandleFunc("/{id}", h.Update).Methods(http.MethodPut)
	sub.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)
}

// List handles GET /api/v1/articles. Only the admin account may list
// all articles.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, _ := auth.FromContext(ctx)
	if err := auth.Authorize(id, auth.CapabilityListArticles); err != nil {
		writeMsg(h.logger, w, http.StatusUnauthorized, "msg", "unauthorized")
		return
	}

	docs, err := h.store.Find(ctx, ArticlesCollection, nil)
	if err != nil {
		h.storeError(w, err, "list articles")
		return
	}

	articles := make([]model.Article, 0, len(docs))
	for _, doc := range docs {
		docID, _ := doc[store.IDKey].(string)
		articles = append(articles, *model.ArticleFromDocument(docID, doc))
	}

	writeJSON(h.logger, w, http.StatusOK, articles)
}

// GetByUID handles GET /api/v1/articles/{id}. The path parameter is
// the article uid, not the internal id.
func (h *ArticleHandler) GetByUID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, ok := h.parseUID(w, r)
	if !ok {
		return
	}

	docs, err := h.store.Find(ctx, ArticlesCollection, store.Filter{sequenceField: uid})
	if err != nil {
		h.storeError(w, err, "get article")
		return
	}

	if len(docs) == 0 {
		writeMsg(h.logger, w, http.StatusNotFound, "msg", "Article not found")
		return
	}

	docID, _ := docs[0][store.IDKey].(string)
	writeJSON(h.logger, w, http.StatusOK, model.ArticleFromDocument(docID, docs[0]))
}

// createResponse is the body returned on successful article creation.
type createResponse struct {
	Msg     string         `json:"msg"`
	Article *model.Article `json:"article"`
}

// Create handles POST /api/v1/articles. The new article gets the next
// free uid, computed from the current maximum in the collection.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input model.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		writeMsg(h.logger, w, http.StatusBadRequest, "msg", "invalid request body")
		return
	}

	if errs := input.ValidateCreate(); errs != nil {
		writeJSON(h.logger, w, http.StatusUnprocessableEntity, map[string]model.FieldErrors{"err": errs})
		return
	}

	maxUID, err := h.store.MaxSequence(ctx, ArticlesCollection, sequenceField)
	if err != nil {
		h.storeError(w, err, "max article uid")
		return
	}

	article := &model.Article{
		UID:      maxUID + 1,
		Title:    *input.Title,
		FullText: *input.FullText,
	}

	docID, err := h.store.Insert(ctx, ArticlesCollection, article.Document())
	if err != nil {
		h.storeError(w, err, "create article")
		return
	}
	article.DocID = docID

	writeJSON(h.logger, w, http.StatusCreated, createResponse{
		Msg:     "New article added",
		Article: article,
	})
}

// Update handles PUT /api/v1/articles/{id}. Only the supplied fields
// are merged into the stored document; the mutation is keyed by uid in
// a single store operation.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, ok := h.parseUID(w, r)
	if !ok {
		return
	}

	var input model.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		writeMsg(h.logger, w, http.StatusBadRequest, "msg", "invalid request body")
		return
	}

	if errs := input.ValidateUpdate(); errs != nil {
		writeJSON(h.logger, w, http.StatusUnprocessableEntity, map[string]model.FieldErrors{"err": errs})
		return
	}

	matched, err := h.store.UpdateWhere(ctx, ArticlesCollection, store.Filter{sequenceField: uid}, input.Fields())
	if err != nil {
		h.storeError(w, err, "update article")
		return
	}

	if matched == 0 {
		writeMsg(h.logger, w, http.StatusNotFound, "msg", "Article not found")
		return
	}

	writeMsg(h.logger, w, http.StatusOK, "msg", fmt.Sprintf("Article with UID %d updated", uid))
}

// Delete handles DELETE /api/v1/articles/{id}, keyed by uid in a
// single store operation.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid, ok := h.parseUID(w, r)
	if !ok {
		return
	}

	deleted, err := h.store.RemoveWhere(ctx, ArticlesCollection, store.Filter{sequenceField: uid})
	if err != nil {
		h.storeError(w, err, "delete article")
		return
	}

	if deleted == 0 {
		writeMsg(h.logger, w, http.StatusNotFound, "msg", "Article not found")
		return
	}

	writeMsg(h.logger, w, http.StatusOK, "msg", "Article deleted")
}

// parseUID parses the uid path parameter, writing a 400 on malformed
// input. The request never reaches the store in that case.
func (h *ArticleHandler) parseUID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]

	uid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeMsg(h.logger, w, http.StatusBadRequest, "msg", "Invalid article UID format")
		return 0, false
	}

	return uid, true
}

// storeError logs a store failure and writes the generic 500 body. The
// underlying cause never reaches the client.
func (h *ArticleHandler) storeError(w http.ResponseWriter, err error, operation string) {
	h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err))
	writeMsg(h.logger, w, http.StatusInternalServerError, "msg", "Internal server error")
}
