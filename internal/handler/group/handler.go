package group

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/memory-api/internal/handler"
	"github.com/jwalitptl/memory-api/internal/middleware"
	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/service/group"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
	"github.com/jwalitptl/memory-api/pkg/httputil"
)

const imageField = "groupImage"

type Service interface {
	Create(ctx context.Context, userID int64, in *model.CreateGroupInput) (*model.Group, error)
	List(ctx context.Context, filter model.GroupFilter) ([]*model.GroupSummary, error)
	Get(ctx context.Context, id int64) (*model.GroupDetail, error)
	Update(ctx context.Context, userID, id int64, in *model.UpdateGroupInput) (*model.Group, error)
	DeleteImage(ctx context.Context, userID, id int64) error
	Delete(ctx context.Context, userID, id int64) error
	IsPublic(ctx context.Context, id int64) (bool, error)
	VerifyPassword(ctx context.Context, id int64, password string) error
	Join(ctx context.Context, userID, id int64) error
	Leave(ctx context.Context, userID, id int64) error
	Like(ctx context.Context, id int64) error
}

// BadgeService lists a group's badges and grants new ones by hand
type BadgeService interface {
	List(ctx context.Context, groupID int64) ([]*model.Badge, error)
	Create(ctx context.Context, userID, groupID int64, req *model.CreateBadgeRequest) (*model.Badge, error)
}

type Handler struct {
	service Service
	badges  BadgeService
}

func NewHandler(service Service, badges BadgeService) *Handler {
	return &Handler{service: service, badges: badges}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	groups := r.Group("/groups")
	{
		groups.POST("", auth.Required(), middleware.BodyLimit(middleware.MaxUploadSize), h.Create)
		groups.GET("", h.List)
		groups.GET("/:groupId", auth.Required(), h.Get)
		groups.PATCH("/:groupId", auth.Required(), middleware.BodyLimit(middleware.MaxUploadSize), h.Update)
		groups.DELETE("/:groupId", auth.Required(), h.Delete)
		groups.DELETE("/:groupId/image", auth.Required(), h.DeleteImage)
		groups.GET("/:groupId/is-public", h.IsPublic)
		groups.POST("/:groupId/verify-password", middleware.BodyLimit(middleware.DefaultMaxBodySize), h.VerifyPassword)
		groups.POST("/:groupId/join", auth.Required(), h.Join)
		groups.DELETE("/:groupId/leave", auth.Required(), h.Leave)
		groups.POST("/:groupId/like", auth.Required(), h.Like)
		groups.GET("/:groupId/badges", h.Badges)
		groups.POST("/:groupId/badges", auth.Required(), middleware.BodyLimit(middleware.DefaultMaxBodySize), h.CreateBadge)
	}
}

func (h *Handler) Create(c *gin.Context) {
	userID, err := handler.CurrentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var form model.CreateGroupForm
	if err := c.ShouldBind(&form); err != nil {
		httputil.RespondWithError(c, httputil.BindError(err))
		return
	}
	img, err := readImage(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	g, err := h.service.Create(c.Request.Context(), userID, &model.CreateGroupInput{
		Name:         form.Name,
		Password:     form.Password,
		IsPublic:     form.IsPublic,
		Introduction: form.Introduction,
		Image:        img,
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, "group created", g)
}

func (h *Handler) List(c *gin.Context) {
	filter := model.GroupFilter{
		Keyword: c.Query("keyword"),
		SortBy:  c.DefaultQuery("sortBy", model.GroupSortMostLiked),
	}
	switch c.Query("type") {
	case "public":
		v := true
		filter.IsPublic = &v
	case "private":
		v := false
		filter.IsPublic = &v
	case "":
	default:
		httputil.RespondWithError(c, apperrors.Validation("type must be public or private", nil))
		return
	}

	groups, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "", groups)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := handler.IDParam(c, "groupId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "", detail)
}

func (h *Handler) Update(c *gin.Context) {
	userID, id, ok := userAndGroup(c)
	if !ok {
		return
	}

	var form model.UpdateGroupForm
	if err := c.ShouldBind(&form); err != nil {
		httputil.RespondWithError(c, httputil.BindError(err))
		return
	}
	img, err := readImage(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	g, err := h.service.Update(c.Request.Context(), userID, id, &model.UpdateGroupInput{
		Name:         form.Name,
		Password:     form.Password,
		IsPublic:     form.IsPublic,
		Introduction: form.Introduction,
		Image:        img,
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "group updated", g)
}

func (h *Handler) DeleteImage(c *gin.Context) {
	userID, id, ok := userAndGroup(c)
	if !ok {
		return
	}
	if err := h.service.DeleteImage(c.Request.Context(), userID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "group image deleted", nil)
}

func (h *Handler) Delete(c *gin.Context) {
	userID, id, ok := userAndGroup(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "group deleted", nil)
}

func (h *Handler) IsPublic(c *gin.Context) {
	id, err := handler.IDParam(c, "groupId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	public, err := h.service.IsPublic(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "", gin.H{"groupId": id, "isPublic": public})
}

func (h *Handler) VerifyPassword(c *gin.Context) {
	id, err := handler.IDParam(c, "groupId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	var req model.VerifyPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, httputil.BindError(err))
		return
	}
	if err := h.service.VerifyPassword(c.Request.Context(), id, req.Password); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "password verified", nil)
}

func (h *Handler) Join(c *gin.Context) {
	userID, id, ok := userAndGroup(c)
	if !ok {
		return
	}
	if err := h.service.Join(c.Request.Context(), userID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, "joined group", nil)
}

func (h *Handler) Leave(c *gin.Context) {
	userID, id, ok := userAndGroup(c)
	if !ok {
		return
	}
	if err := h.service.Leave(c.Request.Context(), userID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "left group", nil)
}

func (h *Handler) Like(c *gin.Context) {
	id, err := handler.IDParam(c, "groupId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if err := h.service.Like(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "group liked", nil)
}

func (h *Handler) Badges(c *gin.Context) {
	id, err := handler.IDParam(c, "groupId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	badges, err := h.badges.List(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if badges == nil {
		badges = []*model.Badge{}
	}
	httputil.RespondWithSuccess(c, "", badges)
}

func (h *Handler) CreateBadge(c *gin.Context) {
	userID, id, ok := userAndGroup(c)
	if !ok {
		return
	}
	var req model.CreateBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, httputil.BindError(err))
		return
	}
	badge, err := h.badges.Create(c.Request.Context(), userID, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, "badge added", badge)
}

func userAndGroup(c *gin.Context) (int64, int64, bool) {
	userID, err := handler.CurrentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return 0, 0, false
	}
	id, err := handler.IDParam(c, "groupId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return 0, 0, false
	}
	return userID, id, true
}

// readImage loads the optional uploaded image. Type and size are checked by the service.
func readImage(c *gin.Context) (*model.Image, error) {
	fh, err := c.FormFile(imageField)
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Validation("invalid "+imageField, err)
	}
	if fh.Size > group.MaxImageSize {
		return nil, apperrors.Validation("image must be 10MB or smaller", nil)
	}
	return loadFile(fh)
}

func loadFile(fh *multipart.FileHeader) (*model.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.Validation("failed to read "+imageField, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, group.MaxImageSize+1))
	if err != nil {
		return nil, apperrors.Validation("failed to read "+imageField, err)
	}
	return &model.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}
