package http_session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/humanbelnik/watchlist/internal/delivery/http/common"
	delivery_session "github.com/humanbelnik/watchlist/internal/delivery/session"
	"github.com/humanbelnik/watchlist/internal/model"
	usecase_session "github.com/humanbelnik/watchlist/internal/usecase/session"
)

type Controller struct {
	uc *usecase_session.Usecase

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(uc *usecase_session.Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		uc:     uc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	sessions.POST("", c.create)

	session := router.Group("/sessions/:session_id")
	session.GET("", c.get)
	session.DELETE("", c.delete)
	session.POST("/reload", c.reload)
	session.PUT("/filters", c.setFilters)
	session.POST("/start", c.start)
	session.POST("/decisions", c.decide)
	session.POST("/settle", c.settle)
	session.POST("/pick", c.pick)
	session.POST("/back", c.back)
	session.POST("/watched", c.watched)
	session.POST("/start-over", c.startOver)
}

// CreateRequestDTO DTO для создания сессии выбора
type CreateRequestDTO struct {
	GroupID string `json:"group_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// DecisionRequestDTO DTO решения по текущей карточке
type DecisionRequestDTO struct {
	Decision string `json:"decision" binding:"required,oneof=like nope" example:"like" enums:"like,nope"`
}

// PickRequestDTO DTO выбора победителя
type PickRequestDTO struct {
	EntryID string `json:"entry_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// Create создает сессию выбора
// @Summary Создание сессии
// @Description Создает сессию выбора для группы и загружает непросмотренные записи.
// @Description Если загрузка не удалась, сессия все равно создается, ошибка в поле load_error.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body CreateRequestDTO true "Группа"
// @Success 201 {object} delivery_session.SessionResponse "Сессия создана"
// @Failure 400 {object} http_common.ErrorResponse "Некорректный запрос"
// @Router /sessions [post]
func (c *Controller) create(ctx *gin.Context) {
	var req CreateRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("invalid request body", slog.String("error", err.Error()))
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}
	groupID := uuid.MustParse(req.GroupID)

	v, err := c.uc.Create(ctx.Request.Context(), groupID)
	if err != nil && !errors.Is(err, usecase_session.ErrLoadFailed) {
		c.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, delivery_session.ConvertFromView(v))
}

// Get возвращает состояние сессии
// @Summary Состояние сессии
// @Tags Sessions
// @Produce json
// @Param session_id path string true "ID сессии"
// @Success 200 {object} delivery_session.SessionResponse
// @Failure 400 {object} http_common.ErrorResponse "Некорректный ID"
// @Failure 404 {object} http_common.ErrorResponse "Сессия не найдена"
// @Router /sessions/{session_id} [get]
func (c *Controller) get(ctx *gin.Context) {
	id, ok := c.sessionID(ctx)
	if !ok {
		return
	}
	c.respond(ctx)(c.uc.Get(id))
}

// Delete удаляет сессию
// @Summary Удаление сессии
// @Tags Sessions
// @Param session_id path string true "ID сессии"
// @Success 204
// @Failure 404 {object} http_common.ErrorResponse "Сессия не найдена"
// @Router /sessions/{session_id} [delete]
func (c *Controller) delete(ctx *gin.Context) {
	id, ok := c.sessionID(ctx)
	if !ok {
		return
	}
	if err := c.uc.Delete(id); err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Reload перезагружает список записей
// @Summary Перезагрузка пула
// @Description Заново загружает непросмотренные записи и возвращает сессию к анкете
// @Tags Sessions
// @Produce json
// @Param session_id path string true "ID сессии"
// @Success 200 {object} delivery_session.SessionResponse
// @Failure 404 {object} http_common.ErrorResponse "Сессия не найдена"
// @Failure 409 {object} http_common.ErrorResponse "Запрос вытеснен более новым"
// @Failure 503 {object} http_common.ErrorResponse "Хранилище недоступно"
// @Router /sessions/{session_id}/reload [post]
func (c *Controller) reload(ctx *gin.Context) {
	id, ok := c.sessionID(ctx)
	if !ok {
		return
	}
	c.respond(ctx)(c.uc.Reload(ctx.Request.Context(), id))
}

// SetFilters сохраняет ответы анкеты
// @Summary Фильтры анкеты
// @Description Пустой список означает отсутствие ограничения. Вне анкеты запрос ничего не меняет.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session_id path string true "ID сессии"
// @Param request body delivery_session.FiltersDTO true "Фильтры"
// @Success 200 {object} delivery_session.SessionResponse
// @Failure 400 {object} http_common.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} http_common.ErrorResponse "Сессия не найдена"
// @Router /sessions/{session_id}/filters [put]
func (c *Controller) setFilters(ctx *gin.Context) {
	id, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	var req delivery_session.FiltersDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}
	filters, valid := req.ConvertToFilterSelection()
	if !valid {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "unknown time type",
		})
		return
	}

	c.respond(ctx)(c.uc.SetFilters(id, filters))
}

// Start запускает свайпы
// @Summary Начать выбор
// @Description Строит перемешанную колоду по фильтрам. Если ничего не подошло, no_matches = true.
// @Tags Sessions
// @Produce json
// @Param session_id path string true "ID сессии"
// @Success 200 {object} delivery_session.SessionResponse
// @Failure 404 {object} http_common.ErrorResponse "Сессия не найдена"
// @Router /sessions/{session_id}/start [post]
func (c *Controller) start(ctx *gin.Context) {
	id, ok := c.sessionID(ctx)
	if !ok {
		return
	}
	c.respond(ctx)(c.uc.Start(id))
}

// Decide решение по текущей карточке
// @Summary Лайк или пропуск
// @Description Отклоненное решение (цель достигнута, идет анимация) не является ошибкой, см. can_decide
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session_id path string true "ID сессии"
// @Param request body DecisionRequestDTO true "Решение"
// @Success 200 {object} delivery_session.SessionResponse
// @Failure 400 {object} http_common.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} http_common.ErrorResponse "Сессия не найдена"
// @Router /sessions/{session_id}/decisions [post]
func (c *Controller) decide(ctx *gin.Context) {
	id, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	var req DecisionRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	c.respond(ctx)(c.uc.Commit(id, model.Decision(req.Decision)))
}

// Settle завершает анимацию ухода карточки
// @Summary Завершить решение
// @Tags Sessions
// @Produce json
// @Param session_id path string true "ID сессии"
// @Success 200 {object} delivery_session.SessionResponse
// @Failure 404 {object} http_common.ErrorResponse "Сессия не найдена"
// @Router /sessions/{session_id}/settle [post]
func (c *Controller) settle(ctx *gin.Context) {
	id, ok := c.sessionID(ctx)
	if !ok {
		return
	}
	c.respond(ctx)(c.uc.Settle(id))
}

// Pick выбирает победителя среди понравившихся
// @Summary Выбор победителя
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session_id path string true "ID сессии"
// @Param request body PickRequestDTO true "Запись"
// @Success 200 {object} delivery_session.SessionResponse
// @Failure 400 {object} http_common.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} http_common.ErrorResponse "Сессия не найдена"
// @Router /sessions/{session_id}/pick [post]
func (c *Controller) pick(ctx *gin.Context) {
	id, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	var req PickRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	c.respond(ctx)(c.uc.Pick(id, uuid.MustParse(req.EntryID)))
}

// Back возвращает к карточкам
// @Summary Назад к карточкам
// @Description Победитель сбрасывается, оставшаяся колода сохраняется
// @Tags Sessions
// @Produce json
// @Param session_id path string true "ID сессии"
// @Success 200 {object} delivery_session.SessionResponse
// @Failure 404 {object} http_common.ErrorResponse "Сессия не найдена"
// @Router /sessions/{session_id}/back [post]
func (c *Controller) back(ctx *gin.Context) {
	id, ok := c.sessionID(ctx)
	if !ok {
		return
	}
	c.respond(ctx)(c.uc.BackToCards(id))
}

// Watched отмечает победителя просмотренным
// @Summary Отметить просмотренным
// @Description При успехе пул перезагружается и сессия возвращается к анкете
// @Tags Sessions
// @Produce json
// @Param session_id path string true "ID сессии"
// @Success 200 {object} delivery_session.SessionResponse
// @Failure 404 {object} http_common.ErrorResponse "Сессия не найдена"
// @Failure 409 {object} http_common.ErrorResponse "Победитель не выбран"
// @Failure 503 {object} http_common.ErrorResponse "Хранилище недоступно"
// @Router /sessions/{session_id}/watched [post]
func (c *Controller) watched(ctx *gin.Context) {
	id, ok := c.sessionID(ctx)
	if !ok {
		return
	}
	c.respond(ctx)(c.uc.MarkWatched(ctx.Request.Context(), id))
}

// StartOver сбрасывает сессию к анкете
// @Summary Начать заново
// @Tags Sessions
// @Produce json
// @Param session_id path string true "ID сессии"
// @Success 200 {object} delivery_session.SessionResponse
// @Failure 404 {object} http_common.ErrorResponse "Сессия не найдена"
// @Router /sessions/{session_id}/start-over [post]
func (c *Controller) startOver(ctx *gin.Context) {
	id, ok := c.sessionID(ctx)
	if !ok {
		return
	}
	c.respond(ctx)(c.uc.StartOver(id))
}

func (c *Controller) sessionID(ctx *gin.Context) (uuid.UUID, bool) {
	raw := ctx.Param("session_id")
	id, err := uuid.Parse(raw)
	if err != nil {
		c.logger.Warn("invalid session ID", slog.String("id", raw))
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid session id",
		})
		return uuid.Nil, false
	}
	return id, true
}

func (c *Controller) respond(ctx *gin.Context) func(usecase_session.View, error) {
	return func(v usecase_session.View, err error) {
		if err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, delivery_session.ConvertFromView(v))
	}
}

func (c *Controller) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase_session.ErrSessionNotFound):
		ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
			Message: "not found",
		})
	case errors.Is(err, usecase_session.ErrNoWinner):
		ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
			Message: "no winner selected",
		})
	case errors.Is(err, usecase_session.ErrStaleResult):
		ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
			Message: "superseded by a newer request",
		})
	case errors.Is(err, usecase_session.ErrLoadFailed),
		errors.Is(err, usecase_session.ErrMarkWatchedFailed):
		c.logger.Error("store call failed", slog.String("error", err.Error()))
		ctx.JSON(http.StatusServiceUnavailable, http_common.ErrorResponse{
			Message: "unavailable",
		})
	default:
		c.logger.Error("session request failed", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
	}
}
