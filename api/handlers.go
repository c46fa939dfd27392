package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/namansharma28/CollabBoard-sub000/bus"
	"github.com/namansharma28/CollabBoard-sub000/domain"
)

// Authenticator yields a stable user identity from an Authorization
// header, or rejects.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, svc *domain.MutationService, store domain.Store, auth Authenticator, broker *bus.Broker, deduper Deduper, logger *log.Logger) {
	e.GET("/healthz", healthz())

	e.GET("/api/boards/:boardID/tasks", getBoardTasks(svc, auth, logger))
	e.POST("/api/boards/:boardID/tasks", createTask(svc, auth, deduper, logger))
	e.PATCH("/api/tasks/:taskID", updateTask(svc, auth, deduper, logger))
	e.DELETE("/api/tasks/:taskID", deleteTask(svc, auth, deduper, logger))

	e.GET("/api/teams/:teamID/messages", getMessages(svc, auth, logger))
	e.POST("/api/teams/:teamID/messages", sendMessage(svc, auth, deduper, logger))

	e.GET("/api/stream", streamEvents(store, auth, broker, logger))
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func decodeBody(c echo.Context, dst any) error {
	lr := io.LimitReader(c.Request().Body, mutationMaxBodySize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeDomainError maps the service error taxonomy onto HTTP codes.
// Anything outside the taxonomy is an internal failure: logged with
// full context, surfaced as a generic message.
func writeDomainError(c echo.Context, logger *log.Logger, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	}
	logger.WithField("path", c.Path()).Errorf("mutation failed: %v", err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

// claimIdempotency generates a token when the client sent none and
// records it. dup is true when the token was already seen, in which
// case no mutation may run.
func claimIdempotency(ctx context.Context, deduper Deduper, userID, key string) (string, bool, error) {
	if key == "" {
		key = uuid.NewString()
	}
	added, err := deduper.Add(ctx, userID, key)
	if err != nil {
		return key, false, err
	}
	return key, !added, nil
}

// releaseIdempotency frees the token after a failed mutation so the
// user's manual retry is not rejected as a duplicate.
func releaseIdempotency(ctx context.Context, deduper Deduper, logger *log.Logger, userID, key string) {
	if err := deduper.Remove(ctx, userID, key); err != nil {
		logger.WithFields(log.Fields{"user": userID, "key": key}).Errorf("idempotency rollback failed: %v", err)
	}
}

func createTask(svc *domain.MutationService, auth Authenticator, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, ctx := newMutationMetrics(ctx, logger, "POST /api/boards/:boardID/tasks")
		defer func() { metrics.Log(c.Response().Status, err) }()

		authStart := time.Now()
		userID, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: authErr.Error()})
		}

		var req createTaskRequest
		if err := decodeBody(c, &req); err != nil {
			metrics.SetErrorStage("decode")
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		key, dup, idemErr := claimIdempotency(ctx, deduper, userID, req.IdempotencyKey)
		if idemErr != nil {
			metrics.SetErrorStage("idempotency")
			logger.Errorf("idempotency check: %v", idemErr)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		if dup {
			metrics.SetDuplicate()
			return c.JSON(http.StatusConflict, errorResponse{Error: "duplicate request"})
		}

		mutateStart := time.Now()
		task, svcErr := svc.CreateTask(ctx, c.Param("boardID"), req.TaskDraft, userID, key)
		metrics.ObserveMutate(time.Since(mutateStart))
		if svcErr != nil {
			metrics.SetErrorStage("mutate")
			releaseIdempotency(ctx, deduper, logger, userID, key)
			return writeDomainError(c, logger, svcErr)
		}
		return c.JSON(http.StatusCreated, taskResponse{Task: *task, IdempotencyKey: key})
	}
}

func updateTask(svc *domain.MutationService, auth Authenticator, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, ctx := newMutationMetrics(ctx, logger, "PATCH /api/tasks/:taskID")
		defer func() { metrics.Log(c.Response().Status, err) }()

		authStart := time.Now()
		userID, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: authErr.Error()})
		}

		var req updateTaskRequest
		if err := decodeBody(c, &req); err != nil {
			metrics.SetErrorStage("decode")
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		key, dup, idemErr := claimIdempotency(ctx, deduper, userID, req.IdempotencyKey)
		if idemErr != nil {
			metrics.SetErrorStage("idempotency")
			logger.Errorf("idempotency check: %v", idemErr)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		if dup {
			metrics.SetDuplicate()
			return c.JSON(http.StatusConflict, errorResponse{Error: "duplicate request"})
		}

		mutateStart := time.Now()
		task, svcErr := svc.UpdateTask(ctx, c.Param("taskID"), req.TaskPatch, userID, key)
		metrics.ObserveMutate(time.Since(mutateStart))
		if svcErr != nil {
			metrics.SetErrorStage("mutate")
			releaseIdempotency(ctx, deduper, logger, userID, key)
			return writeDomainError(c, logger, svcErr)
		}
		return c.JSON(http.StatusOK, taskResponse{Task: *task, IdempotencyKey: key})
	}
}

func deleteTask(svc *domain.MutationService, auth Authenticator, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, ctx := newMutationMetrics(ctx, logger, "DELETE /api/tasks/:taskID")
		defer func() { metrics.Log(c.Response().Status, err) }()

		authStart := time.Now()
		userID, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: authErr.Error()})
		}

		key, dup, idemErr := claimIdempotency(ctx, deduper, userID, c.QueryParam("idempotencyKey"))
		if idemErr != nil {
			metrics.SetErrorStage("idempotency")
			logger.Errorf("idempotency check: %v", idemErr)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		if dup {
			metrics.SetDuplicate()
			return c.JSON(http.StatusConflict, errorResponse{Error: "duplicate request"})
		}

		mutateStart := time.Now()
		task, svcErr := svc.DeleteTask(ctx, c.Param("taskID"), userID, key)
		metrics.ObserveMutate(time.Since(mutateStart))
		if svcErr != nil {
			metrics.SetErrorStage("mutate")
			releaseIdempotency(ctx, deduper, logger, userID, key)
			return writeDomainError(c, logger, svcErr)
		}
		return c.JSON(http.StatusOK, taskResponse{Task: *task, IdempotencyKey: key})
	}
}

func getBoardTasks(svc *domain.MutationService, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
		}
		board, tasks, err := svc.ListBoardTasks(ctx, c.Param("boardID"), userID)
		if err != nil {
			return writeDomainError(c, logger, err)
		}
		return c.JSON(http.StatusOK, boardTasksResponse{Board: *board, Tasks: tasks})
	}
}

func getMessages(svc *domain.MutationService, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
		}
		limit := 0
		if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
			n, parseErr := strconv.Atoi(raw)
			if parseErr != nil || n < 0 {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			}
			limit = n
		}
		msgs, err := svc.ListChannelMessages(ctx, c.Param("teamID"), c.QueryParam("channel"), userID, limit)
		if err != nil {
			return writeDomainError(c, logger, err)
		}
		return c.JSON(http.StatusOK, messagesResponse{Messages: msgs})
	}
}

func sendMessage(svc *domain.MutationService, auth Authenticator, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, ctx := newMutationMetrics(ctx, logger, "POST /api/teams/:teamID/messages")
		defer func() { metrics.Log(c.Response().Status, err) }()

		authStart := time.Now()
		userID, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: authErr.Error()})
		}

		var req sendMessageRequest
		if err := decodeBody(c, &req); err != nil {
			metrics.SetErrorStage("decode")
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		key, dup, idemErr := claimIdempotency(ctx, deduper, userID, req.IdempotencyKey)
		if idemErr != nil {
			metrics.SetErrorStage("idempotency")
			logger.Errorf("idempotency check: %v", idemErr)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		if dup {
			metrics.SetDuplicate()
			return c.JSON(http.StatusConflict, errorResponse{Error: "duplicate request"})
		}

		// The identity comes from the token; display fields are the
		// sender's self-reported profile, snapshotted at send time.
		sender := domain.SenderSnapshot{
			UserID: userID,
			Name:   req.SenderName,
			Avatar: req.SenderAvatar,
		}

		mutateStart := time.Now()
		msg, svcErr := svc.SendMessage(ctx, c.Param("teamID"), req.MessageDraft, sender, key)
		metrics.ObserveMutate(time.Since(mutateStart))
		if svcErr != nil {
			metrics.SetErrorStage("mutate")
			releaseIdempotency(ctx, deduper, logger, userID, key)
			return writeDomainError(c, logger, svcErr)
		}
		return c.JSON(http.StatusCreated, messageResponse{Message: *msg, IdempotencyKey: key})
	}
}
