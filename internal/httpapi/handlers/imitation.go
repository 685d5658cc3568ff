package handlers

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/imitator/internal/common"
	"github.com/suPer8Hu/imitator/internal/httpapi/middleware"
	"github.com/suPer8Hu/imitator/internal/imitation"
	"go.uber.org/zap"
)

const maxMessageBytes = 64 << 10

type imitationResp struct {
	UserName  string `json:"user_name"`
	Imitation string `json:"imitation"`
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

// AddMessage stores the raw request body as a message of the user in the path.
func (h *Handler) AddMessage(c *gin.Context) {
	name := c.Param("name")
	if name == "" || !utf8.ValidString(name) {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid utf8 in username")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMessageBytes)
	body, err := c.GetRawData()
	if err != nil {
		common.Fail(c, http.StatusRequestEntityTooLarge, 10003, "message too large")
		return
	}
	if !utf8.Valid(body) {
		common.Fail(c, http.StatusBadRequest, 10002, "invalid utf8 in message")
		return
	}
	if len(body) == 0 {
		common.Fail(c, http.StatusBadRequest, 10004, "message required")
		return
	}

	if err := h.Svc.Ingest(c.Request.Context(), name, string(body)); err != nil {
		h.internalError(c, "add message", err, zap.String("user_name", name))
		return
	}
	common.Respond(c, http.StatusCreated, gin.H{"user_name": name})
}

func (h *Handler) ImitateUser(c *gin.Context) {
	name := c.Param("name")
	if !utf8.ValidString(name) {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid utf8 in username")
		return
	}

	text, err := h.Svc.Generate(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, imitation.ErrUnknownUser) {
			common.Fail(c, http.StatusNotFound, 40401, "unknown user: "+name)
			return
		}
		h.internalError(c, "imitate user", err, zap.String("user_name", name))
		return
	}
	common.OK(c, imitationResp{UserName: name, Imitation: text})
}

func (h *Handler) ImitateRandomUser(c *gin.Context) {
	name, text, err := h.Svc.GenerateForRandomUser(c.Request.Context())
	if err != nil {
		if errors.Is(err, imitation.ErrNoUsers) {
			common.Fail(c, http.StatusNotFound, 40402, "no users")
			return
		}
		h.internalError(c, "imitate random user", err)
		return
	}
	common.OK(c, imitationResp{UserName: name, Imitation: text})
}

func (h *Handler) internalError(c *gin.Context, op string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("op", op),
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		zap.Error(err),
	)
	h.Log.Error("request failed", fields...)
	_ = c.Error(err)
	common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
}
