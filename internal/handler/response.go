package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"todolist/internal/middleware"
	"todolist/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// currentUserID reads the id set by the auth middleware. It writes the error reply itself.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Invalid user ID format"})
		return uuid.Nil, false
	}
	return id, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + name + " format"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service errors onto status codes. Anything unclassified is a 500
// with a generic message.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "You don't have permission to perform this action"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Already exists"})
	default:
		_ = c.Error(err)
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// parseTime accepts RFC 3339 timestamps or plain dates.
func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

// queryUpperTime reads an optional upper time bound. A timestamp is an inclusive bound; a
// plain date covers that whole day and comes back as an exclusive bound at the next midnight.
func queryUpperTime(c *gin.Context, name string) (inclusive, exclusive *time.Time, ok bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil, true
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + name + " format"})
		return nil, nil, false
	}
	next := day.AddDate(0, 0, 1)
	return nil, &next, true
}

// queryTime reads an optional time query parameter, replying 400 when it is malformed.
func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := parseTime(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + name + " format"})
		return nil, false
	}
	return &t, true
}

// queryIDs reads a repeatable uuid query parameter. Comma separated values are accepted too.
func queryIDs(c *gin.Context, name string) ([]uuid.UUID, bool) {
	var ids []uuid.UUID
	for _, raw := range queryValues(c, name) {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + name + " format"})
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

func queryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	ids, ok := queryIDs(c, name)
	if !ok || len(ids) == 0 {
		return nil, ok
	}
	return &ids[0], true
}

func queryValues(c *gin.Context, name string) []string {
	var values []string
	for _, v := range c.QueryArray(name) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
	}
	return values
}

// optionalTime tells an absent JSON field apart from an explicit null.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}
