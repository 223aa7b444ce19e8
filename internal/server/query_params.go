package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const dateOnlyLayout = "2006-01-02"

var errInvalidTime = errors.New("invalid_time")

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalSnowflakeID(value string) (*snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := snowflake.ParseString(trimmed)
	if err != nil || parsed == 0 {
		return nil, errors.New("invalid_snowflake_id")
	}
	return &parsed, nil
}

// parseOptionalDate accepts a plain date or an RFC3339 timestamp; the result is a UTC instant.
func parseOptionalDate(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		utc := parsed.UTC()
		return &utc, nil
	}
	return nil, errInvalidTime
}

func pathID(c *gin.Context) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || id == 0 {
		return 0, newValidationError("id", "invalid_id", "invalid id")
	}
	return id, nil
}

// queryParser collects the first bad query parameter while parsing several.
type queryParser struct {
	c   *gin.Context
	err error
}

func (p *queryParser) id(name string) *snowflake.ID {
	if p.err != nil {
		return nil
	}
	value, err := parseOptionalSnowflakeID(p.c.Query(name))
	if err != nil {
		p.err = newValidationError(name, "invalid_"+name, "invalid "+name)
	}
	return value
}

func (p *queryParser) date(name string) *time.Time {
	if p.err != nil {
		return nil
	}
	value, err := parseOptionalDate(p.c.Query(name))
	if err != nil {
		p.err = newValidationError(name, "invalid_"+name, "invalid "+name)
	}
	return value
}

func (p *queryParser) boolean(name string) *bool {
	if p.err != nil {
		return nil
	}
	value, err := parseOptionalBool(p.c.Query(name))
	if err != nil {
		p.err = newValidationError(name, "invalid_"+name, "invalid "+name)
	}
	return value
}

func (p *queryParser) upper(name string) *string {
	trimmed := strings.ToUpper(strings.TrimSpace(p.c.Query(name)))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
