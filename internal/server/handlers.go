package server

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sql-explainer/pkg/errors"
)

//go:embed static/index.html
var indexHTML []byte

const (
	// form bodies are percent-encoded, so the body limit allows up to three
	// bytes per input byte plus this much for the rest of the form
	formOverhead    = 64 << 10
	multipartMemory = 32 << 20
)

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// handleExplain always answers 200 with either an explanation or an error.
func (s *Server) handleExplain(c *gin.Context) {
	log := s.logger.With(zap.String("request_id", c.GetString(requestIDKey)))

	if s.maxInputBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(s.maxInputBytes)*3+formOverhead)
	}
	if err := parseForm(c); err != nil {
		s.fail(c, log, err)
		return
	}

	sql, ok := c.GetPostForm("sql_code")
	if !ok {
		s.fail(c, log, errors.New(errors.CodeInvalidInput, "sql_code is required"))
		return
	}
	if err := s.validator.Validate(sql); err != nil {
		s.fail(c, log, err)
		return
	}

	exp, err := s.explainer.Explain(c.Request.Context(), sql)
	if err != nil {
		s.fail(c, log, err)
		return
	}
	if exp.Partial() {
		log.Info("partial explanation", zap.Int("chunks", exp.Chunks), zap.Ints("skipped", exp.Skipped))
	}
	c.JSON(http.StatusOK, gin.H{"explanation": exp.Text})
}

// parseForm reads urlencoded or multipart bodies. ParseForm runs first so its
// errors are not masked by ParseMultipartForm's ErrNotMultipart.
func parseForm(c *gin.Context) error {
	err := c.Request.ParseForm()
	if err == nil && c.ContentType() == gin.MIMEMultipartPOSTForm {
		err = c.Request.ParseMultipartForm(multipartMemory)
	}
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errors.Wrap(err, errors.CodeInvalidInput, "request body is too large")
	}
	return errors.Wrap(err, errors.CodeInvalidInput, "could not read form body")
}

// fail logs the full error and returns only its message to the client.
func (s *Server) fail(c *gin.Context, log *zap.Logger, err error) {
	fields := []zap.Field{zap.String("code", errors.GetCode(err)), zap.Error(err)}
	if errors.Is(err, errors.ErrInvalidInput) {
		log.Info("explain request rejected", fields...)
	} else {
		log.Warn("explain request failed", fields...)
	}
	c.JSON(http.StatusOK, gin.H{"error": errors.GetMessage(err)})
}
