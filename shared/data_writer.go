package shared

import (
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

// ErrorBody is the standard error envelope.
type ErrorBody struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code,omitempty"`
}

// MessageBody is the standard success envelope for operations that return no
// payload beyond a human-readable confirmation.
type MessageBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

// DataBody is the standard success envelope for read endpoints.
type DataBody struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

var jsonAPI = sonic.Config{
	UseNumber:            true,
	EscapeHTML:           false,
	SortMapKeys:          false,
	CompactMarshaler:     true,
	NoQuoteTextMarshaler: true,
	NoNullSliceOrMap:     true,
}.Froze()

// JSONMarshal and JSONUnmarshal back the fiber app's encoder/decoder so the
// whole transport runs on the same frozen sonic config.
func JSONMarshal(v interface{}) ([]byte, error) {
	return jsonAPI.Marshal(v)
}

func JSONUnmarshal(data []byte, v interface{}) error {
	return jsonAPI.Unmarshal(data, v)
}

func writeJSON(c *fiber.Ctx, httpCode int, v interface{}) error {
	body, err := jsonAPI.Marshal(v)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(httpCode).Send(body)
}

// ResponseError writes the standard error envelope.
func ResponseError(c *fiber.Ctx, httpCode int, message, errorCode string) error {
	return writeJSON(c, httpCode, ErrorBody{
		Success:   false,
		Error:     message,
		ErrorCode: errorCode,
	})
}

// ResponseMessage writes the standard confirmation envelope.
func ResponseMessage(c *fiber.Ctx, httpCode int, message string) error {
	return writeJSON(c, httpCode, MessageBody{Success: true, Message: message})
}

// ResponseData writes the standard data envelope.
func ResponseData(c *fiber.Ctx, httpCode int, data interface{}) error {
	return writeJSON(c, httpCode, DataBody{Success: true, Data: data})
}

// ResponseJSON writes an arbitrary payload that carries its own envelope
// fields (auth issuance responses).
func ResponseJSON(c *fiber.Ctx, httpCode int, v interface{}) error {
	return writeJSON(c, httpCode, v)
}
