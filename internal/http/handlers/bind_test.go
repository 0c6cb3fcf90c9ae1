package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/eventreg/internal/apperr"
	"github.com/geocoder89/eventreg/internal/http/handlers"
	"github.com/geocoder89/eventreg/internal/validation"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			JSON   string              `json:"json"`
			Field  string              `json:"field"`
			Fields []apperr.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func bindRouter() *gin.Engine {
	r := gin.New()
	r.POST("/events", func(ctx *gin.Context) {
		var in validation.CreateEventInput
		if !handlers.BindJSON(ctx, &in) {
			return
		}
		ctx.Status(http.StatusCreated)
	})
	return r
}

func doBind(t *testing.T, body string) (*httptest.ResponseRecorder, bindErrorResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	bindRouter().ServeHTTP(w, req)

	var resp bindErrorResponse
	if w.Code != http.StatusCreated {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json response: %v, body=%s", err, w.Body.String())
		}
	}
	return w, resp
}

func TestBindJSON_TypeMismatchUsesJSONFieldName(t *testing.T) {
	w, resp := doBind(t, `{"title":"go","date":"2030-01-01","capacity":"ten"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("got json detail %q", resp.Error.Details.JSON)
	}
	if resp.Error.Details.Field != "capacity" {
		t.Fatalf("got field %q, want capacity", resp.Error.Details.Field)
	}
	if len(resp.Error.Details.Fields) != 1 || resp.Error.Details.Fields[0].Rule != "type" {
		t.Fatalf("unexpected fields %+v", resp.Error.Details.Fields)
	}
}

func TestBindJSON_SyntaxError(t *testing.T) {
	w, resp := doBind(t, `{"title":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
	if resp.Error.Details.JSON != "invalid_json_syntax" {
		t.Fatalf("got json detail %q", resp.Error.Details.JSON)
	}
}

func TestBindJSON_EmptyBody(t *testing.T) {
	w, resp := doBind(t, ``)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
	if resp.Error.Details.JSON != "empty_body" {
		t.Fatalf("got json detail %q", resp.Error.Details.JSON)
	}
}

func TestBindJSON_MissingFieldsPassThrough(t *testing.T) {
	// rules are enforced by the services, not the binder
	w, _ := doBind(t, `{"title":"go"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestBindJSON_TooLarge(t *testing.T) {
	r := gin.New()
	r.POST("/events", func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, 16)
		var in validation.CreateEventInput
		if !handlers.BindJSON(ctx, &in) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	body := `{"title":"` + strings.Repeat("a", 64) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}
}
