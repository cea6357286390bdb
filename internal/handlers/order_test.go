package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"embalini-backend/internal/models"
)

func TestTrackCommandUnknownCode(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unknown code gets a generic 404", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "embalini.commands", mtest.FirstBatch))

		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.GET("/command/:secret_code", TrackCommand(mt.DB))

		req := httptest.NewRequest("GET", "/command/ZZZZZZZZZZ", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			mt.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "command not found") {
			mt.Fatalf("expected the generic not-found body, got %s", w.Body.String())
		}
	})
}

func TestTrackCommandUppercasesCode(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("lowercase code still resolves", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "embalini.commands", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "order_id", Value: "ORD-26-0001"},
			{Key: "secret_code", Value: "K7WQ2MZXP4"},
			{Key: "status", Value: models.StatusPendingReview},
		}))

		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.GET("/command/:secret_code", TrackCommand(mt.DB))

		req := httptest.NewRequest("GET", "/command/k7wq2mzxp4", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			mt.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "ORD-26-0001") {
			mt.Fatalf("expected the order in the body, got %s", w.Body.String())
		}
	})
}

func TestUpdateCommandStatusIdempotent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("re-applying the current status is a no-op success", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 1},
				bson.E{Key: "nModified", Value: 0},
			),
			mtest.CreateCursorResponse(0, "embalini.commands", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: id},
				{Key: "order_id", Value: "ORD-26-0001"},
				{Key: "secret_code", Value: "K7WQ2MZXP4"},
				{Key: "status", Value: models.StatusConfirmed},
			}),
		)

		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.PATCH("/command/:id", UpdateCommandStatus(mt.DB))

		body := strings.NewReader(`{"status":"confirmed"}`)
		req := httptest.NewRequest("PATCH", "/command/"+id.Hex(), body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			mt.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), models.StatusConfirmed) {
			mt.Fatalf("expected the unchanged status in the body, got %s", w.Body.String())
		}
	})
}

func TestUpdateCommandStatusUnknownOrder(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing order gets 404", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.PATCH("/command/:id", UpdateCommandStatus(mt.DB))

		body := strings.NewReader(`{"status":"SHIPPED"}`)
		req := httptest.NewRequest("PATCH", "/command/"+primitive.NewObjectID().Hex(), body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			mt.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestUpdateCommandStatusRejectsUnknownStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PATCH("/command/:id", UpdateCommandStatus(nil))

	body := strings.NewReader(`{"status":"DONE"}`)
	req := httptest.NewRequest("PATCH", "/command/"+primitive.NewObjectID().Hex(), body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}
