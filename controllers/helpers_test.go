package controllers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// authedRouter mounts a single handler behind a stub of the auth
// middleware that injects the given customer identity.
func authedRouter(customerID primitive.ObjectID, method, path string, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", customerID.Hex())
	})
	r.Handle(method, path, handler)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return body
}

func ns(mt *mtest.T, coll string) string {
	return mt.DB.Name() + "." + coll
}

func productDoc(id primitive.ObjectID, name string, price float64) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "description", Value: name + " description"},
		{Key: "price", Value: price},
	}
}

func cartItemDoc(productID primitive.ObjectID, quantity int) bson.D {
	return bson.D{
		{Key: "productId", Value: productID},
		{Key: "quantity", Value: quantity},
	}
}

func cartDoc(id, customerID primitive.ObjectID, items ...bson.D) bson.D {
	arr := bson.A{}
	for _, item := range items {
		arr = append(arr, item)
	}
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "customerId", Value: customerID},
		{Key: "items", Value: arr},
	}
}

func updateSuccess(matched int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: matched},
	)
}

func emptyCursor(mt *mtest.T, coll string) bson.D {
	return mtest.CreateCursorResponse(0, ns(mt, coll), mtest.FirstBatch)
}
