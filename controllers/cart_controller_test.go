package controllers

import (
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func cartItems(t *testing.T, body map[string]interface{}) []interface{} {
	t.Helper()
	cart, ok := body["cart"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no cart object: %v", body)
	}
	items, ok := cart["items"].([]interface{})
	if !ok {
		t.Fatalf("cart has no items array: %v", cart)
	}
	return items
}

func TestAddToCart(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	customerID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	mt.Run("rejects non-positive quantity", func(mt *mtest.T) {
		cc := NewCartController(mt.DB)
		r := authedRouter(customerID, http.MethodPost, "/cart/add", cc.AddToCart)

		w := doJSON(r, http.MethodPost, "/cart/add", `{"productId":"`+productID.Hex()+`","quantity":0}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
		}
		if _, ok := decodeBody(t, w)["errors"]; !ok {
			t.Fatalf("expected per-field errors, got %s", w.Body.String())
		}
	})

	mt.Run("unknown product is a 404", func(mt *mtest.T) {
		cc := NewCartController(mt.DB)
		r := authedRouter(customerID, http.MethodPost, "/cart/add", cc.AddToCart)

		mt.AddMockResponses(emptyCursor(mt, "products"))

		w := doJSON(r, http.MethodPost, "/cart/add", `{"productId":"`+productID.Hex()+`","quantity":2}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d (%s)", w.Code, w.Body.String())
		}
	})

	mt.Run("first add creates the cart", func(mt *mtest.T) {
		cc := NewCartController(mt.DB)
		r := authedRouter(customerID, http.MethodPost, "/cart/add", cc.AddToCart)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, "products"), mtest.FirstBatch, productDoc(productID, "Widget", 10)),
			emptyCursor(mt, "carts"),
			mtest.CreateSuccessResponse(),
		)

		w := doJSON(r, http.MethodPost, "/cart/add", `{"productId":"`+productID.Hex()+`","quantity":2}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}

		items := cartItems(t, decodeBody(t, w))
		if len(items) != 1 {
			t.Fatalf("expected 1 line item, got %d", len(items))
		}
		item := items[0].(map[string]interface{})
		if item["quantity"] != float64(2) {
			t.Fatalf("expected quantity 2, got %v", item["quantity"])
		}
	})

	mt.Run("repeated add merges quantities", func(mt *mtest.T) {
		cc := NewCartController(mt.DB)
		r := authedRouter(customerID, http.MethodPost, "/cart/add", cc.AddToCart)

		cartID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, "products"), mtest.FirstBatch, productDoc(productID, "Widget", 10)),
			mtest.CreateCursorResponse(0, ns(mt, "carts"), mtest.FirstBatch, cartDoc(cartID, customerID, cartItemDoc(productID, 2))),
			updateSuccess(1),
		)

		w := doJSON(r, http.MethodPost, "/cart/add", `{"productId":"`+productID.Hex()+`","quantity":3}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}

		items := cartItems(t, decodeBody(t, w))
		if len(items) != 1 {
			t.Fatalf("expected 1 line item, got %d", len(items))
		}
		item := items[0].(map[string]interface{})
		if item["quantity"] != float64(5) {
			t.Fatalf("expected merged quantity 5, got %v", item["quantity"])
		}
	})
}

func TestUpdateCart(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	customerID := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	otherProduct := primitive.NewObjectID()

	mt.Run("missing cart", func(mt *mtest.T) {
		cc := NewCartController(mt.DB)
		r := authedRouter(customerID, http.MethodPut, "/cart/update", cc.UpdateCart)

		mt.AddMockResponses(emptyCursor(mt, "carts"))

		w := doJSON(r, http.MethodPut, "/cart/update", `{"productId":"`+productID.Hex()+`","quantity":1}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
		}
		if decodeBody(t, w)["error"] != "Cart not found" {
			t.Fatalf("unexpected body %s", w.Body.String())
		}
	})

	mt.Run("missing line item", func(mt *mtest.T) {
		cc := NewCartController(mt.DB)
		r := authedRouter(customerID, http.MethodPut, "/cart/update", cc.UpdateCart)

		cartID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, "carts"), mtest.FirstBatch, cartDoc(cartID, customerID, cartItemDoc(otherProduct, 1))),
		)

		w := doJSON(r, http.MethodPut, "/cart/update", `{"productId":"`+productID.Hex()+`","quantity":1}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
		}
		if decodeBody(t, w)["error"] != "Product not found in cart" {
			t.Fatalf("unexpected body %s", w.Body.String())
		}
	})

	mt.Run("positive quantity overwrites", func(mt *mtest.T) {
		cc := NewCartController(mt.DB)
		r := authedRouter(customerID, http.MethodPut, "/cart/update", cc.UpdateCart)

		cartID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, "carts"), mtest.FirstBatch, cartDoc(cartID, customerID, cartItemDoc(productID, 2))),
			updateSuccess(1),
		)

		w := doJSON(r, http.MethodPut, "/cart/update", `{"productId":"`+productID.Hex()+`","quantity":7}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}

		items := cartItems(t, decodeBody(t, w))
		if items[0].(map[string]interface{})["quantity"] != float64(7) {
			t.Fatalf("expected quantity 7, got %v", items[0])
		}
	})

	mt.Run("zero quantity deletes the line item", func(mt *mtest.T) {
		cc := NewCartController(mt.DB)
		r := authedRouter(customerID, http.MethodPut, "/cart/update", cc.UpdateCart)

		cartID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, "carts"), mtest.FirstBatch, cartDoc(cartID, customerID, cartItemDoc(productID, 2))),
			updateSuccess(1),
		)

		w := doJSON(r, http.MethodPut, "/cart/update", `{"productId":"`+productID.Hex()+`","quantity":0}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}

		if items := cartItems(t, decodeBody(t, w)); len(items) != 0 {
			t.Fatalf("expected empty cart, got %v", items)
		}
	})
}

func TestRemoveFromCart(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	customerID := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	otherProduct := primitive.NewObjectID()

	mt.Run("missing cart", func(mt *mtest.T) {
		cc := NewCartController(mt.DB)
		r := authedRouter(customerID, http.MethodDelete, "/cart/delete", cc.RemoveFromCart)

		mt.AddMockResponses(emptyCursor(mt, "carts"))

		w := doJSON(r, http.MethodDelete, "/cart/delete", `{"productId":"`+productID.Hex()+`"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
		}
	})

	mt.Run("absent product is a no-op success", func(mt *mtest.T) {
		cc := NewCartController(mt.DB)
		r := authedRouter(customerID, http.MethodDelete, "/cart/delete", cc.RemoveFromCart)

		cartID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, "carts"), mtest.FirstBatch, cartDoc(cartID, customerID, cartItemDoc(otherProduct, 1))),
			updateSuccess(1),
		)

		w := doJSON(r, http.MethodDelete, "/cart/delete", `{"productId":"`+productID.Hex()+`"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}

		if items := cartItems(t, decodeBody(t, w)); len(items) != 1 {
			t.Fatalf("expected the other item to survive, got %v", items)
		}
	})

	mt.Run("removes matching product", func(mt *mtest.T) {
		cc := NewCartController(mt.DB)
		r := authedRouter(customerID, http.MethodDelete, "/cart/delete", cc.RemoveFromCart)

		cartID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, "carts"), mtest.FirstBatch, cartDoc(cartID, customerID, cartItemDoc(productID, 2), cartItemDoc(otherProduct, 1))),
			updateSuccess(1),
		)

		w := doJSON(r, http.MethodDelete, "/cart/delete", `{"productId":"`+productID.Hex()+`"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}

		if items := cartItems(t, decodeBody(t, w)); len(items) != 1 {
			t.Fatalf("expected 1 remaining item, got %v", items)
		}
	})
}

func TestGetCart(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	customerID := primitive.NewObjectID()
	productA := primitive.NewObjectID()
	productB := primitive.NewObjectID()

	mt.Run("no cart yet is an explicit empty result", func(mt *mtest.T) {
		cc := NewCartController(mt.DB)
		r := authedRouter(customerID, http.MethodGet, "/cart/", cc.GetCart)

		mt.AddMockResponses(emptyCursor(mt, "carts"))

		w := doJSON(r, http.MethodGet, "/cart/", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}
		body := decodeBody(t, w)
		if body["message"] != "Your cart is empty" {
			t.Fatalf("unexpected body %s", w.Body.String())
		}
		if cart, ok := body["cart"].([]interface{}); !ok || len(cart) != 0 {
			t.Fatalf("expected empty cart array, got %v", body["cart"])
		}
	})

	mt.Run("cleared cart is also empty, not an error", func(mt *mtest.T) {
		cc := NewCartController(mt.DB)
		r := authedRouter(customerID, http.MethodGet, "/cart/", cc.GetCart)

		cartID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, "carts"), mtest.FirstBatch, cartDoc(cartID, customerID)),
		)

		w := doJSON(r, http.MethodGet, "/cart/", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}
		if decodeBody(t, w)["message"] != "Your cart is empty" {
			t.Fatalf("unexpected body %s", w.Body.String())
		}
	})

	mt.Run("totals come from live catalog prices", func(mt *mtest.T) {
		cc := NewCartController(mt.DB)
		r := authedRouter(customerID, http.MethodGet, "/cart/", cc.GetCart)

		cartID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, "carts"), mtest.FirstBatch, cartDoc(cartID, customerID, cartItemDoc(productA, 2), cartItemDoc(productB, 1))),
			mtest.CreateCursorResponse(0, ns(mt, "products"), mtest.FirstBatch, productDoc(productA, "Widget", 10)),
			mtest.CreateCursorResponse(0, ns(mt, "products"), mtest.FirstBatch, productDoc(productB, "Gadget", 5)),
		)

		w := doJSON(r, http.MethodGet, "/cart/", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}

		body := decodeBody(t, w)
		if body["totalAmount"] != float64(25) {
			t.Fatalf("expected totalAmount 25, got %v", body["totalAmount"])
		}
		cart := body["cart"].([]interface{})
		if len(cart) != 2 {
			t.Fatalf("expected 2 resolved items, got %d", len(cart))
		}
		first := cart[0].(map[string]interface{})
		if first["total"] != float64(20) || first["product"] != "Widget" {
			t.Fatalf("unexpected first line %v", first)
		}
	})
}
