package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/shopbox/shopbox/catalog"
	"github.com/shopbox/shopbox/internal/logutil"
)

// Prefix is the base path of the versioned REST API.
const Prefix = "/v1/api"

type (
	productDTO struct {
		ID    int64   `json:"id"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
)

// AsHandler exposes the product catalog as a REST API under Prefix,
// plus a minimal landing page at the root (the post-login redirect
// target).
func AsHandler(store *catalog.Store) http.Handler {
	router := httprouter.New()
	router.POST(Prefix+"/product", createProduct(store))
	router.GET(Prefix+"/product", listProducts(store))
	router.GET(Prefix+"/product/:id", getProduct(store))
	router.PUT(Prefix+"/product/:id", updateProduct(store))
	router.DELETE(Prefix+"/product/:id", deleteProduct(store))
	router.HandlerFunc("GET", "/", landingPage)
	return router
}

func createProduct(store *catalog.Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var dto productDTO
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			http.Error(w, "invalid product payload", http.StatusBadRequest)
			return
		}
		id, err := store.SaveProduct(r.Context(), dto.Name, dto.Price)
		if err != nil {
			var dup catalog.DuplicateProductName
			if errors.As(err, &dup) {
				http.Error(w, dup.Error(), http.StatusConflict)
				return
			}
			serverError(w, r, err)
			return
		}
		dto.ID = id
		writeJSON(w, dto)
	}
}

func getProduct(store *catalog.Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}
		p, err := store.Product(r.Context(), id)
		if err != nil {
			var nf catalog.ProductNotFound
			if errors.As(err, &nf) {
				http.Error(w, nf.Error(), http.StatusBadRequest)
				return
			}
			serverError(w, r, err)
			return
		}
		writeJSON(w, productDTO{ID: p.ID, Name: p.Name, Price: p.Price})
	}
}

func listProducts(store *catalog.Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		products, err := store.ListProducts(r.Context())
		if err != nil {
			serverError(w, r, err)
			return
		}
		out := make([]productDTO, 0, len(products))
		for _, p := range products {
			out = append(out, productDTO{ID: p.ID, Name: p.Name, Price: p.Price})
		}
		writeJSON(w, out)
	}
}

func updateProduct(store *catalog.Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}
		var dto productDTO
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			http.Error(w, "invalid product payload", http.StatusBadRequest)
			return
		}
		err = store.UpdateProduct(r.Context(), id, dto.Name, dto.Price)
		if err != nil {
			var nf catalog.ProductNotFound
			if errors.As(err, &nf) {
				http.Error(w, nf.Error(), http.StatusBadRequest)
				return
			}
			serverError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func deleteProduct(store *catalog.Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}
		err = store.DeleteProduct(r.Context(), id)
		if err != nil {
			var nf catalog.ProductNotFound
			if errors.As(err, &nf) {
				http.Error(w, nf.Error(), http.StatusBadRequest)
				return
			}
			serverError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func landingPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!doctype html>
<title>shopbox</title>
<h1>shopbox</h1>
<p>The product API lives under <code>` + Prefix + `/product</code>.</p>
<p><a href="/logout">Sign out</a></p>`))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	log := logutil.GetOrDefault(r.Context())
	log.Error().Err(err).Msg("Unexpected catalog error")
	http.Error(w, "catalog is mis-behaving", http.StatusInternalServerError)
}
