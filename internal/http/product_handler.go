package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/product-api/internal/apperr"
	"github.com/tuanvumaihuynh/product-api/internal/eventstream"
	"github.com/tuanvumaihuynh/product-api/internal/http/metric"
	"github.com/tuanvumaihuynh/product-api/internal/model"
	"github.com/tuanvumaihuynh/product-api/internal/service"
	"github.com/tuanvumaihuynh/product-api/pkg/ptr"
)

type productHandler struct {
	productSvc service.ProductService
	events     *eventstream.Producer
	metrics    *metric.Metrics
	logger     *slog.Logger
}

func newProductHandler(
	productSvc service.ProductService,
	events *eventstream.Producer,
	metrics *metric.Metrics,
	logger *slog.Logger,
) *productHandler {
	return &productHandler{
		productSvc: productSvc,
		events:     events,
		metrics:    metrics,
		logger:     logger,
	}
}

// ListProducts returns every product, or a single product when the id query parameter is present.
func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()

	var id *string
	if err := runtime.BindQueryParameter("form", true, false, "id", query, &id); err != nil {
		return apperr.ValidationErr.WrapParent(err)
	}
	// ?id= is a lookup of the empty id.
	if id == nil && query.Has("id") {
		id = ptr.New("")
	}

	if id != nil {
		return h.getProduct(w, r, *id)
	}

	products, err := h.productSvc.ListProducts(r.Context())
	if err != nil {
		return err
	}
	if products == nil {
		products = []model.Product{}
	}

	render.JSON(w, r, products)
	return nil
}

func (h *productHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	return h.getProduct(w, r, id)
}

func (h *productHandler) getProduct(w http.ResponseWriter, r *http.Request, id string) error {
	product, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		return err
	}

	render.JSON(w, r, product)
	return nil
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	params, err := decodeBody[service.CreateProductParams](r)()
	if err != nil {
		return err
	}

	product, err := h.productSvc.CreateProduct(r.Context(), params)
	if err != nil {
		return err
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, product)
	return nil
}

func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), id, decodeBody[service.UpdateProductParams](r))
	if err != nil {
		return err
	}

	render.JSON(w, r, product)
	return nil
}

func (h *productHandler) PatchProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	product, err := h.productSvc.PatchProduct(r.Context(), id, decodeBody[service.PatchProductParams](r))
	if err != nil {
		return err
	}

	render.JSON(w, r, product)
	return nil
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.productSvc.DeleteProduct(r.Context(), id); err != nil {
		return err
	}

	w.WriteHeader(http.StatusOK)
	return nil
}

func (h *productHandler) DeleteAllProducts(w http.ResponseWriter, r *http.Request) error {
	if err := h.productSvc.DeleteAllProducts(r.Context()); err != nil {
		return err
	}

	w.WriteHeader(http.StatusOK)
	return nil
}

func pathID(r *http.Request) (string, error) {
	var id string
	if err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	}); err != nil {
		return "", apperr.ValidationErr.WrapParent(err)
	}

	return id, nil
}

// decodeBody returns a DecodeFunc reading the JSON request body into T.
func decodeBody[T any](r *http.Request) service.DecodeFunc[T] {
	return func() (T, error) {
		var body T
		if err := render.DecodeJSON(r.Body, &body); err != nil {
			return body, apperr.ValidationErr.WrapParent(err)
		}
		return body, nil
	}
}
