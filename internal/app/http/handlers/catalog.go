package handlers

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cotizador/quoter/internal/domain/catalog"
)

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, "ListCategories", err)
		return
	}
	out := make([]CategoryResponse, len(cats))
	for i, c := range cats {
		out[i] = categoryResponse(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, "GetCategory", err)
		return
	}
	c, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		h.fail(w, r, "GetCategory", err)
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse(c))
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "CreateCategory", err)
		return
	}
	c, err := h.catalog.CreateCategory(r.Context(), catalog.Category{Name: req.Name, Description: req.Description})
	if err != nil {
		h.fail(w, r, "CreateCategory", err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse(c))
}

func (h *Handlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, "UpdateCategory", err)
		return
	}
	var req CategoryRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "UpdateCategory", err)
		return
	}
	c, err := h.catalog.UpdateCategory(r.Context(), catalog.Category{ID: id, Name: req.Name, Description: req.Description})
	if err != nil {
		h.fail(w, r, "UpdateCategory", err)
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse(c))
}

func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, "DeleteCategory", err)
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		h.fail(w, r, "DeleteCategory", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) productFilter(r *http.Request) (catalog.ProductFilter, error) {
	q := r.URL.Query()
	f := catalog.ProductFilter{Search: q.Get("search"), Ordering: q.Get("ordering")}
	if v := q.Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, badRequest("invalid category_id %q", v)
		}
		f.CategoryID = id
	}
	if err := h.validate.Var(f.Ordering, "omitempty,oneof=id -id name -name price -price"); err != nil {
		return f, badRequest("invalid ordering %q", f.Ordering)
	}
	return f, nil
}

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	f, err := h.productFilter(r)
	if err != nil {
		h.fail(w, r, "ListProducts", err)
		return
	}
	products, err := h.catalog.ListProducts(r.Context(), f)
	if err != nil {
		h.fail(w, r, "ListProducts", err)
		return
	}
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = productResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) ExportProducts(w http.ResponseWriter, r *http.Request) {
	f, err := h.productFilter(r)
	if err != nil {
		h.fail(w, r, "ExportProducts", err)
		return
	}
	lang, err := h.lang(r)
	if err != nil {
		h.fail(w, r, "ExportProducts", err)
		return
	}
	file, err := h.pipeline.ExportProducts(r.Context(), f, lang)
	if err != nil {
		h.fail(w, r, "ExportProducts", err)
		return
	}
	writeFile(w, file)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, "GetProduct", err)
		return
	}
	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.fail(w, r, "GetProduct", err)
		return
	}
	writeJSON(w, http.StatusOK, productResponse(p))
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "CreateProduct", err)
		return
	}
	p, err := productFromRequest(req)
	if err != nil {
		h.fail(w, r, "CreateProduct", err)
		return
	}
	p, err = h.catalog.CreateProduct(r.Context(), p)
	if err != nil {
		h.fail(w, r, "CreateProduct", err)
		return
	}
	writeJSON(w, http.StatusCreated, productResponse(p))
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, "UpdateProduct", err)
		return
	}
	var req ProductRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "UpdateProduct", err)
		return
	}
	p, err := productFromRequest(req)
	if err != nil {
		h.fail(w, r, "UpdateProduct", err)
		return
	}
	p.ID = id
	p, err = h.catalog.UpdateProduct(r.Context(), p)
	if err != nil {
		h.fail(w, r, "UpdateProduct", err)
		return
	}
	writeJSON(w, http.StatusOK, productResponse(p))
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, "DeleteProduct", err)
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		h.fail(w, r, "DeleteProduct", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func productFromRequest(req ProductRequest) (catalog.Product, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return catalog.Product{}, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return catalog.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		IsActive:    active,
	}, nil
}

// parsePrice accepts a non-negative amount with at most two decimals.
func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, badRequest("invalid price %q", s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, badRequest("price must not be negative")
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return decimal.Decimal{}, badRequest("price %q has more than two decimals", s)
	}
	return d, nil
}

func (h *Handlers) lang(r *http.Request) (string, error) {
	lang := r.URL.Query().Get("lang")
	if err := h.validate.Var(lang, "omitempty,oneof=es en"); err != nil {
		return "", badRequest("invalid lang %q", lang)
	}
	return lang, nil
}
