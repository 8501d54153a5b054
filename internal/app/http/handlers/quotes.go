package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cotizador/quoter/internal/domain/auth"
	"github.com/cotizador/quoter/internal/domain/quote"
	"github.com/cotizador/quoter/internal/domain/user"
)

const dateParam = "2006-01-02"

// quoteFilter reads the list query. Dates are whole UTC days and both ends
// are inclusive. Customers only ever see their own quotes.
func (h *Handlers) quoteFilter(r *http.Request) (quote.Filter, error) {
	q := r.URL.Query()
	f := quote.Filter{
		Email:    q.Get("email"),
		Name:     q.Get("name"),
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	}
	if err := h.validate.Var(f.Ordering, "omitempty,oneof=id -id created_at -created_at"); err != nil {
		return f, badRequest("invalid ordering %q", f.Ordering)
	}
	if v := q.Get("start_date"); v != "" {
		d, err := time.Parse(dateParam, v)
		if err != nil {
			return f, badRequest("invalid start_date %q, want YYYY-MM-DD", v)
		}
		f.From = d
	}
	if v := q.Get("end_date"); v != "" {
		d, err := time.Parse(dateParam, v)
		if err != nil {
			return f, badRequest("invalid end_date %q, want YYYY-MM-DD", v)
		}
		f.To = d.AddDate(0, 0, 1)
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return f, badRequest("start_date is after end_date")
	}

	p := principal(r)
	if !p.Staff {
		f.UserID = p.UserID
	} else if v := q.Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, badRequest("invalid user_id %q", v)
		}
		f.UserID = id
	}
	return f, nil
}

func (h *Handlers) ListQuotes(w http.ResponseWriter, r *http.Request) {
	f, err := h.quoteFilter(r)
	if err != nil {
		h.fail(w, r, "ListQuotes", err)
		return
	}
	quotes, err := h.quotes.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, "ListQuotes", err)
		return
	}
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		t, err := h.pipeline.Calc.Compute(q.Items)
		if err != nil {
			h.fail(w, r, "ListQuotes", err)
			return
		}
		out = append(out, quoteResponse(q, t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetQuote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, "GetQuote", err)
		return
	}
	q, t, err := h.pipeline.Detail(r.Context(), id, scope(principal(r)))
	if err != nil {
		h.fail(w, r, "GetQuote", err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse(q, t))
}

func (h *Handlers) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "CreateQuote", err)
		return
	}
	p := principal(r)
	owner := p.UserID
	if req.UserID != 0 && req.UserID != p.UserID {
		if !p.Staff {
			h.fail(w, r, "CreateQuote", forbidden("only staff may quote for another user"))
			return
		}
		owner = req.UserID
	}
	if owner == 0 {
		h.fail(w, r, "CreateQuote", badRequest("user_id is required"))
		return
	}

	items, err := h.lineItems(r.Context(), p, req.Items)
	if err != nil {
		h.fail(w, r, "CreateQuote", err)
		return
	}
	q, err := h.quotes.Create(r.Context(), quote.Draft{UserID: owner, Items: items})
	if errors.Is(err, user.ErrNotFound) {
		h.fail(w, r, "CreateQuote", badRequest("unknown user %d", owner))
		return
	}
	if err != nil {
		h.fail(w, r, "CreateQuote", err)
		return
	}
	t, err := h.pipeline.Calc.Compute(q.Items)
	if err != nil {
		h.fail(w, r, "CreateQuote", err)
		return
	}
	writeJSON(w, http.StatusCreated, quoteResponse(q, t))
}

// UpdateQuote replaces every item of the quote with the submitted list.
func (h *Handlers) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, "UpdateQuote", err)
		return
	}
	var req QuoteRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "UpdateQuote", err)
		return
	}
	p := principal(r)
	if _, _, err := h.pipeline.Detail(r.Context(), id, scope(p)); err != nil {
		h.fail(w, r, "UpdateQuote", err)
		return
	}

	items, err := h.lineItems(r.Context(), p, req.Items)
	if err != nil {
		h.fail(w, r, "UpdateQuote", err)
		return
	}
	q, err := h.quotes.ReplaceItems(r.Context(), id, items)
	if err != nil {
		h.fail(w, r, "UpdateQuote", err)
		return
	}
	t, err := h.pipeline.Calc.Compute(q.Items)
	if err != nil {
		h.fail(w, r, "UpdateQuote", err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse(q, t))
}

func (h *Handlers) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, "DeleteQuote", err)
		return
	}
	if _, _, err := h.pipeline.Detail(r.Context(), id, scope(principal(r))); err != nil {
		h.fail(w, r, "DeleteQuote", err)
		return
	}
	if err := h.quotes.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "DeleteQuote", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QuotePDF streams the invoice. Nothing is written unless rendering
// succeeded.
func (h *Handlers) QuotePDF(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, "QuotePDF", err)
		return
	}
	file, err := h.pipeline.Invoice(r.Context(), id, scope(principal(r)))
	if err != nil {
		h.fail(w, r, "QuotePDF", err)
		return
	}
	writeFile(w, file)
}

func (h *Handlers) ExportQuotes(w http.ResponseWriter, r *http.Request) {
	f, err := h.quoteFilter(r)
	if err != nil {
		h.fail(w, r, "ExportQuotes", err)
		return
	}
	lang, err := h.lang(r)
	if err != nil {
		h.fail(w, r, "ExportQuotes", err)
		return
	}
	file, err := h.pipeline.ExportQuotes(r.Context(), f, lang)
	if err != nil {
		h.fail(w, r, "ExportQuotes", err)
		return
	}
	writeFile(w, file)
}

// lineItems resolves submitted items against the catalog. Unit prices come
// from the product unless staff override them.
func (h *Handlers) lineItems(ctx context.Context, p auth.Principal, reqs []QuoteItemRequest) ([]quote.LineItem, error) {
	ids := make([]int64, len(reqs))
	for i, it := range reqs {
		ids[i] = it.ProductID
	}
	products, err := h.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]quote.LineItem, 0, len(reqs))
	for i, it := range reqs {
		prod, ok := products[it.ProductID]
		if !ok {
			return nil, badRequest("item %d: unknown product %d", i+1, it.ProductID)
		}
		if !prod.IsActive {
			return nil, badRequest("item %d: product %d is not active", i+1, it.ProductID)
		}
		price := prod.Price
		if it.UnitPrice != nil {
			if !p.Staff {
				return nil, forbidden("only staff may set unit_price")
			}
			if price, err = parsePrice(*it.UnitPrice); err != nil {
				return nil, err
			}
		}
		items = append(items, quote.LineItem{
			ProductID:   prod.ID,
			ProductName: prod.Name,
			Quantity:    it.Quantity,
			UnitPrice:   price,
		})
	}
	return items, nil
}
