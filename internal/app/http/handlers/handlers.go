package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/cotizador/quoter/internal/domain/auth"
	"github.com/cotizador/quoter/internal/domain/catalog"
	"github.com/cotizador/quoter/internal/domain/quote"
	"github.com/cotizador/quoter/internal/domain/quote/pipeline"
	"github.com/cotizador/quoter/internal/domain/user"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	Users       user.Repository
	Catalog     catalog.Repository
	Quotes      quote.Repository
	Pipeline    *pipeline.Service
	Tokens      *auth.Issuer
	Log         *logrus.Logger
	PhoneRegion string
}

type Handlers struct {
	users       user.Repository
	catalog     catalog.Repository
	quotes      quote.Repository
	pipeline    *pipeline.Service
	tokens      *auth.Issuer
	validate    *validator.Validate
	log         *logrus.Logger
	phoneRegion string
}

func New(d Deps) *Handlers {
	logg := d.Log
	if logg == nil {
		logg = logrus.StandardLogger()
	}
	return &Handlers{
		users:       d.Users,
		catalog:     d.Catalog,
		quotes:      d.Quotes,
		pipeline:    d.Pipeline,
		tokens:      d.Tokens,
		validate:    validator.New(),
		log:         logg,
		phoneRegion: d.PhoneRegion,
	}
}
