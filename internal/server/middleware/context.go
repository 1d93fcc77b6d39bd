package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/atento/knowledge/pkg/ai"
	"github.com/atento/knowledge/pkg/audit"
	"github.com/atento/knowledge/pkg/ingest"
	"github.com/atento/knowledge/pkg/store"
)

// AppUser is the authenticated caller. TenantID comes from the token and
// scopes every storage call the handler makes.
type AppUser struct {
	ID           string
	TenantID     string
	Capabilities []string
}

type App struct {
	Store    store.KnowledgeStorage
	Pipeline *ingest.Pipeline
	Embedder ai.Embedder
	Proposer ai.GraphProposer
	Audit    audit.Recorder
	Queue    *amqp091.Channel
	Key      *keyfunc.Keyfunc
	S3       *s3.Client

	MasterAPIKey   string
	MasterTenantID string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
